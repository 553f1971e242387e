package models

import (
	"time"

	"gorm.io/gorm"
)

// Project represents a tracked project. Key is the short uppercase code
// used as the ticket number prefix (e.g. "PAY" -> PAY-42).
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Key         string         `gorm:"uniqueIndex;size:10;not null" json:"key"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	IMEnabled   bool           `gorm:"default:false" json:"im_enabled"`
	IMBotID     *uint          `json:"im_bot_id"`
	CreatedBy   uint           `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }
