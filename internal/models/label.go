package models

import (
	"time"
)

// Label is a colored tag scoped to one project.
type Label struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_project_label_name;not null" json:"project_id"`
	Name      string    `gorm:"uniqueIndex:idx_project_label_name;size:100;not null" json:"name"`
	Color     string    `gorm:"size:7;default:#808080" json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Label) TableName() string { return "labels" }
