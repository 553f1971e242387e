package models

import (
	"time"

	"gorm.io/gorm"
)

// IMBot represents a chat notification bot a project can bind to.
type IMBot struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Type      string         `gorm:"size:50;not null" json:"type"` // slack, discord, feishu, dingtalk, wechat_work
	Webhook   string         `gorm:"size:500;not null" json:"webhook"`
	Secret    string         `gorm:"size:255" json:"-"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (IMBot) TableName() string { return "im_bots" }
