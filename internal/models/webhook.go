package models

import (
	"time"

	"gorm.io/gorm"
)

// Webhook is an outbound webhook endpoint registered on a project.
// Events is a comma-separated list of event types, e.g.
// "ticket.created,ticket.moved,comment.created"; empty means all.
type Webhook struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"index;not null" json:"project_id"`
	URL       string         `gorm:"size:500;not null" json:"url"`
	Secret    string         `gorm:"size:255" json:"-"`
	Events    string         `gorm:"size:500" json:"events"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Webhook) TableName() string { return "webhooks" }

// WebhookDelivery records one delivery attempt to a webhook endpoint.
type WebhookDelivery struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	WebhookID  uint      `gorm:"index;not null" json:"webhook_id"`
	Event      string    `gorm:"size:50;not null" json:"event"`
	Payload    string    `gorm:"type:text" json:"payload"`
	StatusCode int       `json:"status_code"`
	Error      string    `gorm:"size:500" json:"error"`
	Duration   int64     `json:"duration_ms"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (WebhookDelivery) TableName() string { return "webhook_deliveries" }
