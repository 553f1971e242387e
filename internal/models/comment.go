package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a user comment on a ticket.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TicketID  uint           `gorm:"index;not null" json:"ticket_id"`
	Ticket    *Ticket        `gorm:"foreignKey:TicketID" json:"ticket,omitempty"`
	AuthorID  uint           `gorm:"index;not null" json:"author_id"`
	Author    *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	EditedAt  *time.Time     `json:"edited_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Comment) TableName() string { return "comments" }
