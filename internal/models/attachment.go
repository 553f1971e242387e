package models

import (
	"time"

	"gorm.io/gorm"
)

// Attachment is a file uploaded to a ticket. StoredName is the random
// on-disk name; FileName is what the uploader called it.
type Attachment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TicketID    uint           `gorm:"index;not null" json:"ticket_id"`
	Ticket      *Ticket        `gorm:"foreignKey:TicketID" json:"ticket,omitempty"`
	UploaderID  uint           `gorm:"index;not null" json:"uploader_id"`
	Uploader    *User          `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
	FileName    string         `gorm:"size:300;not null" json:"file_name"`
	StoredName  string         `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ContentType string         `gorm:"size:100" json:"content_type"`
	Size        int64          `json:"size"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Attachment) TableName() string { return "attachments" }
