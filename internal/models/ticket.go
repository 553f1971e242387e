package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Ticket is a work item inside a project. Number is the per-project
// sequential id shown to users as KEY-N.
type Ticket struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ProjectID     uint           `gorm:"uniqueIndex:idx_project_ticket_number;index;not null" json:"project_id"`
	Project       *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Number        int            `gorm:"uniqueIndex:idx_project_ticket_number;not null" json:"number"`
	Title         string         `gorm:"size:300;not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	Type          string         `gorm:"size:20;default:task" json:"type"`       // task, bug, story
	Priority      string         `gorm:"size:20;default:medium" json:"priority"` // low, medium, high, urgent
	BoardColumnID *uint          `gorm:"index" json:"board_column_id"`
	SprintID      *uint          `gorm:"index" json:"sprint_id"`
	AuthorID      uint           `gorm:"index;not null" json:"author_id"`
	Author        *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	AssigneeID    *uint          `gorm:"index" json:"assignee_id"`
	Assignee      *User          `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	DueDate       *time.Time     `json:"due_date"`
	Labels        []Label        `gorm:"many2many:ticket_labels;" json:"labels,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Ticket) TableName() string { return "tickets" }

// DisplayKey formats the user-facing ticket key, e.g. "PAY-42".
func (t *Ticket) DisplayKey(projectKey string) string {
	return fmt.Sprintf("%s-%d", projectKey, t.Number)
}
