package models

import (
	"time"

	"gorm.io/gorm"
)

// Sprint statuses
const (
	SprintPlanned = "planned"
	SprintActive  = "active"
	SprintClosed  = "closed"
)

// Sprint is a time-boxed iteration within a project.
type Sprint struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"index;not null" json:"project_id"`
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	Goal      string         `gorm:"type:text" json:"goal"`
	Status    string         `gorm:"size:20;default:planned" json:"status"` // planned, active, closed
	StartDate *time.Time     `json:"start_date"`
	EndDate   *time.Time     `json:"end_date"`
	ClosedAt  *time.Time     `json:"closed_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Sprint) TableName() string { return "sprints" }
