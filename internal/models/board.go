package models

import (
	"time"
)

// BoardColumn is an ordered column on a project's board. Position is the
// display order, 0-based and contiguous within a project.
type BoardColumn struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"index;not null" json:"project_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Position  int       `gorm:"not null" json:"position"`
	WIPLimit  *int      `json:"wip_limit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BoardColumn) TableName() string { return "board_columns" }
