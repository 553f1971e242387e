package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PermissionList stores a role's permission tags as a JSON array in a text
// column, so custom roles work identically on sqlite, mysql and postgres.
type PermissionList []string

func (l PermissionList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *PermissionList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PermissionList", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

// Contains reports whether the list holds the given permission tag.
func (l PermissionList) Contains(perm string) bool {
	for _, p := range l {
		if p == perm {
			return true
		}
	}
	return false
}

// Role is a named, ordered bundle of permissions scoped to one project.
// Position is the authority rank: lower number = more authority, 0 is
// reserved for the project's most powerful built-in role.
type Role struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   uint           `gorm:"uniqueIndex:idx_project_role_name;index;not null" json:"project_id"`
	Name        string         `gorm:"uniqueIndex:idx_project_role_name;size:100;not null" json:"name"`
	Position    int            `gorm:"not null" json:"position"`
	Permissions PermissionList `gorm:"type:text" json:"permissions"`
	IsDefault   bool           `gorm:"default:false" json:"is_default"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Role) TableName() string { return "roles" }
