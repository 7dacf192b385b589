// AngelaMos | 2026
// entity.go

package user

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type User struct {
	ID           string      `db:"id"`
	Email        string      `db:"email"`
	PasswordHash string      `db:"password_hash"`
	Name         string      `db:"name"`
	Role         string      `db:"role"`
	Tier         string      `db:"tier"`
	Active       bool        `db:"active"`
	TokenVersion int         `db:"token_version"`
	Preferences  Preferences `db:"preferences"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	DeletedAt    *time.Time  `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Preferences is the user's alert matching profile: which deals they want
// to hear about and how. Stored as a single JSONB column.
type Preferences struct {
	Categories   []string `json:"categories,omitempty"`
	Venues       []string `json:"venues,omitempty"`
	MaxPrice     float64  `json:"max_price,omitempty"`
	MinSavings   float64  `json:"min_savings,omitempty"`
	AlertMethods []string `json:"alert_methods,omitempty"`
}

func (p Preferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *Preferences) Scan(src any) error {
	if src == nil {
		*p = Preferences{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan preferences: unsupported type %T", src)
	}

	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("scan preferences: %w", err)
	}

	return nil
}

// WantsMethod reports whether the user opted in to an alert delivery method.
func (p Preferences) WantsMethod(method string) bool {
	for _, m := range p.AlertMethods {
		if m == method {
			return true
		}
	}
	return false
}
