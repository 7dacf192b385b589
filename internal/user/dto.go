// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type UpdateUserRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type UpdateUserTierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=free pro premium enterprise"`
}

// UpdatePreferencesRequest carries the full alert profile. Category
// and delivery-method values are validated against the closed sets the
// pipeline understands.
type UpdatePreferencesRequest struct {
	Categories   []string `json:"categories"    validate:"omitempty,dive,oneof=sports music entertainment comedy theater other"`
	Venues       []string `json:"venues"        validate:"omitempty,dive,min=1,max=200"`
	MaxPrice     float64  `json:"max_price"     validate:"omitempty,gte=0"`
	MinSavings   float64  `json:"min_savings"   validate:"omitempty,gte=0,lte=100"`
	AlertMethods []string `json:"alert_methods" validate:"omitempty,dive,oneof=email sms webhook push"`
}

type PreferencesResponse struct {
	Categories   []string `json:"categories"`
	Venues       []string `json:"venues"`
	MaxPrice     float64  `json:"max_price"`
	MinSavings   float64  `json:"min_savings"`
	AlertMethods []string `json:"alert_methods"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Tier      string    `json:"tier"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
	Tier     string `json:"tier"`
}

// Normalize clamps paging inputs to sane bounds before they reach SQL.
func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func toUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Tier:      u.Tier,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponseList(users []User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	return out
}

func toPreferencesResponse(p *Preferences) PreferencesResponse {
	return PreferencesResponse{
		Categories:   p.Categories,
		Venues:       p.Venues,
		MaxPrice:     p.MaxPrice,
		MinSavings:   p.MinSavings,
		AlertMethods: p.AlertMethods,
	}
}
