// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mazzlabs/ripcity-dispatch/internal/auth"
	"github.com/mazzlabs/ripcity-dispatch/internal/core"
)

// Service covers both the self-service surface (profile, alert
// preferences) and the admin account-management surface. It also
// backs the auth package's account lookups.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Account lookups consumed by the auth package. Emails are stored
// lowercased, so lookups normalize before hitting the repository.

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name string,
) (*auth.UserInfo, error) {
	u := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         RoleUser,
		Tier:         core.TierFree,
		Active:       true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) IncrementTokenVersion(ctx context.Context, userID string) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// Self-service operations. Each takes the caller's own ID from the
// request context, so a missing ID is an authorization failure rather
// than a not-found.

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if err := requireUserID(userID, "get me"); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(ctx context.Context, userID string, req UpdateUserRequest) (*User, error) {
	if err := requireUserID(userID, "update me"); err != nil {
		return nil, err
	}
	return s.UpdateUser(ctx, userID, req)
}

func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	if err := requireUserID(userID, "delete me"); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, userID)
}

func (s *Service) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &u.Preferences, nil
}

// UpdatePreferences replaces the whole alert profile. Partial merges
// are deliberately not supported; clients send the full document.
func (s *Service) UpdatePreferences(
	ctx context.Context,
	userID string,
	req UpdatePreferencesRequest,
) (*Preferences, error) {
	prefs := Preferences{
		Categories:   req.Categories,
		Venues:       req.Venues,
		MaxPrice:     req.MaxPrice,
		MinSavings:   req.MinSavings,
		AlertMethods: req.AlertMethods,
	}
	if err := s.repo.UpdatePreferences(ctx, userID, prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// Admin operations.

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	return s.mutate(ctx, id, func(u *User) {
		if req.Name != nil {
			u.Name = *req.Name
		}
	})
}

func (s *Service) UpdateUserRole(ctx context.Context, id, role string) (*User, error) {
	if role != RoleUser && role != RoleAdmin {
		return nil, fmt.Errorf("update role: invalid role %q: %w",
			role, core.ErrInvalidInput)
	}
	return s.mutate(ctx, id, func(u *User) { u.Role = role })
}

// UpdateUserTier moves an account between subscription tiers. Tier
// changes take effect on the next issued access token; outstanding
// tokens keep their minted tier until they expire.
func (s *Service) UpdateUserTier(ctx context.Context, id, tier string) (*User, error) {
	if !core.IsValidTier(tier) {
		return nil, fmt.Errorf("update tier: invalid tier %q: %w",
			tier, core.ErrInvalidInput)
	}
	return s.mutate(ctx, id, func(u *User) { u.Tier = tier })
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, params ListUsersParams) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

// CanDeleteUser enforces the deletion policy: anyone may delete their
// own account, admins may delete non-admin accounts, and admin
// accounts can only be removed by their owner.
func (s *Service) CanDeleteUser(ctx context.Context, requesterID, targetID string) error {
	if requesterID == targetID {
		return nil
	}

	requester, err := s.repo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}
	if !requester.IsAdmin() {
		return fmt.Errorf("delete user: %w", core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		return fmt.Errorf("cannot delete admin users: %w", core.ErrForbidden)
	}
	return nil
}

// mutate loads an account, applies the edit and writes it back.
func (s *Service) mutate(ctx context.Context, id string, apply func(*User)) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(u)
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func requireUserID(userID, op string) error {
	if userID == "" {
		return fmt.Errorf("%s: %w", op, core.ErrUnauthorized)
	}
	return nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Tier:         u.Tier,
		TokenVersion: u.TokenVersion,
	}
}

var _ auth.UserProvider = (*Service)(nil)
