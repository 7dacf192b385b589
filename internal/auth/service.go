// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mazzlabs/ripcity-dispatch/internal/core"
	"github.com/mazzlabs/ripcity-dispatch/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrEmailExists        = errors.New("email already exists")
)

// UserInfo is the slice of the user record the auth flows need. The
// user package owns the full record; auth only reads identity, tier and
// the credential material.
type UserInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	Tier         string
	TokenVersion int
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(
		ctx context.Context,
		email, passwordHash, name string,
	) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// Service owns login, registration, refresh rotation and session
// revocation. Refresh tokens are opaque and stored hashed; access
// tokens are stateless JWTs revoked through a redis blacklist keyed by
// token id.
type Service struct {
	repo  Repository
	jwt   *JWTManager
	users UserProvider
	redis *redis.Client
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	users UserProvider,
	redisClient *redis.Client,
) *Service {
	return &Service{
		repo:  repo,
		jwt:   jwt,
		users: users,
		redis: redisClient,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Burn a hash comparison anyway so a missing account is
			// not distinguishable from a wrong password by timing.
			//nolint:errcheck
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up account: %w", err)
	}

	valid, upgradedHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if upgradedHash != "" {
		//nolint:errcheck // hash upgrade is best effort
		_ = s.users.UpdatePassword(ctx, user.ID, upgradedHash)
	}

	return s.openSession(ctx, user, sessionContext{
		UserAgent: userAgent,
		IPAddress: ipAddress,
	})
}

// Register creates the account and signs it straight in. New accounts
// start on the free tier with empty alert preferences; upgrades go
// through the admin surface.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Email, hash, req.Name)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	return s.openSession(ctx, user, sessionContext{
		UserAgent: userAgent,
		IPAddress: ipAddress,
	})
}

// Refresh rotates the presented token within its family. Presenting an
// already-used token means the token leaked to a second party, so the
// whole family is revoked before the error goes back.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("look up refresh token: %w", err)
	}

	if stored.IsUsed {
		//nolint:errcheck // family revocation proceeds regardless
		_ = s.repo.RevokeByFamilyID(ctx, stored.FamilyID)
		return nil, ErrTokenReuse
	}

	if stored.IsRevoked() {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
	}
	if stored.IsExpired() {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}

	return s.openSession(ctx, user, sessionContext{
		UserAgent:    userAgent,
		IPAddress:    ipAddress,
		FamilyID:     stored.FamilyID,
		RotatedToken: stored.ID,
	})
}

// Logout revokes the refresh token and blacklists the access token the
// request was authenticated with, so neither survives the call.
func (s *Service) Logout(
	ctx context.Context,
	refreshToken string,
	claims *middleware.AccessTokenClaims,
) error {
	stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("look up refresh token: %w", err)
	}

	if stored.UserID != claims.UserID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	if err := s.repo.RevokeByID(ctx, stored.ID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	return s.blacklistAccessToken(ctx, claims)
}

func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.repo.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	// Bumping the version invalidates every outstanding access token
	// without enumerating them.
	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("bump token version: %w", err)
	}

	return nil
}

func blacklistKey(tokenID string) string {
	return "blacklist:" + tokenID
}

func (s *Service) blacklistAccessToken(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	ttl := time.Until(claims.ExpiresAt)
	if claims.TokenID == "" || ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(
		ctx,
		blacklistKey(claims.TokenID),
		"1",
		ttl,
	).Err(); err != nil {
		return fmt.Errorf("blacklist access token: %w", err)
	}

	return nil
}

// IsAccessRevoked implements the authenticator's revocation check: the
// token id is on the logout blacklist, or the token predates the user's
// current token version.
func (s *Service) IsAccessRevoked(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) (bool, error) {
	if claims.TokenID != "" {
		listed, err := s.redis.Exists(
			ctx,
			blacklistKey(claims.TokenID),
		).Result()
		if err != nil {
			return false, fmt.Errorf("check blacklist: %w", err)
		}
		if listed > 0 {
			return true, nil
		}
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return false, fmt.Errorf("look up account: %w", err)
	}

	return claims.TokenVersion < user.TokenVersion, nil
}

func (s *Service) GetActiveSessions(
	ctx context.Context,
	userID string,
) ([]SessionInfo, error) {
	tokens, err := s.repo.GetActiveSessionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, SessionInfo{
			ID:        t.ID,
			UserAgent: t.UserAgent,
			IPAddress: t.IPAddress,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
		})
	}

	return sessions, nil
}

func (s *Service) RevokeSession(
	ctx context.Context,
	userID, sessionID string,
) error {
	token, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("look up session: %w", err)
	}

	if token.UserID != userID {
		return fmt.Errorf("revoke session: %w", core.ErrForbidden)
	}

	if err := s.repo.RevokeByID(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

// ChangePassword re-verifies the current password, swaps the hash and
// kills every session. The caller has to log in again.
func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("look up account: %w", err)
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		currentPassword,
		user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return s.LogoutAll(ctx, userID)
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		Tier:  user.Tier,
	}, nil
}

// sessionContext carries the request metadata a new session records.
// FamilyID and RotatedToken are set only on refresh.
type sessionContext struct {
	UserAgent    string
	IPAddress    string
	FamilyID     string
	RotatedToken string
}

func (s *Service) openSession(
	ctx context.Context,
	user *UserInfo,
	sc sessionContext,
) (*AuthResponse, error) {
	accessToken, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       user.ID,
		Role:         user.Role,
		Tier:         user.Tier,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refresh, err := s.jwt.CreateRefreshToken(sc.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	entity := &RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: refresh.Hash,
		FamilyID:  refresh.FamilyID,
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: sc.UserAgent,
		IPAddress: sc.IPAddress,
	}
	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	if sc.RotatedToken != "" {
		//nolint:errcheck // chain bookkeeping is best effort
		_ = s.repo.MarkAsUsed(ctx, sc.RotatedToken, entity.ID)
	}

	ttl := s.jwt.AccessTokenTTL()

	return &AuthResponse{
		User: UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      user.Role,
			Tier:      user.Tier,
			CreatedAt: time.Now(),
		},
		Tokens: TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refresh.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(ttl / time.Second),
			ExpiresAt:    time.Now().Add(ttl),
		},
	}, nil
}

var _ middleware.RevocationChecker = (*Service)(nil)
