package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"libraryapi/internal/metrics"
	"libraryapi/internal/platform/crypto"
	"libraryapi/internal/user"

	"github.com/rs/zerolog/log"
)

var (
	// ErrUnauthorized covers bad credentials and inactive accounts.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidToken covers malformed, expired, wrong-type and revoked tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrAlreadyRevoked is returned by BlacklistRepository.Add for a known jti.
	ErrAlreadyRevoked = errors.New("token already revoked")
)

// TokenPair is the result of a successful credential exchange.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

type Service struct {
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	users      UserStore
	blacklist  BlacklistRepository
	now        func() time.Time
}

func NewService(secret string, accessTTL, refreshTTL time.Duration, users UserStore, blacklist BlacklistRepository) *Service {
	return &Service{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		users:      users,
		blacklist:  blacklist,
		now:        time.Now,
	}
}

// ObtainPair exchanges a username and password for an access/refresh pair.
func (s *Service) ObtainPair(ctx context.Context, username, password string) (TokenPair, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) || !u.IsActive {
		return TokenPair{}, ErrUnauthorized
	}

	access, err := crypto.GenerateToken(s.secret, u.ID, crypto.TokenTypeAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := crypto.GenerateToken(s.secret, u.ID, crypto.TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, u.ID, s.now()); err != nil {
		log.Warn().Err(err).Int64("user_id", u.ID).Msg("update last_login failed")
	}

	return TokenPair{AccessToken: access.Token, RefreshToken: refresh.Token, ExpiresIn: s.accessTTL}, nil
}

// verifyRefresh checks signature, expiry, type and revocation of a refresh token.
func (s *Service) verifyRefresh(ctx context.Context, refreshToken string) (*crypto.Claims, int64, error) {
	claims, err := crypto.ParseTokenOfType(s.secret, refreshToken, crypto.TokenTypeRefresh)
	if err != nil {
		return nil, 0, ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil || claims.ID == "" {
		return nil, 0, ErrInvalidToken
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, 0, err
	}
	if revoked {
		return nil, 0, ErrInvalidToken
	}
	return claims, userID, nil
}

// Refresh issues a new access token for a valid refresh token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	_, userID, err := s.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, err
	}
	if !u.IsActive {
		return TokenPair{}, ErrUnauthorized
	}

	access, err := crypto.GenerateToken(s.secret, u.ID, crypto.TokenTypeAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	return TokenPair{AccessToken: access.Token, ExpiresIn: s.accessTTL}, nil
}

// Logout revokes a refresh token until its natural expiry.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, userID, err := s.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}

	if err := s.blacklist.Add(ctx, claims.ID, userID, claims.ExpiresAt.Time); err != nil {
		if errors.Is(err, ErrAlreadyRevoked) {
			return ErrInvalidToken
		}
		return err
	}
	metrics.TokensRevokedTotal.Inc()
	return nil
}

// CleanupExpired drops blacklist entries whose tokens have expired anyway.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	return s.blacklist.CleanupExpired(ctx)
}
