package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/metrics"
	"github.com/Skotchmaster/vente_shop/pkg/tokens"
	"github.com/Skotchmaster/vente_shop/services/auth/internal/models"
	"github.com/Skotchmaster/vente_shop/services/auth/internal/repo"
)

// TokenIssuer mints stateless access tokens and database backed refresh tokens.
type TokenIssuer struct {
	Repo       *repo.GormRepo
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

func NewTokenIssuer(r *repo.GormRepo, secret []byte, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		Repo:       r,
		Secret:     secret,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

type AccessToken struct {
	Token     string
	ExpiresAt time.Time
	ExpiresIn int64
}

func (s *TokenIssuer) IssueAccessToken(user *models.User) (*AccessToken, error) {
	token, exp, err := tokens.NewAccessToken(s.Secret, user.ID, user.Username, user.Role, s.Now(), s.AccessTTL)
	if err != nil {
		return nil, err
	}
	return &AccessToken{Token: token, ExpiresAt: exp, ExpiresIn: int64(s.AccessTTL.Seconds())}, nil
}

// IssueRefreshToken leaves the new token as the only active one of the user.
func (s *TokenIssuer) IssueRefreshToken(ctx context.Context, user *models.User) (string, time.Time, error) {
	now := s.Now()
	raw := tokens.NewOpaque()
	row := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: tokens.Sha256Hex(raw),
		ExpiresAt: now.Add(s.RefreshTTL),
	}

	if err := s.Repo.ReplaceRefreshToken(ctx, row, now); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", time.Time{}, fmt.Errorf("%w: user %d", ErrNotFound, user.ID)
		}
		return "", time.Time{}, err
	}
	return raw, row.ExpiresAt, nil
}

// Refresh exchanges an active refresh token for a new access token. The refresh token is not rotated.
func (s *TokenIssuer) Refresh(ctx context.Context, refreshToken string) (*AccessToken, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshToken == "" {
		metrics.TokenRefreshTotal.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidToken
	}

	row, err := s.Repo.FindActiveRefresh(ctx, tokens.Sha256Hex(refreshToken))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			metrics.TokenRefreshTotal.WithLabelValues("invalid").Inc()
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if !s.Now().Before(row.ExpiresAt) {
		if err := s.Repo.DeactivateRefresh(ctx, row.ID); err != nil {
			l.Error("refresh_error", "status", 500, "reason", "cannot deactivate expired token", "error", err)
			return nil, err
		}
		metrics.TokenRefreshTotal.WithLabelValues("expired").Inc()
		l.Info("refresh_token_expired", "user_id", row.UserID)
		return nil, fmt.Errorf("%w: refresh token expired", ErrInvalidToken)
	}

	user, err := s.Repo.GetUserByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	access, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	metrics.TokenRefreshTotal.WithLabelValues("ok").Inc()
	return access, nil
}

func (s *TokenIssuer) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Repo.RevokeRefresh(ctx, tokens.Sha256Hex(refreshToken))
}

// Authenticate resolves a bearer access token to its user.
func (s *TokenIssuer) Authenticate(ctx context.Context, bearer string) (*models.User, error) {
	claims, err := tokens.AccessClaimsFromToken(bearer, s.Secret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.Repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
