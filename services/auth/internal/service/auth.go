package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Skotchmaster/vente_shop/pkg/events"
	pkghash "github.com/Skotchmaster/vente_shop/pkg/hash"
	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/mailer"
	"github.com/Skotchmaster/vente_shop/pkg/metrics"
	"github.com/Skotchmaster/vente_shop/pkg/tokens"
	"github.com/Skotchmaster/vente_shop/services/auth/internal/models"
	"github.com/Skotchmaster/vente_shop/services/auth/internal/repo"
)

const resetTokenTTL = time.Hour

type AuthService struct {
	Repo        *repo.GormRepo
	Issuer      *TokenIssuer
	Mailer      mailer.Mailer
	Events      events.Publisher
	FrontendURL string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	ExpiresIn    int64
	User         *models.User
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" || email == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}

	if taken, err := s.Repo.UsernameTaken(ctx, username, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: username already taken", ErrConflict)
	}
	if taken, err := s.Repo.EmailTaken(ctx, email, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: email already used", ErrConflict)
	}

	pwHash, err := pkghash.HashPassword(password)
	if err != nil {
		if errors.Is(err, pkghash.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         tokens.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username already taken", ErrConflict)
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, err
	}

	s.publish(ctx, "user_registered", user.ID, map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			l.Warn("login_failed", "status", 401, "reason", "unknown username")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !pkghash.CheckPassword(user.PasswordHash, password) {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	access, err := s.Issuer.IssueAccessToken(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	refresh, refreshExp, err := s.Issuer.IssueRefreshToken(ctx, user)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return &LoginResult{
		AccessToken:  access.Token,
		RefreshToken: refresh,
		AccessExp:    access.ExpiresAt,
		RefreshExp:   refreshExp,
		ExpiresIn:    access.ExpiresIn,
		User:         user,
	}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AccessToken, error) {
	return s.Issuer.Refresh(ctx, refreshToken)
}

func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	return s.Issuer.Revoke(ctx, refreshToken)
}

func (s *AuthService) Me(ctx context.Context, bearer string) (*models.User, error) {
	return s.Issuer.Authenticate(ctx, bearer)
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}

type ProfileUpdate struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, upd ProfileUpdate) (*models.User, error) {
	upd.Username = strings.TrimSpace(upd.Username)
	upd.Email = strings.TrimSpace(upd.Email)
	if upd.Username == "" || upd.Email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrValidation)
	}

	if taken, err := s.Repo.UsernameTaken(ctx, upd.Username, userID); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: username already taken", ErrConflict)
	}
	if taken, err := s.Repo.EmailTaken(ctx, upd.Email, userID); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: email already used", ErrConflict)
	}

	user, err := s.Repo.UpdateProfile(ctx, userID, map[string]any{
		"username":   upd.Username,
		"email":      upd.Email,
		"first_name": upd.FirstName,
		"last_name":  upd.LastName,
	})
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(err, repo.ErrDuplicate):
		return nil, fmt.Errorf("%w: username already taken", ErrConflict)
	}
	return user, err
}

// RequestPasswordReset mails a reset link. The link is bound to the current password hash.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: email not found", ErrNotFound)
		}
		return err
	}

	token, err := tokens.NewResetToken(s.Issuer.Secret, user.ID, user.PasswordHash, s.Issuer.Now(), resetTokenTTL)
	if err != nil {
		return err
	}

	link := s.FrontendURL + "/reset-password?token=" + url.QueryEscape(token)
	mailer.SendAsync(ctx, s.Mailer, mailer.Message{
		To:      user.Email,
		Subject: "Password reset",
		Body:    "Follow this link to choose a new password:\n\n" + link + "\n\nThe link is valid for one hour.",
	})
	return nil
}

func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, password, confirm string) error {
	if password == "" || password != confirm {
		return fmt.Errorf("%w: passwords do not match", ErrValidation)
	}

	claims, err := tokens.ResetClaimsFromToken(token, s.Issuer.Secret)
	if err != nil {
		return ErrInvalidToken
	}
	var userID uint
	if _, err := fmt.Sscan(claims.Subject, &userID); err != nil {
		return ErrInvalidToken
	}

	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if !claims.Matches(user.PasswordHash) {
		return ErrInvalidToken
	}

	pwHash, err := pkghash.HashPassword(password)
	if err != nil {
		if errors.Is(err, pkghash.ErrPasswordTooLong) {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, user.ID, pwHash); err != nil {
		return err
	}
	return s.Repo.RevokeAllForUser(ctx, user.ID)
}

func (s *AuthService) publish(ctx context.Context, eventType string, userID uint, payload any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, events.TopicUsers, fmt.Sprint(userID), eventType, payload); err != nil {
		metrics.SideEffectErrorsTotal.WithLabelValues("event").Inc()
		logging.FromContext(ctx).Warn("publish_event_failed", "event", eventType, "error", err)
	}
}
