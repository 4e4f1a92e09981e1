package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/vente_shop/services/auth/internal/models"
)

// ReplaceRefreshToken deactivates every active token of the user and stores
// the new one. The user row is written first so concurrent logins of the
// same user queue up behind each other.
func (r *GormRepo) ReplaceRefreshToken(ctx context.Context, token *models.RefreshToken, now time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", token.UserID).Update("last_login_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND is_active = ?", token.UserID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}

		token.IsActive = true
		return translate(tx.Create(token).Error)
	})
}

func (r *GormRepo) FindActiveRefresh(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.DB.WithContext(ctx).
		Where("token_hash = ? AND is_active = ?", tokenHash, true).
		First(&token).Error; err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (r *GormRepo) DeactivateRefresh(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// RevokeRefresh is a no-op when nothing active matches.
func (r *GormRepo) RevokeRefresh(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND is_active = ?", tokenHash, true).
		Update("is_active", false).Error
}

func (r *GormRepo) RevokeAllForUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
}

func (r *GormRepo) CountActiveRefresh(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count, err
}
