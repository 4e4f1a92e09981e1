package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const purposePasswordReset = "password_reset"

// ResetClaims is bound to the password hash it was issued against, so a
// used link dies as soon as the password changes.
type ResetClaims struct {
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

func NewResetToken(secret []byte, userID uint, passwordHash string, now time.Time, ttl time.Duration) (string, error) {
	claims := ResetClaims{
		Purpose:     purposePasswordReset,
		Fingerprint: Sha256Hex(passwordHash)[:16],
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func ResetClaimsFromToken(tokenStr string, secret []byte) (*ResetClaims, error) {
	var claims ResetClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Purpose != purposePasswordReset {
		return nil, fmt.Errorf("%w: wrong purpose", ErrInvalidToken)
	}
	return &claims, nil
}

func (c *ResetClaims) Matches(passwordHash string) bool {
	return c.Fingerprint == Sha256Hex(passwordHash)[:16]
}
