// Package token issues and verifies the two JWT kinds used by the session
// protocol. Access and refresh tokens are signed with independent secrets
// and expiry windows so an expired access token can still be renewed.
package token

import (
	"errors"
	"fmt"
	"time"

	"marketplace-auth/internal/config"
	apperrors "marketplace-auth/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload carried by both token kinds.
type Claims struct {
	UserID uuid.UUID `json:"id"`
	jwt.RegisteredClaims
}

// Pair is one freshly signed access/refresh token couple.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(cfg config.JWTConfig) *Service {
	return &Service{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     time.Duration(cfg.AccessExpiryMinutes) * time.Minute,
		refreshTTL:    time.Duration(cfg.RefreshExpiryHours) * time.Hour,
	}
}

// IssuePair signs a new access/refresh token pair for the given user.
func (s *Service) IssuePair(userID uuid.UUID) (*Pair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.accessTTL)

	accessToken, err := sign(userID, s.accessSecret, now, accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := sign(userID, s.refreshSecret, now, now.Add(s.refreshTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiry.Unix(),
	}, nil
}

// VerifyAccess validates an access token. It returns ErrTokenExpired when
// the token is well-formed but past its expiry, ErrTokenInvalid for any
// other verification failure.
func (s *Service) VerifyAccess(tokenString string) (*Claims, error) {
	return verify(tokenString, s.accessSecret)
}

// VerifyRefresh validates a refresh token with the same error contract as
// VerifyAccess.
func (s *Service) VerifyRefresh(tokenString string) (*Claims, error) {
	return verify(tokenString, s.refreshSecret)
}

func sign(userID uuid.UUID, secret []byte, issuedAt, expiresAt time.Time) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verify(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}

	return claims, nil
}
