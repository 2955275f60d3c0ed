package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vidtube/backend/internal/models"
)

var (
	// ErrInvalidAccessToken indicates the presented access token failed verification.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrSessionNotFound indicates the presented refresh token does not match any user.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenExpired indicates the stored refresh token has expired.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// TokenStore persists the single active refresh token per user. A newly saved
// token supersedes whatever was stored before; there is no rotation history.
type TokenStore interface {
	SaveRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	FindByRefreshToken(ctx context.Context, token string) (models.User, error)
	ClearRefreshToken(ctx context.Context, userID string) error
}

type accessClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager issues short-lived JWT access tokens and opaque refresh tokens
// validated by exact match against the stored value.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	store TokenStore
}

// NewManager constructs a Manager signing access tokens with the provided secret.
func NewManager(secret []byte, accessTTL, refreshTTL time.Duration, store TokenStore) *Manager {
	if len(secret) == 0 {
		panic("auth: signing secret must not be empty")
	}
	if store == nil {
		panic("auth: token store must not be nil")
	}
	return &Manager{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
	}
}

// Issue creates a new access/refresh token pair for the user and persists the
// refresh token, superseding any previously stored one.
func (m *Manager) Issue(ctx context.Context, user models.User) (models.SessionTokens, error) {
	if user.ID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := time.Now().UTC()
	accessExpiry := now.Add(m.accessTTL)
	refreshExpiry := now.Add(m.refreshTTL)

	claims := accessClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := randomToken()
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.store.SaveRefreshToken(ctx, user.ID, refreshToken, refreshExpiry); err != nil {
		return models.SessionTokens{}, fmt.Errorf("save refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// exactly match the stored value for its user and must not have expired.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.User, models.SessionTokens, error) {
	if refreshToken == "" {
		return models.User{}, models.SessionTokens{}, ErrSessionNotFound
	}

	user, err := m.store.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	if user.RefreshToken != refreshToken {
		return models.User{}, models.SessionTokens{}, ErrSessionNotFound
	}

	if user.RefreshExpiresAt == nil || time.Now().UTC().After(*user.RefreshExpiresAt) {
		_ = m.store.ClearRefreshToken(ctx, user.ID)
		return models.User{}, models.SessionTokens{}, ErrRefreshTokenExpired
	}

	tokens, err := m.Issue(ctx, user)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}
	return user, tokens, nil
}

// Revoke clears the user's stored refresh token, ending the session.
func (m *Manager) Revoke(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	_ = m.store.ClearRefreshToken(ctx, userID)
}

// Verify validates an access token's signature and expiry and returns the
// subject user id.
func (m *Manager) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil {
		return "", ErrInvalidAccessToken
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidAccessToken
	}

	return claims.Subject, nil
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
