// Package token issues and verifies the JWT pair used by the API: a
// short-lived access token presented as a bearer credential, and a
// longer-lived refresh token that can mint new access tokens. Both are
// HS256-signed with a shared secret.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. The scope claim keeps the two token kinds from being
// swapped: a refresh token is never accepted as a bearer credential and an
// access token cannot be refreshed.
const (
	ScopeAccess  = "access"
	ScopeRefresh = "refresh"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, wrong signing method, expired, or wrong scope.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload carried by both token kinds.
type Claims struct {
	Username string `json:"username"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into the user's id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id < 1 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// Pair bundles the two tokens returned by login.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Manager signs and verifies tokens with a fixed secret and per-scope TTLs.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager returns a Manager signing with the given secret.
func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (m *Manager) sign(userID int64, username, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		Scope:    scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// IssuePair mints a fresh access+refresh pair for the given user.
func (m *Manager) IssuePair(userID int64, username string) (Pair, error) {
	access, err := m.sign(userID, username, ScopeAccess, m.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := m.sign(userID, username, ScopeRefresh, m.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// Verify parses and validates a raw token and checks it carries the
// expected scope. Returns ErrInvalidToken on any failure.
func (m *Manager) Verify(raw, scope string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Scope != scope {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (m *Manager) Refresh(refreshToken string) (string, error) {
	claims, err := m.Verify(refreshToken, ScopeRefresh)
	if err != nil {
		return "", err
	}
	userID, err := claims.UserID()
	if err != nil {
		return "", err
	}
	return m.sign(userID, claims.Username, ScopeAccess, m.accessTTL)
}
