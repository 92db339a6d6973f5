package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser        Role = "user"
	RoleFoodPartner Role = "food-partner"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingSecret = errors.New("token signing secret is not configured")
)

type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// AccountID parses the subject back into the account's ObjectID.
func (c *Claims) AccountID() (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Subject)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

// TokenManager issues and verifies session tokens with a symmetric secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Ready fails when the manager cannot sign or verify anything.
func (m *TokenManager) Ready() error {
	if m == nil || len(m.secret) == 0 {
		return ErrMissingSecret
	}
	return nil
}

// SetClock replaces the time source used for issuing and expiry checks.
func (m *TokenManager) SetClock(now func() time.Time) {
	m.now = now
}

func (m *TokenManager) Issue(accountID primitive.ObjectID, role Role) (string, error) {
	if err := m.Ready(); err != nil {
		return "", err
	}

	now := m.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  accountID.Hex(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify returns the claims of a well-formed, correctly signed, unexpired
// token. Every other outcome is ErrInvalidToken.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	if err := m.Ready(); err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.AccountID(); err != nil {
		return nil, err
	}
	return claims, nil
}
