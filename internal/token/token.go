package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/salonsys/salon-admin/internal/apperr"
	"github.com/salonsys/salon-admin/internal/models"
)

// DefaultTTL is the validity window applied when the config does not set one.
const DefaultTTL = 30 * time.Minute

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.Unauthenticated, "invalid token subject", err)
	}
	return uint(id), nil
}

// Service issues and verifies stateless HS256 access tokens. The secret and
// TTL are fixed at construction; rotating the secret invalidates every token
// issued before the rotation.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: secret, ttl: ttl}
}

// Issue signs an access token carrying the user's id, email and role
// snapshot. The role is not re-checked against live state until the next
// issuance.
func (s *Service) Issue(u *models.User) (string, time.Time, error) {
	exp := time.Now().Add(s.ttl)
	claims := Claims{
		Email: u.Email,
		Role:  u.Role(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tkn.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature and expiry. Malformed, mis-signed or expired input
// yields a normal Unauthenticated error, never a panic.
func (s *Service) Verify(raw string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, apperr.E(apperr.Unauthenticated, "unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, apperr.Wrap(apperr.Unauthenticated, "invalid or expired token", err)
	}
	return &claims, nil
}
