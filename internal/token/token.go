// Package token encodes and decodes the bearer credential issued at login.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v4"

	"github.com/jask/coursedesk/internal/model"
)

var (
	ErrMalformed = errors.New("token: malformed")
	ErrExpired   = errors.New("token: expired")
	ErrSignature = errors.New("token: invalid signature")
)

// Claims is the payload segment of the credential.
type Claims struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Identity converts claims into an Identity, rejecting unknown roles.
func (c *Claims) Identity() (model.Identity, error) {
	role, err := model.ParseRole(c.Role)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if c.ID <= 0 || strings.TrimSpace(c.Username) == "" {
		return model.Identity{}, fmt.Errorf("%w: missing id or username", ErrMalformed)
	}
	return model.Identity{ID: c.ID, Username: c.Username, Role: role}, nil
}

// Issue signs an HS256 credential for id. ttl <= 0 issues a token without expiry.
func Issue(secret []byte, id model.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		ID:       id.ID,
		Username: id.Username,
		Role:     string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Subject:  fmt.Sprint(id.ID),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// DecodeUnverified reads the middle segment only. The header and signature
// are not inspected, and expiry is not checked.
func DecodeUnverified(raw string) (model.Identity, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return model.Identity{}, fmt.Errorf("%w: want 3 segments, got %d", ErrMalformed, len(parts))
	}
	payload, err := jwt.DecodeSegment(parts[1])
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	claims := &Claims{}
	if err := sonic.ConfigStd.Unmarshal(payload, claims); err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return claims.Identity()
}

// Verify checks an HS256 signature and expiry before returning the identity.
func Verify(secret []byte, raw string) (model.Identity, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
				return model.Identity{}, fmt.Errorf("%w: %v", ErrSignature, err)
			case ve.Errors&jwt.ValidationErrorExpired != 0:
				return model.Identity{}, ErrExpired
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return model.Identity{}, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
		}
		return model.Identity{}, fmt.Errorf("%w: %v", ErrSignature, err)
	}
	if !tok.Valid {
		return model.Identity{}, ErrSignature
	}
	return claims.Identity()
}
