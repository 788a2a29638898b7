package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNotAdmin     = errors.New("administrator role required")
)

// Claims are the registered claims plus the caller's role ids.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

func (c *Claims) HasRole(role domain.RoleID) bool {
	return slices.Contains(c.Roles, string(role))
}

// IssueToken signs an HS256 token for subject carrying roles.
func IssueToken(subject string, roles []domain.RoleID, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Roles: domain.RoleStrings(roles),
	})

	signed, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Authorize parses tokenString and requires the administrator role.
func Authorize(tokenString string, secretKey []byte) (*Claims, error) {
	claims, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return nil, err
	}
	if !claims.HasRole(domain.RoleAdministrator) {
		return nil, ErrNotAdmin
	}
	return claims, nil
}
