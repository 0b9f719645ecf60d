package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	UserTypeStudent = "student"
	UserTypeAdmin   = "admin"

	// TokenTTL is how long an issued token stays valid.
	TokenTTL = 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller as carried in the token. The core
// trusts it without re-validating credentials.
type Identity struct {
	ID       uuid.UUID
	Email    string
	UserType string
	Role     string
}

func (i Identity) IsAdmin() bool {
	return i.UserType == UserTypeAdmin
}

type Claims struct {
	Email    string `json:"email"`
	UserType string `json:"userType"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses HS256 tokens with an injected secret.
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{secret: secret}
}

func (t *TokenIssuer) Generate(identity Identity, now time.Time) (string, error) {
	claims := Claims{
		Email:    identity.Email,
		UserType: identity.UserType,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			Issuer:    "campuslibrary",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) Parse(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return t.secret, nil
		})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Identity{
		ID:       id,
		Email:    claims.Email,
		UserType: claims.UserType,
		Role:     claims.Role,
	}, nil
}
