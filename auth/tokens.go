package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rentals/entity"
)

const issuer = "rentals"

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 tokens carrying an AuthContext.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) Tokens {
	if secret == "" {
		panic("jwt secret is empty")
	}

	return Tokens{secret: []byte(secret), ttl: ttl}
}

func (t Tokens) Issue(user entity.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}

	return signed, nil
}

func (t Tokens) Parse(tokenString string) (entity.AuthContext, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		c,
		func(token *jwt.Token) (any, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return entity.AuthContext{}, fmt.Errorf("invalid token: %w", err)
	}

	role := entity.Role(c.Role)
	if c.Subject == "" || !role.Valid() {
		return entity.AuthContext{}, errors.New("invalid token claims")
	}

	return entity.AuthContext{UserID: c.Subject, Role: role}, nil
}
