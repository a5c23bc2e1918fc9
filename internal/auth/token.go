package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cashplan/cashplan/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingToken = errors.New("missing bearer token")
var ErrInvalidToken = errors.New("invalid token")

// Claims are the claims issued by the hosted auth provider. Subject is the
// provider's user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Identity struct {
	Uid   string
	Email string
}

type TokenValidator struct {
	secret []byte
	issuer string
}

func NewTokenValidator(cfg config.Auth) TokenValidator {
	return TokenValidator{secret: []byte(cfg.JwtSecret), issuer: cfg.Issuer}
}

// FromHeader extracts the token of an "Authorization: Bearer <token>" header.
func FromHeader(header string) (string, error) {
	token, found := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

func (v TokenValidator) Validate(tokenString string) (Identity, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, options...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{Uid: claims.Subject, Email: claims.Email}, nil
}
