package pgdoc

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid session token")

type sessionClaims struct {
	jwt.RegisteredClaims
}

// tokenSigner issues the session secrets handed to clients. A secret is an
// HS256 token naming the session and its account; the session row decides
// whether it is still valid.
type tokenSigner struct {
	key []byte
	now func() time.Time
}

func (s tokenSigner) sign(sessionID, accountID string, expiresAt time.Time) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (s tokenSigner) parse(secret string) (*sessionClaims, error) {
	token, err := jwt.ParseWithClaims(secret, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, errInvalidToken
	}

	return claims, nil
}
