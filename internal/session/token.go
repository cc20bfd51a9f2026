package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// tokenCodec signs the session id carried by the cookie so that a client
// cannot forge or enumerate session ids.
type tokenCodec struct {
	secret []byte
}

func (c tokenCodec) sign(sessionID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := tokenClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// parse verifies the signature and returns the session id. Expired tokens are
// rejected unless allowExpired is set, which logout uses to clean up.
func (c tokenCodec) parse(token string, allowExpired bool) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	} else {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid || claims.SessionID == "" {
		return "", ErrNoSession
	}
	return claims.SessionID, nil
}
