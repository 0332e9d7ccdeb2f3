// Package jwt validates bearer tokens at the HTTP boundary. Who a caller is
// is supplied to the engine, never derived by it: the token subject becomes
// the opaque caller principal and nothing else is read from the claims.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"repute/pkg/domain"
	dErrors "repute/pkg/domainerrors"
)

// Claims carries the caller principal in the registered subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// Service signs and validates HS256 access tokens.
type Service struct {
	signingKey []byte
	issuer     string
}

func NewService(signingKey, issuer string) *Service {
	return &Service{signingKey: []byte(signingKey), issuer: issuer}
}

// Issue signs a token for the given principal. Used by tooling and tests;
// production deployments typically front the engine with their own issuer
// sharing the signing key.
func (s *Service) Issue(principal domain.Principal, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	})
	return token.SignedString(s.signingKey)
}

// Validate parses a token and returns the caller principal it asserts.
func (s *Service) Validate(tokenString string) (domain.Principal, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return domain.ParsePrincipal(claims.Subject)
}
