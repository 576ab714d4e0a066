// Package auth validates caller credentials and resolves them to an
// authenticated principal.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose-scoped audiences. Tokens minted for one flow cannot be replayed
// as session tokens or in another flow.
const (
	AudienceAccountVerification = "account:verification"
	AudiencePasswordReset       = "password:reset"
)

// ErrInvalidCredentials is the umbrella failure for a credential that was
// supplied but could not be validated. The named sub-kinds below all wrap it,
// so callers can match either the broad kind or the precise one.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMalformedToken     = fmt.Errorf("%w: malformed token", ErrInvalidCredentials)
	ErrExpiredToken       = fmt.Errorf("%w: token expired", ErrInvalidCredentials)
	ErrSignatureMismatch  = fmt.Errorf("%w: signature mismatch", ErrInvalidCredentials)
	ErrAudienceMismatch   = fmt.Errorf("%w: audience mismatch", ErrInvalidCredentials)
)

// Claims is the signed claim set carried by every token the service issues.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenCodec encodes and verifies HMAC-signed, time-bounded claims against a
// process-wide secret.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Issue signs a token for subject expiring after ttl. audience is optional
// and scopes the token to a single purpose.
func (c *TokenCodec) Issue(subject, audience string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("issue token: empty subject")
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies the signature and expiry of tokenString and returns its
// claims. When audience is non-empty the token must carry a matching aud
// claim. Failures are one of the ErrInvalidCredentials sub-kinds.
func (c *TokenCodec) Decode(tokenString, audience string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMalformedToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSignatureMismatch
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureMismatch
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformedToken
	}

	if audience != "" && !claimsHaveAudience(claims, audience) {
		return nil, ErrAudienceMismatch
	}
	return claims, nil
}

func claimsHaveAudience(claims *Claims, audience string) bool {
	for _, aud := range claims.Audience {
		if aud == audience {
			return true
		}
	}
	return false
}

// TokenFromHeader extracts the bearer token from an Authorization header
// value. Returns an empty string when the header carries no bearer token.
func TokenFromHeader(authHeader string) string {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
