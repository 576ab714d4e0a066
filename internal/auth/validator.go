package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/daxreyes/bushfire-beacon/internal/domain/model"
	"github.com/daxreyes/bushfire-beacon/internal/storage"
)

var (
	// ErrUnauthenticated means no credential was supplied at all.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrPrincipalNotFound means a valid claim referenced a missing user.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrInactiveAccount means the principal resolved but is deactivated.
	ErrInactiveAccount = errors.New("inactive account")
	// ErrInsufficientPrivilege means the operation requires superuser status.
	ErrInsufficientPrivilege = errors.New("insufficient privilege")
)

// Principal is the authenticated identity resolved from a validated
// credential. Request handlers never construct one directly.
type Principal struct {
	ID          uuid.UUID
	IsActive    bool
	IsSuperuser bool
}

// UserLookup resolves a claim subject to a user record.
type UserLookup interface {
	UserByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

// CredentialValidator turns a bearer token and/or a session cookie into an
// authenticated Principal.
type CredentialValidator struct {
	codec  *TokenCodec
	users  UserLookup
	logger zerolog.Logger
}

func NewCredentialValidator(codec *TokenCodec, users UserLookup, logger zerolog.Logger) *CredentialValidator {
	return &CredentialValidator{
		codec:  codec,
		users:  users,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// Authenticate validates bearerToken and/or sessionCookie and resolves the
// claim subject to a Principal. The bearer token takes priority; the cookie
// is a fallback consulted only when the bearer token is absent or fails to
// decode.
func (v *CredentialValidator) Authenticate(ctx context.Context, bearerToken, sessionCookie string) (Principal, error) {
	if bearerToken == "" && sessionCookie == "" {
		return Principal{}, ErrUnauthenticated
	}

	var claims *Claims
	var decodeErr error
	if bearerToken != "" {
		claims, decodeErr = v.codec.Decode(bearerToken, "")
		if decodeErr != nil {
			v.logger.Debug().Err(decodeErr).Msg("bearer token rejected")
		}
	}
	if claims == nil && sessionCookie != "" {
		claims, decodeErr = v.codec.Decode(sessionCookie, "")
		if decodeErr != nil {
			v.logger.Debug().Err(decodeErr).Msg("session cookie rejected")
		}
	}
	if claims == nil {
		if decodeErr != nil {
			return Principal{}, decodeErr
		}
		return Principal{}, ErrInvalidCredentials
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: bad subject", ErrInvalidCredentials)
	}

	user, err := v.users.UserByID(ctx, subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Principal{}, ErrPrincipalNotFound
		}
		return Principal{}, fmt.Errorf("resolve principal: %w", err)
	}

	return Principal{
		ID:          user.ID,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
	}, nil
}

// RequireActive rejects deactivated principals.
func RequireActive(p Principal) error {
	if !p.IsActive {
		return ErrInactiveAccount
	}
	return nil
}

// RequireSuperuser rejects principals without superuser status. Being active
// is not sufficient; this is a privilege check, not a status check.
func RequireSuperuser(p Principal) error {
	if !p.IsSuperuser {
		return ErrInsufficientPrivilege
	}
	return nil
}
