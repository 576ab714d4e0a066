package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/daxreyes/bushfire-beacon/internal/domain/model"
	"github.com/daxreyes/bushfire-beacon/internal/storage"
)

type fakeLookup struct {
	users map[uuid.UUID]model.User
}

func (f *fakeLookup) UserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return model.User{}, storage.ErrNotFound
	}
	return user, nil
}

func newTestValidator(t *testing.T, users ...model.User) (*CredentialValidator, *TokenCodec) {
	t.Helper()
	lookup := &fakeLookup{users: make(map[uuid.UUID]model.User)}
	for _, u := range users {
		lookup.users[u.ID] = u
	}
	codec := NewTokenCodec("test-secret")
	return NewCredentialValidator(codec, lookup, zerolog.Nop()), codec
}

func TestAuthenticateNoCredentials(t *testing.T) {
	validator, _ := newTestValidator(t)

	_, err := validator.Authenticate(context.Background(), "", "")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("error = %v, want ErrUnauthenticated", err)
	}
}

func TestAuthenticateBearerToken(t *testing.T) {
	user := model.User{ID: uuid.New(), IsActive: true}
	validator, codec := newTestValidator(t, user)

	token, err := codec.Issue(user.ID.String(), "", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	principal, err := validator.Authenticate(context.Background(), token, "")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if principal.ID != user.ID {
		t.Errorf("principal id = %v, want %v", principal.ID, user.ID)
	}
	if !principal.IsActive {
		t.Error("principal should be active")
	}
}

func TestAuthenticateSessionCookieFallback(t *testing.T) {
	user := model.User{ID: uuid.New(), IsActive: true}
	validator, codec := newTestValidator(t, user)

	cookie, err := codec.Issue(user.ID.String(), "", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	principal, err := validator.Authenticate(context.Background(), "", cookie)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if principal.ID != user.ID {
		t.Errorf("principal id = %v, want %v", principal.ID, user.ID)
	}
}

func TestAuthenticateBearerPriority(t *testing.T) {
	bearerUser := model.User{ID: uuid.New(), IsActive: true}
	cookieUser := model.User{ID: uuid.New(), IsActive: true}
	validator, codec := newTestValidator(t, bearerUser, cookieUser)

	bearer, err := codec.Issue(bearerUser.ID.String(), "", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	cookie, err := codec.Issue(cookieUser.ID.String(), "", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	principal, err := validator.Authenticate(context.Background(), bearer, cookie)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if principal.ID != bearerUser.ID {
		t.Errorf("bearer token should win, got principal %v", principal.ID)
	}
}

func TestAuthenticateFallsBackWhenBearerInvalid(t *testing.T) {
	user := model.User{ID: uuid.New(), IsActive: true}
	validator, codec := newTestValidator(t, user)

	cookie, err := codec.Issue(user.ID.String(), "", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	principal, err := validator.Authenticate(context.Background(), "garbage", cookie)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if principal.ID != user.ID {
		t.Errorf("principal id = %v, want %v", principal.ID, user.ID)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	user := model.User{ID: uuid.New(), IsActive: true}
	validator, codec := newTestValidator(t, user)

	token, err := codec.Issue(user.ID.String(), "", -time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = validator.Authenticate(context.Background(), token, "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateUnknownSubject(t *testing.T) {
	validator, codec := newTestValidator(t)

	token, err := codec.Issue(uuid.NewString(), "", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = validator.Authenticate(context.Background(), token, "")
	if !errors.Is(err, ErrPrincipalNotFound) {
		t.Errorf("error = %v, want ErrPrincipalNotFound", err)
	}
}

func TestRequireActive(t *testing.T) {
	if err := RequireActive(Principal{IsActive: true}); err != nil {
		t.Errorf("active principal rejected: %v", err)
	}
	if err := RequireActive(Principal{}); !errors.Is(err, ErrInactiveAccount) {
		t.Errorf("error = %v, want ErrInactiveAccount", err)
	}
}

func TestRequireSuperuser(t *testing.T) {
	if err := RequireSuperuser(Principal{IsActive: true, IsSuperuser: true}); err != nil {
		t.Errorf("superuser rejected: %v", err)
	}

	// An active account without the flag is still refused.
	if err := RequireSuperuser(Principal{IsActive: true}); !errors.Is(err, ErrInsufficientPrivilege) {
		t.Errorf("error = %v, want ErrInsufficientPrivilege", err)
	}
}
