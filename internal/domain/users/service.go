// Package users implements account management on top of the generic
// repository: password hashing, verification and reset flows, and the
// lookups the credential validator depends on.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/daxreyes/bushfire-beacon/internal/auth"
	"github.com/daxreyes/bushfire-beacon/internal/config"
	"github.com/daxreyes/bushfire-beacon/internal/domain/model"
	"github.com/daxreyes/bushfire-beacon/internal/email"
	"github.com/daxreyes/bushfire-beacon/internal/storage"
)

var (
	ErrEmailTaken   = errors.New("email is already taken")
	ErrInvalidLogin = errors.New("incorrect email or password")
)

// SortableFields is the closed allow-list of user sort fields.
var SortableFields = map[string]string{
	"id":         "id",
	"email":      "email",
	"full_name":  "full_name",
	"created_at": "created_at",
}

// Service handles user account operations.
type Service struct {
	repo     *storage.Repository[model.User, model.UserPatch]
	store    storage.UserStore
	codec    *auth.TokenCodec
	emailSvc *email.Service
	authCfg  config.AuthConfig
	baseURL  string
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(
	store storage.UserStore,
	codec *auth.TokenCodec,
	emailSvc *email.Service,
	authCfg config.AuthConfig,
	baseURL string,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:     storage.NewRepository[model.User, model.UserPatch](store, "email", SortableFields),
		store:    store,
		codec:    codec,
		emailSvc: emailSvc,
		authCfg:  authCfg,
		baseURL:  baseURL,
		validate: validator.New(),
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

// UserByID implements auth.UserLookup.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, emailAddr string) (model.User, error) {
	return s.store.GetByEmail(ctx, emailAddr)
}

func (s *Service) List(ctx context.Context, opts storage.ListOptions) ([]model.User, error) {
	return s.repo.List(ctx, opts)
}

// CreateParams carries the creation payload. Validation tags are the
// creation-schema constraints.
type CreateParams struct {
	Email       string `validate:"required,email"`
	Password    string `validate:"required,min=8"`
	FullName    string `validate:"omitempty,max=200"`
	PhoneNumber string `validate:"omitempty,e164"`
	IsActive    bool
	IsVerified  bool
	IsSuperuser bool
}

// Create validates params, hashes the password, persists the user, and
// sends a verification email for unverified accounts. Email failures are
// logged, not fatal: the account exists either way.
func (s *Service) Create(ctx context.Context, params CreateParams) (model.User, error) {
	if err := s.validate.Struct(params); err != nil {
		return model.User{}, err
	}

	if _, err := s.store.GetByEmail(ctx, params.Email); err == nil {
		return model.User{}, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return model.User{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.repo.Create(ctx, model.User{
		Email:          params.Email,
		PhoneNumber:    params.PhoneNumber,
		FullName:       params.FullName,
		HashedPassword: hash,
		IsActive:       params.IsActive,
		IsVerified:     params.IsVerified,
		IsSuperuser:    params.IsSuperuser,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	if !user.IsVerified {
		if err := s.sendVerification(user); err != nil {
			s.logger.Error().Err(err).Str("email", user.Email).Msg("failed to send verification email")
		}
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("user created")
	return user, nil
}

// UpdateParams carries a partial update; nil fields are left untouched.
// A supplied password is re-hashed before it reaches storage.
type UpdateParams struct {
	Email       *string `validate:"omitempty,email"`
	Password    *string `validate:"omitempty,min=8"`
	FullName    *string `validate:"omitempty,max=200"`
	PhoneNumber *string `validate:"omitempty,e164"`
	IsActive    *bool
	IsVerified  *bool
	IsSuperuser *bool
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (model.User, error) {
	if err := s.validate.Struct(params); err != nil {
		return model.User{}, err
	}

	if params.Email != nil {
		existing, err := s.store.GetByEmail(ctx, *params.Email)
		if err == nil && existing.ID != id {
			return model.User{}, ErrEmailTaken
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return model.User{}, fmt.Errorf("check email: %w", err)
		}
	}

	patch := model.UserPatch{
		Email:       params.Email,
		PhoneNumber: params.PhoneNumber,
		FullName:    params.FullName,
		IsActive:    params.IsActive,
		IsVerified:  params.IsVerified,
		IsSuperuser: params.IsSuperuser,
	}
	if params.Password != nil {
		hash, err := auth.HashPassword(*params.Password)
		if err != nil {
			return model.User{}, err
		}
		patch.HashedPassword = &hash
	}

	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (model.User, error) {
	return s.repo.Delete(ctx, id)
}

// Authenticate checks an email/password pair. The same error covers an
// unknown email and a wrong password.
func (s *Service) Authenticate(ctx context.Context, emailAddr, password string) (model.User, error) {
	user, err := s.store.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.User{}, ErrInvalidLogin
		}
		return model.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.VerifyPassword(password, user.HashedPassword) {
		return model.User{}, ErrInvalidLogin
	}
	return user, nil
}

// VerifyAccount consumes an account-verification token and marks the user
// verified.
func (s *Service) VerifyAccount(ctx context.Context, token string) (model.User, error) {
	claims, err := s.codec.Decode(token, auth.AudienceAccountVerification)
	if err != nil {
		return model.User{}, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: bad subject", auth.ErrInvalidCredentials)
	}

	verified := true
	user, err := s.repo.Update(ctx, id, model.UserPatch{IsVerified: &verified})
	if err != nil {
		return model.User{}, err
	}

	if err := s.emailSvc.SendWelcome(user.Email, user.FullName); err != nil {
		s.logger.Error().Err(err).Str("email", user.Email).Msg("failed to send welcome email")
	}
	return user, nil
}

// RequestPasswordReset mails a reset link when the email belongs to a known
// user. Unknown emails are not an error, so the endpoint cannot be used to
// probe for accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.store.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info().Str("email", emailAddr).Msg("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token, err := s.codec.Issue(user.ID.String(), auth.AudiencePasswordReset, s.authCfg.ResetTokenExpiry)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/#/reset-password/%s", s.baseURL, token)
	if err := s.emailSvc.SendPasswordReset(user.Email, link); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token and replaces the user's password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.codec.Decode(token, auth.AudiencePasswordReset)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return fmt.Errorf("%w: bad subject", auth.ErrInvalidCredentials)
	}

	if len(newPassword) < 8 {
		return s.validate.Var(newPassword, "min=8")
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := s.repo.Update(ctx, id, model.UserPatch{HashedPassword: &hash}); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id.String()).Msg("password reset")
	return nil
}

func (s *Service) sendVerification(user model.User) error {
	token, err := s.codec.Issue(user.ID.String(), auth.AudienceAccountVerification, s.authCfg.VerifyTokenExpiry)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/#/confirm-registration/%s", s.baseURL, token)
	return s.emailSvc.SendVerification(user.Email, link)
}
