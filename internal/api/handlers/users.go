package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/daxreyes/bushfire-beacon/internal/api/middleware"
	"github.com/daxreyes/bushfire-beacon/internal/api/problem"
	"github.com/daxreyes/bushfire-beacon/internal/domain/model"
	"github.com/daxreyes/bushfire-beacon/internal/domain/users"
)

// UsersHandler serves account management endpoints.
type UsersHandler struct {
	users            *users.Service
	openRegistration bool
	env              string
}

func NewUsersHandler(usersSvc *users.Service, openRegistration bool, env string) *UsersHandler {
	return &UsersHandler{users: usersSvc, openRegistration: openRegistration, env: env}
}

// List returns a page of users. Superuser only.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}

	page, err := h.users.List(r.Context(), opts)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}

	var last string
	if len(page) > 0 {
		last = userFieldValue(page[len(page)-1], sortField(opts.AfterField, "email"))
	}
	writeJSON(w, http.StatusOK, listResponse{
		Data:       page,
		NextCursor: nextCursor(opts, "email", last, len(page)),
	})
}

type createUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	IsActive    *bool  `json:"is_active"`
	IsVerified  bool   `json:"is_verified"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Create adds a user with any flag combination. Superuser only.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Malformed request body", err, h.env)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	user, err := h.users.Create(r.Context(), users.CreateParams{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		IsActive:    active,
		IsVerified:  req.IsVerified,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			problem.Write(w, r, http.StatusConflict, "email-taken", "A user with this email already exists", nil, h.env)
			return
		}
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Register is the self-service signup endpoint. New accounts are active but
// never privileged, whatever the payload claims.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.openRegistration {
		problem.Write(w, r, http.StatusForbidden, "registration-closed", "Open registration is disabled", nil, h.env)
		return
	}

	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Malformed request body", err, h.env)
		return
	}

	user, err := h.users.Create(r.Context(), users.CreateParams{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		IsActive:    true,
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			problem.Write(w, r, http.StatusConflict, "email-taken", "A user with this email already exists", nil, h.env)
			return
		}
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Me returns the authenticated user's own account.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r)
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "unauthenticated", "Authentication required", nil, h.env)
		return
	}

	user, err := h.users.Get(r.Context(), principal.ID)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateMeRequest struct {
	Password    *string `json:"password"`
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
}

// UpdateMe lets a user change their own profile and password. Email and the
// account flags stay superuser-managed.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r)
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "unauthenticated", "Authentication required", nil, h.env)
		return
	}

	var req updateMeRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Malformed request body", err, h.env)
		return
	}

	user, err := h.users.Update(r.Context(), principal.ID, users.UpdateParams{
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Get returns a user by id. Superuser only.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Invalid user id", nil, h.env)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	IsActive    *bool   `json:"is_active"`
	IsVerified  *bool   `json:"is_verified"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// Update merges the supplied fields into the stored user. Superuser only.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Invalid user id", nil, h.env)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Malformed request body", err, h.env)
		return
	}

	user, err := h.users.Update(r.Context(), id, users.UpdateParams{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		IsActive:    req.IsActive,
		IsVerified:  req.IsVerified,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			problem.Write(w, r, http.StatusConflict, "email-taken", "A user with this email already exists", nil, h.env)
			return
		}
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete removes a user and returns the deleted record. Superuser only.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Invalid user id", nil, h.env)
		return
	}

	user, err := h.users.Delete(r.Context(), id)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func sortField(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	return fallback
}

func userFieldValue(u model.User, field string) string {
	switch field {
	case "id":
		return u.ID.String()
	case "full_name":
		return u.FullName
	case "created_at":
		return u.CreatedAt.Format(time.RFC3339Nano)
	default:
		return u.Email
	}
}
