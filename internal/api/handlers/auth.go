package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/daxreyes/bushfire-beacon/internal/api/problem"
	"github.com/daxreyes/bushfire-beacon/internal/auth"
	"github.com/daxreyes/bushfire-beacon/internal/config"
	"github.com/daxreyes/bushfire-beacon/internal/domain/users"
)

// AuthHandler serves login and the account verification and password reset
// flows.
type AuthHandler struct {
	users   *users.Service
	codec   *auth.TokenCodec
	authCfg config.AuthConfig
	env     string
	secure  bool
}

func NewAuthHandler(usersSvc *users.Service, codec *auth.TokenCodec, authCfg config.AuthConfig, env string) *AuthHandler {
	return &AuthHandler{
		users:   usersSvc,
		codec:   codec,
		authCfg: authCfg,
		env:     env,
		secure:  env == "production",
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Login exchanges an email/password pair for a bearer token. The same token
// is also set as the session cookie so browser clients authenticate without
// holding the token in script-reachable storage.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(r, &req); err != nil {
			problem.Write(w, r, http.StatusBadRequest, "bad-request", "Malformed request body", err, h.env)
			return
		}
	} else {
		// OAuth2 password-grant clients post form fields instead.
		if err := r.ParseForm(); err != nil {
			problem.Write(w, r, http.StatusBadRequest, "bad-request", "Malformed request body", err, h.env)
			return
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	}
	if req.Email == "" || req.Password == "" {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Email and password are required", nil, h.env)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidLogin) {
			problem.Write(w, r, http.StatusUnauthorized, "invalid-login", "Incorrect email or password", nil, h.env)
			return
		}
		problem.FromError(w, r, err, h.env)
		return
	}
	if !user.IsActive {
		problem.FromError(w, r, auth.ErrInactiveAccount, h.env)
		return
	}

	token, err := h.codec.Issue(user.ID.String(), "", h.authCfg.AccessTokenExpiry)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.authCfg.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.authCfg.AccessTokenExpiry.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(h.authCfg.AccessTokenExpiry.Seconds()),
	})
}

// Logout clears the session cookie. Bearer tokens stay valid until expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.authCfg.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// RecoverPassword starts the password reset flow. It answers 202 whether or
// not the email belongs to a known account.
func (h *AuthHandler) RecoverPassword(w http.ResponseWriter, r *http.Request) {
	emailAddr := r.PathValue("email")
	if emailAddr == "" {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Email is required", nil, h.env)
		return
	}

	if err := h.users.RequestPasswordReset(r.Context(), emailAddr); err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "password recovery email sent"})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword consumes a reset token and replaces the password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Malformed request body", err, h.env)
		return
	}

	if err := h.users.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

type verifyAccountRequest struct {
	Token string `json:"token"`
}

// VerifyAccount consumes an account-verification token and returns the
// verified user.
func (h *AuthHandler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	var req verifyAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, "bad-request", "Malformed request body", err, h.env)
		return
	}

	user, err := h.users.VerifyAccount(r.Context(), req.Token)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
