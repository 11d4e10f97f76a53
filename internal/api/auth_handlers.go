package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/onnwee/newsai/internal/auth"
	"github.com/onnwee/newsai/internal/user"
	"github.com/onnwee/newsai/internal/validate"
)

// TokenIssuer issues and validates session tokens. *auth.JWTService implements it.
type TokenIssuer interface {
	GenerateAccessToken(userID int64, role string) (string, error)
	GenerateRefreshToken(userID int64) (string, error)
	ValidateRefreshToken(token string) (*auth.Claims, error)
}

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /api/token/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserSummary is the public view of an account returned on login.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TokenResponse carries a fresh token pair. User is set on login only.
type TokenResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         *UserSummary `json:"user,omitempty"`
}

// AuthHandlers serves registration, login and token refresh.
type AuthHandlers struct {
	accounts *user.Service
	users    user.Repository
	tokens   TokenIssuer
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(accounts *user.Service, users user.Repository, tokens TokenIssuer) *AuthHandlers {
	return &AuthHandlers{accounts: accounts, users: users, tokens: tokens}
}

// Register handles POST /api/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, err := h.accounts.Register(r.Context(), req.Email, req.Password, req.Name)
	switch {
	case err == nil:
		WriteJSON(w, r.Context(), http.StatusCreated, MessageResponse{Message: "User registered successfully"})
	case errors.Is(err, user.ErrEmailTaken):
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeUserExists, "User already exists")
	case errors.Is(err, user.ErrPasswordTooShort):
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "Password must be at least 6 characters")
	case errors.Is(err, user.ErrPasswordTooLong):
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "Password must be at most 72 bytes")
	case errors.Is(err, validate.ErrEmpty), errors.Is(err, validate.ErrInvalidEmail):
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "A valid email is required")
	case errors.Is(err, validate.ErrStringTooLong), errors.Is(err, validate.ErrInvalidCharacters):
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
	default:
		writeInternalError(w, r, err, "Failed to register user")
	}
}

// Login handles POST /api/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, user.ErrInvalidCredentials) {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Invalid credentials")
		return
	}
	if err != nil {
		writeInternalError(w, r, err, "Failed to authenticate")
		return
	}

	resp, err := h.issue(u)
	if err != nil {
		writeInternalError(w, r, err, "Failed to issue token")
		return
	}
	resp.User = &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}

	slog.InfoContext(r.Context(), "user logged in", slog.Int64("user_id", u.ID))
	WriteJSON(w, r.Context(), http.StatusOK, resp)
}

// Refresh handles POST /api/token/refresh. The role is re-read from the
// account so a role change takes effect on the next refresh.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	claims, err := h.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		msg := "Refresh token is invalid"
		if errors.Is(err, auth.ErrExpiredToken) {
			msg = "Refresh token has expired"
		}
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, msg)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Refresh token is invalid")
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if errors.Is(err, user.ErrNotFound) {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Account no longer exists")
		return
	}
	if err != nil {
		writeInternalError(w, r, err, "Failed to load account")
		return
	}

	resp, err := h.issue(u)
	if err != nil {
		writeInternalError(w, r, err, "Failed to issue token")
		return
	}
	WriteJSON(w, r.Context(), http.StatusOK, resp)
}

func (h *AuthHandlers) issue(u *user.User) (*TokenResponse, error) {
	access, err := h.tokens.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := h.tokens.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Token: access, RefreshToken: refresh}, nil
}
