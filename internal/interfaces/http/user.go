package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"minhasfinancas/internal/domain/user"
	"minhasfinancas/internal/shared/logging"
)

type UserService interface {
	Register(ctx context.Context, params user.CreateParams) (*user.User, error)
	Authenticate(ctx context.Context, email, password string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type BalanceService interface {
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
}

type TokenIssuer interface {
	Generate(userID int64, email string) (string, error)
	TTL() time.Duration
}

type UserHandler struct {
	users    UserService
	balances BalanceService
	tokens   TokenIssuer
	log      logging.Logger
}

func NewUserHandler(users UserService, balances BalanceService, tokens TokenIssuer, log logging.Logger) *UserHandler {
	return &UserHandler{users: users, balances: balances, tokens: tokens, log: log}
}

// Request/Response DTOs

type RegisterRequest struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type AuthenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
}

type AuthResponse struct {
	UserResponse
	Token string `json:"token"`
}

type BalanceResponse struct {
	Balance decimal.Decimal `json:"saldo"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// HandleRegister creates a user. POST /api/usuarios
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.users.Register(r.Context(), user.CreateParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.Info(r.Context(), "user registered", "user_id", u.ID)
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// HandleAuthenticate checks credentials and issues a token, both in the
// body and as the access_token cookie. POST /api/usuarios/autenticar
func (h *UserHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req AuthenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	token, err := h.tokens.Generate(u.ID, u.Email)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	setAuthCookie(w, r, token, h.tokens.TTL())
	writeJSON(w, http.StatusOK, AuthResponse{UserResponse: toUserResponse(u), Token: token})
}

// HandleLogout clears the auth cookie. POST /api/usuarios/logout
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	secure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandleBalance returns the caller's settled balance. GET /api/usuarios/{id}/saldo
func (h *UserHandler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	if id != caller {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if _, err := h.users.GetByID(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	balance, err := h.balances.Balance(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{Balance: balance})
}

func setAuthCookie(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	// Secure only when the request actually came over HTTPS
	secure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}
