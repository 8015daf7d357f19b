package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/example/streamflix/internal/accounts"
	"github.com/example/streamflix/internal/config"
	"github.com/example/streamflix/internal/httputil"
	"github.com/example/streamflix/internal/profiles"
)

type Handler struct {
	cfg      *config.Config
	accounts *accounts.Repository
	profiles *profiles.Repository
	tokens   Tokens
	mw       *Middleware
	limiter  *loginLimiter
}

func NewHandler(cfg *config.Config, accts *accounts.Repository, profs *profiles.Repository, tokens Tokens, mw *Middleware) *Handler {
	return &Handler{
		cfg:      cfg,
		accounts: accts,
		profiles: profs,
		tokens:   tokens,
		mw:       mw,
		// 10 attempts per minute per IP, small burst.
		limiter: newLoginLimiter(rate.Every(6*time.Second), 5),
	}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.With(h.mw.RequireAuth).Get("/me", h.me)
	return r
}

type credentialsResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Account   *accounts.Account `json:"account"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.RegistrationOpen {
		httputil.WriteError(w, http.StatusForbidden, httputil.CodeForbidden, "registration is closed")
		return
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = NormalizeEmail(req.Email)
	if len(req.Username) < 3 || req.Email == "" {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "username (min 3 chars) and email are required")
		return
	}
	if err := ValidatePassword(req.Password); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "password does not meet requirements")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to hash password")
		return
	}

	acct := &accounts.Account{Username: req.Username, Email: req.Email, PasswordHash: hash}
	if err := h.accounts.Create(r.Context(), acct); err != nil {
		if errors.Is(err, accounts.ErrTaken) {
			httputil.WriteError(w, http.StatusConflict, httputil.CodeConflict, "username or email already in use")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to create account")
		return
	}

	// Every account starts with one profile named after the owner.
	prof := &profiles.Profile{AccountID: acct.ID, Name: acct.Username}
	if err := h.profiles.Create(r.Context(), prof); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to create default profile")
		return
	}

	token, exp, err := h.tokens.Issue(acct.ID, acct.IsAdmin, time.Now().UTC())
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to issue token")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, credentialsResponse{Token: token, ExpiresAt: exp, Account: acct})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.allow(r) {
		httputil.WriteError(w, http.StatusTooManyRequests, httputil.CodeInvalid, "too many login attempts")
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid request body")
		return
	}

	acct, err := h.accounts.GetByEmail(r.Context(), NormalizeEmail(req.Email))
	if err != nil || !CheckPassword(acct.PasswordHash, req.Password) {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "invalid credentials")
		return
	}

	token, exp, err := h.tokens.Issue(acct.ID, acct.IsAdmin, time.Now().UTC())
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to issue token")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, credentialsResponse{Token: token, ExpiresAt: exp, Account: acct})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	ac := AccountFromContext(r.Context())
	if ac == nil {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "not authenticated")
		return
	}
	acct, err := h.accounts.GetByID(r.Context(), ac.AccountID)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, httputil.CodeNotFound, "account not found")
		return
	}
	profs, err := h.profiles.ListByAccount(r.Context(), ac.AccountID)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to list profiles")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"account":  acct,
		"profiles": profs,
	})
}
