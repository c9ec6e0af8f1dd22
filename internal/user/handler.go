package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/shop-api/internal/httputil"
	"github.com/redmonkez12/shop-api/internal/logging"
	"github.com/redmonkez12/shop-api/internal/record"
)

// Handler contains HTTP handlers for accounts
type Handler struct {
	service *Service
	limit   func(http.Handler) http.Handler
}

// NewHandler builds the account handlers. loginLimit wraps the login route; nil disables it.
func NewHandler(service *Service, loginLimit func(http.Handler) http.Handler) *Handler {
	if loginLimit == nil {
		loginLimit = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{service: service, limit: loginLimit}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Routes mounts accounts under /api/users
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", h.Find)
		r.Post("/", h.Create)
		r.With(h.limit).Post("/login", h.Login)
	})
}

// Find looks a user up by email
// @Summary      Find a user by email
// @Description  Returns a list with the matching user, or an empty list. Case-insensitive.
// @Tags         users
// @Produce      json
// @Param        email query string true "Email"
// @Success      200 {array} object
// @Router       /api/users [get]
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	u, err := h.service.FindByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		logger.Error("failed to find user", "error", err)
		httputil.RespondInternalError(w)
		return
	}

	result := []record.Fields{}
	if u != nil {
		public, err := u.Public()
		if err != nil {
			logger.Error("failed to encode user", "error", err)
			httputil.RespondInternalError(w)
			return
		}
		result = append(result, public)
	}

	httputil.RespondJSON(w, result, http.StatusOK)
}

// Create registers a user
// @Summary      Create a user
// @Description  Body carries email, password and any profile members. Emails are unique ignoring case.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body object true "email, password and profile"
// @Success      201 {object} object
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      409 {object} httputil.ErrorResponse "Email already exists"
// @Router       /api/users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	body, err := httputil.ReadBody(r)
	var profile User
	var creds LoginRequest
	if err == nil {
		err = json.Unmarshal(body, &profile)
	}
	if err == nil {
		err = json.Unmarshal(body, &creds)
	}
	if err != nil {
		logger.Warn("invalid user body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": profile.Email})

	created, err := h.service.Register(r.Context(), profile, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			logger.Warn("registration failed: email already exists")
			httputil.RespondErrorWithCode(w, "email already in use", httputil.CodeEmailAlreadyExists, http.StatusConflict)
		case errors.Is(err, ErrEmailRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeEmailRequired, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		default:
			logger.Error("registration failed: internal error", "error", err)
			httputil.RespondInternalError(w)
		}
		return
	}

	h.respondUser(w, logger, created, http.StatusCreated)
	logger.Info("user registered", "user_id", created.ID)
}

// Login checks credentials
// @Summary      User login
// @Description  Unknown email and wrong password give the same error.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} object
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      429 {object} httputil.ErrorResponse
// @Router       /api/users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	u, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err)
		httputil.RespondInternalError(w)
		return
	}

	h.respondUser(w, logger, u, http.StatusOK)
}

func (h *Handler) respondUser(w http.ResponseWriter, logger *logging.Logger, u *User, status int) {
	public, err := u.Public()
	if err != nil {
		logger.Error("failed to encode user", "error", err)
		httputil.RespondInternalError(w)
		return
	}
	httputil.RespondJSON(w, public, status)
}
