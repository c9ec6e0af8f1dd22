package verification

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/shop-api/internal/httputil"
	"github.com/redmonkez12/shop-api/internal/logging"
)

// Handler contains HTTP handlers for the code flow
type Handler struct {
	service *Service
	limit   func(http.Handler) http.Handler
}

// NewHandler builds the handlers. sendLimit wraps the send route; nil disables it.
func NewHandler(service *Service, sendLimit func(http.Handler) http.Handler) *Handler {
	if sendLimit == nil {
		sendLimit = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{service: service, limit: sendLimit}
}

// SendRequest represents the send-email request body
type SendRequest struct {
	Email string `json:"email"`
}

// SendResponse reports whether the code was delivered
type SendResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// VerifyRequest represents the verify-code request body
type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyResponse carries the outcome and, on failure, one of no_pending_code, expired or mismatch
type VerifyResponse struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason,omitempty"`
}

func (h *Handler) Routes(r chi.Router) {
	r.With(h.limit).Post("/api/send-email", h.Send)
	r.Post("/api/verify-code", h.Verify)
}

// Send issues a verification code
// @Summary      Send a verification code
// @Description  Mails a six-digit code valid for a few minutes. A new code replaces the pending one.
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        request body SendRequest true "Recipient"
// @Success      200 {object} SendResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      429 {object} httputil.ErrorResponse
// @Failure      500 {object} SendResponse
// @Router       /api/send-email [post]
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SendRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		logger.Warn("invalid send-email request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	err := h.service.Issue(r.Context(), req.Email)
	switch {
	case err == nil:
		httputil.RespondJSON(w, SendResponse{Success: true}, http.StatusOK)
	case errors.Is(err, ErrEmailRequired):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeEmailRequired, http.StatusBadRequest)
	case errors.Is(err, ErrSendFailed):
		httputil.RespondJSON(w, SendResponse{Error: "failed to send email", Code: httputil.CodeSendFailed}, http.StatusInternalServerError)
	default:
		logger.Error("failed to issue verification code", "error", err)
		httputil.RespondJSON(w, SendResponse{Error: "internal server error", Code: httputil.CodeInternalError}, http.StatusInternalServerError)
	}
}

// Verify checks a code
// @Summary      Verify a code
// @Description  A matching code is consumed; it cannot be used twice.
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        request body VerifyRequest true "Email and code"
// @Success      200 {object} VerifyResponse
// @Failure      400 {object} VerifyResponse
// @Router       /api/verify-code [post]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		logger.Warn("invalid verify-code request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	err := h.service.Verify(r.Context(), req.Email, req.Code)
	if err == nil {
		httputil.RespondJSON(w, VerifyResponse{Verified: true}, http.StatusOK)
		return
	}

	if reason := Reason(err); reason != "" {
		logger.Info("verification failed", "reason", reason)
		httputil.RespondJSON(w, VerifyResponse{Reason: reason}, http.StatusBadRequest)
		return
	}

	logger.Error("failed to verify code", "error", err)
	httputil.RespondInternalError(w)
}
