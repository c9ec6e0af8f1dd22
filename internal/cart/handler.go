package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/shop-api/internal/httputil"
	"github.com/redmonkez12/shop-api/internal/logging"
)

// Handler contains HTTP handlers for the cart
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Routes mounts the cart under /api/cart
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Delete("/", h.Clear)
		r.Delete("/{id}/{size}", h.Remove)
	})
}

// List returns the cart lines
// @Summary      List cart lines
// @Tags         cart
// @Produce      json
// @Success      200 {array} Item
// @Router       /api/cart [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	items, err := h.repo.List(r.Context())
	if err != nil {
		logger.Error("failed to list cart", "error", err)
		httputil.RespondInternalError(w)
		return
	}

	httputil.RespondJSON(w, items, http.StatusOK)
}

// Add puts an item in the cart
// @Summary      Add to cart
// @Description  Adding a (id, size) pair already in the cart increases its quantity.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body Item true "Cart line"
// @Success      201 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Router       /api/cart [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var item Item
	if err := httputil.DecodeJSON(r, &item); err != nil {
		logger.Warn("invalid cart body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.repo.Add(r.Context(), item); err != nil {
		logger.Error("failed to add to cart", "error", err)
		httputil.RespondInternalError(w)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Message: "added to cart"}, http.StatusCreated)
}

// Remove drops a (id, size) line
// @Summary      Remove a cart line
// @Tags         cart
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        size path string true "Size"
// @Success      200 {object} MessageResponse
// @Router       /api/cart/{id}/{size} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id, size := chi.URLParam(r, "id"), chi.URLParam(r, "size")

	if err := h.repo.Remove(r.Context(), id, size); err != nil {
		logger.Error("failed to remove cart line", "product_id", id, "size", size, "error", err)
		httputil.RespondInternalError(w)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Message: "removed from cart"}, http.StatusOK)
}

// Clear empties the cart
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} MessageResponse
// @Router       /api/cart [delete]
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if err := h.repo.Clear(r.Context()); err != nil {
		logger.Error("failed to clear cart", "error", err)
		httputil.RespondInternalError(w)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Message: "cart cleared"}, http.StatusOK)
}
