package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/shop-api/internal/httputil"
	"github.com/redmonkez12/shop-api/internal/logging"
	"github.com/redmonkez12/shop-api/internal/record"
)

// Handler contains HTTP handlers for orders
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// OrderResponse wraps an order with a human-readable message
type OrderResponse struct {
	Message string `json:"message"`
	Order   *Order `json:"order"`
}

// StockErrorResponse is returned when at least one line exceeds the stock
type StockErrorResponse struct {
	Error     string     `json:"error"`
	Code      string     `json:"code"`
	Shortages []Shortage `json:"shortages"`
}

// Routes mounts orders under /api/orders
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Place)
		r.Put("/{id}", h.Update)
	})
}

// List returns every order
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Success      200 {array} Order
// @Router       /api/orders [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	orders, err := h.service.List(r.Context())
	if err != nil {
		logger.Error("failed to list orders", "error", err)
		httputil.RespondInternalError(w)
		return
	}

	httputil.RespondJSON(w, orders, http.StatusOK)
}

// Place creates an order and takes its stock from the catalog
// @Summary      Place an order
// @Description  Every line must fit the remaining stock, otherwise nothing is stored.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body PlaceRequest true "Order"
// @Success      201 {object} OrderResponse
// @Failure      400 {object} StockErrorResponse "Insufficient stock"
// @Router       /api/orders [post]
func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req PlaceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		logger.Warn("invalid order body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	placed, err := h.service.Place(r.Context(), req)
	if err != nil {
		var stockErr *StockError
		switch {
		case errors.As(err, &stockErr):
			logger.Warn("order rejected", "error", err.Error())
			httputil.RespondJSON(w, StockErrorResponse{
				Error:     "insufficient stock for one or more items",
				Code:      httputil.CodeInsufficientStock,
				Shortages: stockErr.Shortages,
			}, http.StatusBadRequest)
		case errors.Is(err, ErrNoItems):
			httputil.RespondErrorWithCode(w, "order has no items", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidQuantity):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidQuantity, http.StatusBadRequest)
		default:
			logger.Error("failed to place order", "error", err)
			httputil.RespondInternalError(w)
		}
		return
	}

	logger.Info("order placed", "order_id", placed.ID, "lines", len(placed.Items))
	httputil.RespondJSON(w, OrderResponse{Message: "order saved and stock updated", Order: placed}, http.StatusCreated)
}

// Update merges the request body over an order, e.g. to mark it delivered
// @Summary      Update an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path int true "Order ID"
// @Param        request body object true "Fields to overwrite"
// @Success      200 {object} OrderResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "order not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	var patch record.Fields
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		logger.Warn("invalid order patch", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httputil.RespondErrorWithCode(w, "order not found", httputil.CodeNotFound, http.StatusNotFound)
		case errors.Is(err, ErrInvalidOrder):
			logger.Warn("rejected order update", "order_id", id, "error", err.Error())
			httputil.RespondErrorWithCode(w, "invalid order fields", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		default:
			logger.Error("failed to update order", "order_id", id, "error", err)
			httputil.RespondInternalError(w)
		}
		return
	}

	logger.Info("order updated", "order_id", id)
	httputil.RespondJSON(w, OrderResponse{Message: "order updated", Order: updated}, http.StatusOK)
}
