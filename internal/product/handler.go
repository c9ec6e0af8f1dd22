package product

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/shop-api/internal/httputil"
	"github.com/redmonkez12/shop-api/internal/logging"
	"github.com/redmonkez12/shop-api/internal/record"
)

// Handler contains HTTP handlers for the catalog
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// MessageResponse is returned by mutations that have nothing else to report
type MessageResponse struct {
	Message string `json:"message"`
}

// Routes mounts the catalog under /api/products
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns the whole catalog
// @Summary      List products
// @Tags         products
// @Produce      json
// @Success      200 {array} Product
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /api/products [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	products, err := h.repo.List(r.Context())
	if err != nil {
		logger.Error("failed to list products", "error", err)
		httputil.RespondInternalError(w)
		return
	}

	httputil.RespondJSON(w, products, http.StatusOK)
}

// Get returns one product
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} Product
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.respondRepoError(w, logger, err, id)
		return
	}

	httputil.RespondJSON(w, p, http.StatusOK)
}

// Create adds a product to the catalog
// @Summary      Create a product
// @Description  The server assigns id and createdAt. Sizes default to one empty size with no stock.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body Product true "Product"
// @Success      201 {object} Product
// @Failure      400 {object} httputil.ErrorResponse
// @Router       /api/products [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var p Product
	if err := httputil.DecodeJSON(r, &p); err != nil {
		logger.Warn("invalid product body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.repo.Create(r.Context(), p)
	if err != nil {
		logger.Error("failed to create product", "error", err)
		httputil.RespondInternalError(w)
		return
	}

	body, err := record.ToFields(created)
	if err == nil {
		err = body.Set("message", "product added")
	}
	if err != nil {
		logger.Error("failed to encode product", "error", err)
		httputil.RespondInternalError(w)
		return
	}

	logger.Info("product created", "product_id", created.ID)
	httputil.RespondJSON(w, body, http.StatusCreated)
}

// Update merges the request body over a product
// @Summary      Update a product
// @Description  Shallow merge of the body over the stored product. The id cannot be changed.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body object true "Fields to overwrite"
// @Success      200 {object} Product
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var patch record.Fields
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		logger.Warn("invalid product patch", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.repo.Update(r.Context(), id, patch)
	if err != nil {
		h.respondRepoError(w, logger, err, id)
		return
	}

	logger.Info("product updated", "product_id", id)
	httputil.RespondJSON(w, updated, http.StatusOK)
}

// Delete removes a product
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.respondRepoError(w, logger, err, id)
		return
	}

	logger.Info("product deleted", "product_id", id)
	httputil.RespondJSON(w, MessageResponse{Message: "product deleted"}, http.StatusOK)
}

func (h *Handler) respondRepoError(w http.ResponseWriter, logger *logging.Logger, err error, id string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, "product not found", httputil.CodeNotFound, http.StatusNotFound)
	case errors.Is(err, ErrInvalidProduct):
		logger.Warn("rejected product update", "product_id", id, "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid product fields", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
	default:
		logger.Error("product storage failure", "product_id", id, "error", err)
		httputil.RespondInternalError(w)
	}
}
