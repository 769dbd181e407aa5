package transport

import (
	"errors"
	"net/http"

	"buyfly/internal/domain"
	"buyfly/internal/middleware"
	"buyfly/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MarkShippedRequest identifies the sale being fulfilled.
type MarkShippedRequest struct {
	ID       string `json:"id" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ebay poshmark mercari depop"`
}

// MarkShippedResponse is the literal wire shape the client expects,
// including the not-found case.
type MarkShippedResponse struct {
	OK      bool   `json:"ok"`
	Removed string `json:"removed,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ShippingHandler serves the fulfillment queue.
type ShippingHandler struct {
	shipping repository.ShippingRepository
	logger   *zap.Logger
}

func NewShippingHandler(shipping repository.ShippingRepository, logger *zap.Logger) *ShippingHandler {
	return &ShippingHandler{shipping: shipping, logger: logger}
}

func (h *ShippingHandler) RegisterRoutes(r chi.Router, apiKeyMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(apiKeyMiddleware)
		r.Get("/api/shipping", h.List)
		r.Post("/api/shipping/mark-shipped", h.MarkShipped)
	})
}

// List returns the active fulfillment set.
func (h *ShippingHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.shipping.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list shipping items", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list shipping items")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}

// MarkShipped removes a sale from the active set. Unknown ids come
// back as a 404 with ok=false rather than the error envelope.
func (h *ShippingHandler) MarkShipped(w http.ResponseWriter, r *http.Request) {
	var req MarkShippedRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Mark-shipped validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.shipping.Remove(r.Context(), req.ID, domain.Platform(req.Platform))
	if errors.Is(err, repository.ErrShippingItemNotFound) {
		middleware.RespondWithJSON(w, http.StatusNotFound, MarkShippedResponse{
			OK:    false,
			Error: "shipping item not found",
		})
		return
	}
	if err != nil {
		h.logger.Error("Mark-shipped failed", zap.Error(err), zap.String("id", req.ID))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to mark item shipped")
		return
	}

	h.logger.Info("Item marked shipped",
		zap.String("id", req.ID),
		zap.String("platform", req.Platform),
	)
	middleware.RespondWithJSON(w, http.StatusOK, MarkShippedResponse{OK: true, Removed: req.ID})
}
