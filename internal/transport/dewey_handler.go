package transport

import (
	"encoding/json"
	"net/http"

	"buyfly/internal/domain"
	"buyfly/internal/middleware"
	"buyfly/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PrepareRequest is the payload for handing items to the external
// listing tool.
type PrepareRequest struct {
	Items []domain.ProductAnalysis `json:"items" validate:"required,min=1"`
}

// PrepareResponse acknowledges how many items were staged.
type PrepareResponse struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

// DeweyHandler serves the saved-item catalog and the external listing
// hand-off.
type DeweyHandler struct {
	dewey  repository.DeweyRepository
	logger *zap.Logger
}

func NewDeweyHandler(dewey repository.DeweyRepository, logger *zap.Logger) *DeweyHandler {
	return &DeweyHandler{dewey: dewey, logger: logger}
}

func (h *DeweyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/dewey", h.List)
	r.Post("/api/dewey/save", h.Save)
	r.Post("/api/vendoo/prepare", h.Prepare)
}

// List returns the whole catalog.
func (h *DeweyHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.dewey.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list dewey items", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}

// Save upserts one catalog item by id; an existing row is fully
// overwritten.
func (h *DeweyHandler) Save(w http.ResponseWriter, r *http.Request) {
	var item domain.ProductAnalysis
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.logger.Debug("Dewey save decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if item.ID == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "id is required")
		return
	}
	if len(item.Photos) > domain.MaxPhotos {
		middleware.RespondWithError(w, http.StatusBadRequest, "too many photos")
		return
	}

	if err := h.dewey.Upsert(r.Context(), &item); err != nil {
		h.logger.Error("Dewey save failed", zap.Error(err), zap.String("id", item.ID))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save item")
		return
	}

	h.logger.Info("Dewey item saved", zap.String("id", item.ID))
	middleware.RespondWithJSON(w, http.StatusOK, &item)
}

// Prepare stages items for the external listing tool.
func (h *DeweyHandler) Prepare(w http.ResponseWriter, r *http.Request) {
	var req PrepareRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Prepare validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.logger.Info("Items prepared for listing tool", zap.Int("count", len(req.Items)))
	middleware.RespondWithJSON(w, http.StatusOK, PrepareResponse{OK: true, Count: len(req.Items)})
}
