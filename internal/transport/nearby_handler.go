package transport

import (
	"net/http"
	"strconv"

	"buyfly/internal/middleware"
	"buyfly/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// defaultRadiusMiles applies when the radius query parameter is absent.
const defaultRadiusMiles = 25.0

// NearbyHandler serves nearby sale discovery.
type NearbyHandler struct {
	nearby *service.NearbyService
	logger *zap.Logger
}

func NewNearbyHandler(nearby *service.NearbyService, logger *zap.Logger) *NearbyHandler {
	return &NearbyHandler{nearby: nearby, logger: logger}
}

func (h *NearbyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/whos-near", h.WhosNear)
}

// WhosNear returns sales within the radius of (lat, lng), sorted by
// ascending distance.
func (h *NearbyHandler) WhosNear(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "lat is required")
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "lng is required")
		return
	}

	radius := defaultRadiusMiles
	if raw := q.Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius < 0 {
			middleware.RespondWithError(w, http.StatusBadRequest, "radius must be a non-negative number")
			return
		}
	}

	sales, err := h.nearby.Nearby(r.Context(), lat, lng, radius)
	if err != nil {
		h.logger.Error("Nearby lookup failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to find nearby sales")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sales)
}
