package transport

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"buyfly/internal/middleware"
	"buyfly/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxSubmissionBytes bounds the whole multipart submission.
const maxSubmissionBytes = 32 << 20

// SourceHandler accepts capture submissions for scoring.
type SourceHandler struct {
	scoring   *service.ScoringService
	maxImages int
	logger    *zap.Logger
}

func NewSourceHandler(scoring *service.ScoringService, maxImages int, logger *zap.Logger) *SourceHandler {
	return &SourceHandler{scoring: scoring, maxImages: maxImages, logger: logger}
}

func (h *SourceHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/source", h.Submit)
}

// Submit handles a multipart scoring request: image0..imageN plus the
// optional barcode and item metadata fields.
func (h *SourceHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		h.logger.Debug("Submission parse failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	imageCount, err := h.countImages(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub := service.Submission{
		ImageCount:    imageCount,
		Barcode:       r.FormValue("barcode"),
		Color:         r.FormValue("color"),
		Size:          r.FormValue("size"),
		SKU:           r.FormValue("sku"),
		PurchasePrice: parseFloat(r.FormValue("purchasePrice")),
		Quantity:      parseInt(r.FormValue("quantity"), 1),
	}

	analysis, err := h.scoring.Analyze(r.Context(), sub)
	if err != nil {
		h.logger.Error("Scoring failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to analyze submission")
		return
	}

	h.logger.Info("Submission analyzed",
		zap.String("analysis_id", analysis.ID),
		zap.Int("images", imageCount),
		zap.String("recommendation", string(analysis.Recommendation)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, analysis)
}

// countImages validates the image0..imageN fields and drains them so
// the multipart reader can release temp files. At least one and at
// most maxImages are accepted.
func (h *SourceHandler) countImages(r *http.Request) (int, error) {
	count := 0
	for i := 0; ; i++ {
		files, ok := r.MultipartForm.File[fmt.Sprintf("image%d", i)]
		if !ok || len(files) == 0 {
			break
		}
		if i >= h.maxImages {
			return 0, fmt.Errorf("at most %d images per submission", h.maxImages)
		}

		f, err := files[0].Open()
		if err != nil {
			return 0, fmt.Errorf("image%d unreadable", i)
		}
		_, err = io.Copy(io.Discard, f)
		f.Close()
		if err != nil {
			return 0, fmt.Errorf("image%d unreadable", i)
		}
		count++
	}

	if count == 0 {
		return 0, fmt.Errorf("at least one image is required")
	}
	return count, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
