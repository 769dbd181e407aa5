package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"buyfly/internal/domain"
	"buyfly/internal/store"

	"go.uber.org/zap"
)

var (
	// ErrAnalysisFailed covers network or remote failures during
	// scoring. Local state is left untouched; the user may retry.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrNotFound maps the remote 404 on mark-shipped.
	ErrNotFound = errors.New("not found")
)

// maxBatchImages is the wire-level cap on images per submission.
const maxBatchImages = 10

// Metadata carries the user-entered fields attached to a submission.
type Metadata struct {
	PurchasePrice float64
	Color         string
	Size          string
	SKU           string
	Quantity      int
}

// SubmitRequest is one scoring submission. When PendingID is set the
// result reconciles against that snap-stack entry; a late result for
// an entry that no longer exists is silently discarded.
type SubmitRequest struct {
	PendingID string
	Images    [][]byte
	Barcode   string
	Meta      Metadata
}

// Gateway is the thin sync layer between the local store and the
// remote scoring API. Remote calls only touch local state on success.
type Gateway struct {
	baseURL string
	client  *http.Client
	store   *store.Store
	apiKey  string
	logger  *zap.Logger
}

func New(baseURL string, apiKey string, st *store.Store, logger *zap.Logger) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		store:   st,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// SubmitForAnalysis sends 1..10 normalized images plus the optional
// barcode and metadata for scoring, then routes the result: GOOD_DEAL
// into the pending purchase flow, anything else straight to Dewey.
// Every outcome is appended to the history log.
func (g *Gateway) SubmitForAnalysis(ctx context.Context, req SubmitRequest) (*domain.ProductAnalysis, error) {
	if len(req.Images) == 0 {
		return nil, fmt.Errorf("at least one image is required")
	}
	if len(req.Images) > maxBatchImages {
		return nil, fmt.Errorf("at most %d images per submission", maxBatchImages)
	}

	body, contentType, err := encodeSubmission(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/source", body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.logger.Warn("Scoring request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("Scoring request rejected", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrAnalysisFailed, resp.StatusCode)
	}

	var analysis domain.ProductAnalysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	if err := g.reconcile(ctx, req.PendingID, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// reconcile routes a scored analysis into the local store. A result
// for a pending entry that has since been discarded is dropped without
// error: ignoring late arrivals is the expected behavior.
func (g *Gateway) reconcile(ctx context.Context, pendingID string, analysis *domain.ProductAnalysis) error {
	if pendingID != "" {
		_, err := g.store.GetPending(ctx, pendingID)
		if errors.Is(err, store.ErrNotFound) {
			g.logger.Debug("Discarding late analysis result",
				zap.String("pending_id", pendingID),
				zap.String("analysis_id", analysis.ID),
			)
			return nil
		}
		if err != nil {
			return err
		}
	}

	classification := domain.ClassFly
	if analysis.Recommendation == domain.GoodDeal {
		classification = domain.ClassBuy
	}
	analysis.Classification = classification

	if classification == domain.ClassBuy {
		if err := g.store.PutPending(ctx, analysis); err != nil {
			return err
		}
	} else {
		if err := g.store.SaveDewey(ctx, analysis); err != nil {
			return err
		}
	}

	// Routing supersedes the originating snap-stack entry: a rejection
	// promotes it into dewey, a buy re-enters the queue under the scored
	// analysis id. Either way the old row must not linger.
	if pendingID != "" && (classification != domain.ClassBuy || pendingID != analysis.ID) {
		if err := g.store.DeletePending(ctx, pendingID); err != nil {
			return err
		}
	}

	return g.store.AppendHistory(ctx, domain.HistoryEntry{
		ID:              analysis.ID,
		Label:           analysis.IdentifiedProduct,
		Classification:  classification,
		EstimatedProfit: analysis.EstimatedProfit,
		CreatedAt:       time.Now().UTC(),
	})
}

func encodeSubmission(req SubmitRequest) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for i, img := range req.Images {
		part, err := mw.CreateFormFile(fmt.Sprintf("image%d", i), fmt.Sprintf("image%d.jpg", i))
		if err != nil {
			return nil, "", fmt.Errorf("encode submission: %w", err)
		}
		if _, err := part.Write(img); err != nil {
			return nil, "", fmt.Errorf("encode submission: %w", err)
		}
	}

	fields := map[string]string{
		"purchasePrice": strconv.FormatFloat(req.Meta.PurchasePrice, 'f', -1, 64),
		"color":         req.Meta.Color,
		"size":          req.Meta.Size,
		"sku":           req.Meta.SKU,
		"quantity":      strconv.Itoa(req.Meta.Quantity),
	}
	if req.Barcode != "" {
		fields["barcode"] = req.Barcode
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("encode submission: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("encode submission: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// SaveToDewey pushes an item to the remote catalog and mirrors it
// locally only once the remote accepted it.
func (g *Gateway) SaveToDewey(ctx context.Context, item *domain.ProductAnalysis) error {
	var saved domain.ProductAnalysis
	if err := g.postJSON(ctx, "/api/dewey/save", item, &saved); err != nil {
		return err
	}
	return g.store.SaveDewey(ctx, &saved)
}

// FetchDewey mirrors the remote catalog into the local store.
func (g *Gateway) FetchDewey(ctx context.Context) ([]*domain.ProductAnalysis, error) {
	var items []*domain.ProductAnalysis
	if err := g.getJSON(ctx, "/api/dewey", &items); err != nil {
		return nil, err
	}
	if err := g.store.BulkSaveDewey(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// FetchNearby queries sale discovery around a position.
func (g *Gateway) FetchNearby(ctx context.Context, lat, lng, radiusMiles float64) ([]domain.NearbySale, error) {
	path := fmt.Sprintf("/api/whos-near?lat=%s&lng=%s&radius=%s",
		url.QueryEscape(strconv.FormatFloat(lat, 'f', -1, 64)),
		url.QueryEscape(strconv.FormatFloat(lng, 'f', -1, 64)),
		url.QueryEscape(strconv.FormatFloat(radiusMiles, 'f', -1, 64)),
	)

	var sales []domain.NearbySale
	if err := g.getJSON(ctx, path, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// FetchShipping mirrors the remote active fulfillment set locally.
func (g *Gateway) FetchShipping(ctx context.Context) ([]domain.ShippingItem, error) {
	var items []domain.ShippingItem
	if err := g.getJSON(ctx, "/api/shipping?apiKey="+url.QueryEscape(g.apiKey), &items); err != nil {
		return nil, err
	}
	if err := g.store.ReplaceShipping(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

type markShippedResponse struct {
	OK      bool   `json:"ok"`
	Removed string `json:"removed"`
	Error   string `json:"error"`
}

// MarkShipped marks a sale fulfilled remotely and removes it from the
// local mirror on success. An unknown id is ErrNotFound.
func (g *Gateway) MarkShipped(ctx context.Context, id string, platform domain.Platform) error {
	payload := map[string]string{"id": id, "platform": string(platform)}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/api/shipping/mark-shipped?apiKey="+url.QueryEscape(g.apiKey), bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("mark shipped: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return g.store.RemoveShipped(ctx, id)
	case http.StatusNotFound:
		return fmt.Errorf("%w: shipping item %s", ErrNotFound, id)
	default:
		return fmt.Errorf("mark shipped: unexpected status %d", resp.StatusCode)
	}
}

// PrepareResult acknowledges an external listing hand-off.
type PrepareResult struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

// PrepareForListing stages items with the external listing tool.
func (g *Gateway) PrepareForListing(ctx context.Context, items []*domain.ProductAnalysis) (*PrepareResult, error) {
	payload := map[string]any{"items": items}
	var result PrepareResult
	if err := g.postJSON(ctx, "/api/vendoo/prepare", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *Gateway) getJSON(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (g *Gateway) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read and discard so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("POST %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
