package service

import (
	"context"
	"fmt"
	"time"

	"buyfly/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	confidenceWithBarcode    = 0.95
	confidenceWithoutBarcode = 0.70

	// Flat marketplace cut deducted from the comparable price when
	// estimating profit.
	marketplaceFeeRate = 0.15
)

// Submission is one scoring request: normalized images plus whatever
// the user keyed in.
type Submission struct {
	ImageCount    int
	Barcode       string
	PurchasePrice float64
	Color         string
	Size          string
	SKU           string
	Quantity      int
}

// Estimator produces a comparable-price estimate for a submission.
// The stock estimator is a deterministic placeholder; real pricing
// data would slot in behind this interface.
type Estimator interface {
	ComparablePrice(sub Submission) float64
}

// heuristicEstimator prices off the purchase cost and how much visual
// evidence arrived. Deterministic so that scoring is reproducible.
type heuristicEstimator struct{}

func (heuristicEstimator) ComparablePrice(sub Submission) float64 {
	price := 18.0 + sub.PurchasePrice*2.4 + float64(sub.ImageCount)*1.5
	if sub.Barcode != "" {
		// A barcode means an exact product match with better comps.
		price *= 1.2
	}
	return price
}

// ScoringService turns submissions into scored ProductAnalysis values.
type ScoringService struct {
	estimator Estimator
	logger    *zap.Logger
}

func NewScoringService(estimator Estimator, logger *zap.Logger) *ScoringService {
	if estimator == nil {
		estimator = heuristicEstimator{}
	}
	return &ScoringService{estimator: estimator, logger: logger}
}

// Analyze scores a submission. Estimated profit is clamped at zero and
// the recommendation/margin are pure functions of it.
func (s *ScoringService) Analyze(ctx context.Context, sub Submission) (*domain.ProductAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	quantity := sub.Quantity
	if quantity < 1 {
		quantity = 1
	}

	identified := "Unidentified item"
	confidence := confidenceWithoutBarcode
	if sub.Barcode != "" {
		identified = fmt.Sprintf("Product %s", sub.Barcode)
		confidence = confidenceWithBarcode
	}

	comparable := s.estimator.ComparablePrice(sub)
	profit := comparable - comparable*marketplaceFeeRate - sub.PurchasePrice*float64(quantity)
	if profit < 0 {
		profit = 0
	}

	analysis := &domain.ProductAnalysis{
		ID:                uuid.New().String(),
		Barcode:           sub.Barcode,
		IdentifiedProduct: identified,
		Confidence:        confidence,
		Recommendation:    domain.Recommend(profit),
		EstimatedProfit:   profit,
		ComparablePrice:   comparable,
		ProfitMargin:      domain.Margin(profit, comparable),
		Color:             sub.Color,
		Size:              sub.Size,
		SKU:               sub.SKU,
		Quantity:          quantity,
		PurchasePrice:     sub.PurchasePrice,
		CreatedAt:         time.Now().UTC(),
	}

	s.logger.Debug("submission scored",
		zap.String("analysis_id", analysis.ID),
		zap.String("recommendation", string(analysis.Recommendation)),
		zap.Float64("estimated_profit", analysis.EstimatedProfit),
		zap.Bool("barcode", sub.Barcode != ""),
	)
	return analysis, nil
}
