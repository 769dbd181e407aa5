package domain

import (
	"time"
)

// MaxPhotos is the hard cap on photos attached to a single analysis.
const MaxPhotos = 25

// Recommendation classifies an analyzed item by expected profitability.
type Recommendation string

const (
	GoodDeal Recommendation = "GOOD_DEAL"
	BadDeal  Recommendation = "BAD_DEAL"
	Neutral  Recommendation = "NEUTRAL"
)

// Classification records the user's verdict on an analyzed item.
type Classification string

const (
	ClassBuy Classification = "buy"
	ClassFly Classification = "fly"
)

// ProductAnalysis is a scored candidate item for resale.
type ProductAnalysis struct {
	ID                string         `json:"id" db:"id"`
	ImageURL          string         `json:"image_url,omitempty" db:"image_url"`
	Photos            []string       `json:"photos,omitempty"`
	Barcode           string         `json:"barcode,omitempty" db:"barcode"`
	IdentifiedProduct string         `json:"identified_product" db:"identified_product"`
	Confidence        float64        `json:"confidence" db:"confidence"`
	Recommendation    Recommendation `json:"recommendation" db:"recommendation"`
	EstimatedProfit   float64        `json:"estimated_profit" db:"estimated_profit"`
	ComparablePrice   float64        `json:"comparable_price" db:"comparable_price"`
	ProfitMargin      float64        `json:"profit_margin" db:"profit_margin"`
	Brand             string         `json:"brand,omitempty" db:"brand"`
	Category          string         `json:"category,omitempty" db:"category"`
	Condition         string         `json:"condition,omitempty" db:"condition"`
	Keywords          []string       `json:"keywords,omitempty"`
	Color             string         `json:"color,omitempty" db:"color"`
	Size              string         `json:"size,omitempty" db:"size"`
	SKU               string         `json:"sku,omitempty" db:"sku"`
	Quantity          int            `json:"quantity" db:"quantity"`
	PurchasePrice     float64        `json:"purchase_price" db:"purchase_price"`
	Classification    Classification `json:"classification,omitempty" db:"classification"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
}

// Recommend maps an estimated profit to a recommendation tag.
// Thresholds are strict: above 15 is a good deal, above 5 is neutral,
// everything else is a bad deal. Exactly 15 lands on neutral and
// exactly 5 on bad.
func Recommend(estimatedProfit float64) Recommendation {
	switch {
	case estimatedProfit > 15:
		return GoodDeal
	case estimatedProfit > 5:
		return Neutral
	default:
		return BadDeal
	}
}

// Margin derives the profit margin ratio. Returns 0 when there is no
// comparable price to divide by.
func Margin(estimatedProfit, comparablePrice float64) float64 {
	if comparablePrice <= 0 {
		return 0
	}
	return estimatedProfit / comparablePrice
}

// HistoryEntry is one line in the bounded buy/fly decision log.
type HistoryEntry struct {
	ID              string         `json:"id" db:"id"`
	Label           string         `json:"label" db:"label"`
	Classification  Classification `json:"classification" db:"classification"`
	EstimatedProfit float64        `json:"estimated_profit" db:"estimated_profit"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
}
