package domain

import "time"

// Platform identifies the marketplace a sale happened on.
type Platform string

const (
	PlatformEbay     Platform = "ebay"
	PlatformPoshmark Platform = "poshmark"
	PlatformMercari  Platform = "mercari"
	PlatformDepop    Platform = "depop"
)

// ShippingItem is a completed sale awaiting fulfillment. It leaves the
// active set once marked shipped.
type ShippingItem struct {
	ID           string    `json:"id" db:"id"`
	Platform     Platform  `json:"platform" db:"platform"`
	ItemName     string    `json:"item_name" db:"item_name"`
	SalePrice    float64   `json:"sale_price" db:"sale_price"`
	BuyerAddress string    `json:"buyer_address" db:"buyer_address"`
	ShipBy       time.Time `json:"ship_by" db:"ship_by"`
}
