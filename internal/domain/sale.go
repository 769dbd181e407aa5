package domain

// SaleType categorizes a discovered nearby sale.
type SaleType string

const (
	SaleThrift SaleType = "thrift"
	SaleEstate SaleType = "estate"
	SaleGarage SaleType = "garage"
)

// NearbySale is a discovered sale location. DistanceMiles is derived
// from the caller's position at query time and is not stored.
type NearbySale struct {
	ID            string   `json:"id" db:"id"`
	Type          SaleType `json:"type" db:"type"`
	Name          string   `json:"name" db:"name"`
	Address       string   `json:"address" db:"address"`
	Phone         string   `json:"phone,omitempty" db:"phone"`
	Hours         string   `json:"hours,omitempty" db:"hours"`
	Lat           float64  `json:"lat" db:"lat"`
	Lng           float64  `json:"lng" db:"lng"`
	DistanceMiles float64  `json:"distance_miles" db:"-"`
}
