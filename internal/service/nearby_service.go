package service

import (
	"context"
	"fmt"
	"sort"

	"buyfly/internal/domain"
	"buyfly/internal/geo"
	"buyfly/internal/repository"
)

// NearbyService resolves sale locations around a position.
type NearbyService struct {
	sales repository.SalesRepository
}

func NewNearbyService(sales repository.SalesRepository) *NearbyService {
	return &NearbyService{sales: sales}
}

// Nearby returns sales within radiusMiles of (lat, lng), sorted by
// ascending distance.
func (s *NearbyService) Nearby(ctx context.Context, lat, lng, radiusMiles float64) ([]domain.NearbySale, error) {
	all, err := s.sales.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	results := []domain.NearbySale{}
	for _, sale := range all {
		sale.DistanceMiles = geo.DistanceMiles(lat, lng, sale.Lat, sale.Lng)
		if sale.DistanceMiles <= radiusMiles {
			results = append(results, sale)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceMiles < results[j].DistanceMiles
	})
	return results, nil
}
