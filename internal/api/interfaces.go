package api

import (
	"context"

	"github.com/neexbeast/travel-gateway/internal/travel"
)

// FlightSearcher runs the flight search pipeline.
type FlightSearcher interface {
	Search(ctx context.Context, req travel.FlightSearchRequest) ([]travel.SimplifiedFlight, error)
}

// HotelSearcher runs the hotel search pipeline and exposes its destination directory.
type HotelSearcher interface {
	Search(ctx context.Context, req travel.HotelSearchRequest) ([]travel.SimplifiedHotel, error)
	Destinations(ctx context.Context) ([]travel.DestinationEntry, error)
}

// SearchCache stores search results for a short TTL.
type SearchCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

type nopCache struct{}

func (nopCache) Get(_ context.Context, _ string, _ any) (bool, error) { return false, nil }
func (nopCache) Set(_ context.Context, _ string, _ any) error         { return nil }
