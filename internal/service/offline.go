package service

import (
	"context"
	"log/slog"

	"github.com/strax84mb/travel-advisor/internal/domain"
	"github.com/strax84mb/travel-advisor/internal/repository"
	"github.com/strax84mb/travel-advisor/internal/routefinder"
)

// NewOfflineService serves an in-memory graph through the same TravelService
// used for the graph database.
func NewOfflineService(g *routefinder.StaticGraph, logger *slog.Logger, opts SearchOptions) *TravelService {
	return NewTravelService(staticRepository{g}, logger, opts)
}

type staticRepository struct {
	*routefinder.StaticGraph
}

func (r staticRepository) ListCities(ctx context.Context) ([]domain.City, error) {
	return r.Cities(ctx)
}

func (r staticRepository) Route(_ context.Context, id int64) (domain.Route, bool, error) {
	for _, route := range r.Routes() {
		if route.ID == id {
			return route, true, nil
		}
	}
	return domain.Route{}, false, nil
}

func (r staticRepository) ListRoutes(_ context.Context, opts repository.ListRoutesOptions) (domain.RouteListResult, error) {
	routes := r.Routes()
	total := int64(len(routes))
	start := min(opts.Offset, len(routes))
	end := min(start+opts.Limit, len(routes))
	return domain.RouteListResult{
		Items: routes[start:end],
		Total: total,
	}, nil
}
