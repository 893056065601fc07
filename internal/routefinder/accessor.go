// Package routefinder finds the cheapest sequence of flights between two sets
// of airports and turns the winning path into an itinerary.
//
// Flights are fetched lazily through an Accessor while a search tree is grown
// one level per round. Branches whose accumulated price already meets or
// exceeds the best complete path found so far are pruned, which is sound
// because route prices are never negative.
package routefinder

import (
	"context"

	"github.com/strax84mb/travel-advisor/internal/domain"
)

// Accessor supplies the edges of the flight graph on demand.
type Accessor interface {
	// Outbound returns every route departing one of the from airports whose
	// arrival airport is not in excludeArrivals.
	Outbound(ctx context.Context, from []int64, excludeArrivals []int64) ([]domain.Route, error)
	// CoLocated returns the ids of every airport sharing a city with one of the
	// given airports, the given airports included.
	CoLocated(ctx context.Context, airportIDs []int64) ([]int64, error)
}

// Lookup resolves airport and city records while building an itinerary. The
// boolean result is false when the record does not exist.
type Lookup interface {
	Airport(ctx context.Context, id int64) (domain.Airport, bool, error)
	City(ctx context.Context, id int64) (domain.City, bool, error)
}
