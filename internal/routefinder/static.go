package routefinder

import (
	"context"
	"fmt"
	"slices"

	"github.com/strax84mb/travel-advisor/internal/domain"
)

// StaticGraph is an in-memory Accessor and Lookup over a fixed snapshot of
// cities, airports and routes. It backs offline route queries and tests.
type StaticGraph struct {
	cities   map[int64]domain.City
	airports map[int64]domain.Airport
	byCity   map[int64][]int64
	outbound map[int64][]domain.Route
}

// NewStaticGraph indexes the given records. Every airport must belong to a
// known city and every route must connect known airports with a non-negative
// price.
func NewStaticGraph(cities []domain.City, airports []domain.Airport, routes []domain.Route) (*StaticGraph, error) {
	g := &StaticGraph{
		cities:   make(map[int64]domain.City, len(cities)),
		airports: make(map[int64]domain.Airport, len(airports)),
		byCity:   make(map[int64][]int64, len(cities)),
		outbound: make(map[int64][]domain.Route),
	}
	for _, c := range cities {
		c.Airports = nil
		g.cities[c.ID] = c
	}
	for _, a := range airports {
		if _, ok := g.cities[a.CityID]; !ok {
			return nil, fmt.Errorf("airport %d references unknown city %d", a.ID, a.CityID)
		}
		g.airports[a.ID] = a
		g.byCity[a.CityID] = append(g.byCity[a.CityID], a.ID)
	}
	for _, r := range routes {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, ok := g.airports[r.Start]; !ok {
			return nil, fmt.Errorf("route %d starts at unknown airport %d", r.ID, r.Start)
		}
		if _, ok := g.airports[r.Finish]; !ok {
			return nil, fmt.Errorf("route %d finishes at unknown airport %d", r.ID, r.Finish)
		}
		g.outbound[r.Start] = append(g.outbound[r.Start], r)
	}
	for id := range g.outbound {
		slices.SortFunc(g.outbound[id], func(a, b domain.Route) int {
			return compareInt64(a.ID, b.ID)
		})
	}
	return g, nil
}

// Outbound implements Accessor.
func (g *StaticGraph) Outbound(ctx context.Context, from []int64, excludeArrivals []int64) ([]domain.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	exclude := make(map[int64]struct{}, len(excludeArrivals))
	for _, id := range excludeArrivals {
		exclude[id] = struct{}{}
	}
	var result []domain.Route
	for _, start := range uniqueSorted(from) {
		for _, r := range g.outbound[start] {
			if _, skip := exclude[r.Finish]; skip {
				continue
			}
			result = append(result, r)
		}
	}
	return result, nil
}

// CoLocated implements Accessor. Unknown airports are returned as they are.
func (g *StaticGraph) CoLocated(ctx context.Context, airportIDs []int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var result []int64
	for _, id := range airportIDs {
		a, ok := g.airports[id]
		if !ok {
			result = append(result, id)
			continue
		}
		result = append(result, g.byCity[a.CityID]...)
	}
	return uniqueSorted(result), nil
}

// CityAirports returns the ids of the airports located in cityID.
func (g *StaticGraph) CityAirports(ctx context.Context, cityID int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return uniqueSorted(g.byCity[cityID]), nil
}

// Airport implements Lookup.
func (g *StaticGraph) Airport(_ context.Context, id int64) (domain.Airport, bool, error) {
	a, ok := g.airports[id]
	return a, ok, nil
}

// City implements Lookup. The returned city lists its airports ordered by id.
func (g *StaticGraph) City(_ context.Context, id int64) (domain.City, bool, error) {
	c, ok := g.cities[id]
	if !ok {
		return domain.City{}, false, nil
	}
	for _, airportID := range uniqueSorted(g.byCity[id]) {
		c.Airports = append(c.Airports, g.airports[airportID])
	}
	return c, true, nil
}

// Cities returns every city with its airports, ordered by id.
func (g *StaticGraph) Cities(ctx context.Context) ([]domain.City, error) {
	ids := make([]int64, 0, len(g.cities))
	for id := range g.cities {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	cities := make([]domain.City, 0, len(ids))
	for _, id := range ids {
		c, _, _ := g.City(ctx, id)
		cities = append(cities, c)
	}
	return cities, nil
}

// Routes returns every route ordered by id.
func (g *StaticGraph) Routes() []domain.Route {
	var routes []domain.Route
	for _, out := range g.outbound {
		routes = append(routes, out...)
	}
	slices.SortFunc(routes, func(a, b domain.Route) int {
		return compareInt64(a.ID, b.ID)
	})
	return routes
}

// CityByName returns the first city with the given name.
func (g *StaticGraph) CityByName(name string) (domain.City, bool) {
	var (
		found domain.City
		ok    bool
	)
	for _, c := range g.cities {
		if c.Name == name && (!ok || c.ID < found.ID) {
			found, ok = c, true
		}
	}
	return found, ok
}

func uniqueSorted(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
