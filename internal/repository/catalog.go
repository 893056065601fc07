package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/strax84mb/travel-advisor/internal/domain"
)

// ListRoutesOptions defines pagination for route listing.
type ListRoutesOptions struct {
	Offset int
	Limit  int
}

// ListCities returns every city with its airports, ordered by id.
func (r *Repository) ListCities(ctx context.Context) ([]domain.City, error) {
	res, err := r.client.ExecuteRead(ctx, fmt.Sprintf(cityCypherTemplate, ""), nil)
	if err != nil {
		return nil, fmt.Errorf("list cities query: %w", err)
	}

	cities := make([]domain.City, 0, len(res.Records))
	for _, record := range res.Records {
		cities = append(cities, cityFromRecord(record))
	}
	return cities, nil
}

// City returns the city with the given id and its airports.
func (r *Repository) City(ctx context.Context, id int64) (domain.City, bool, error) {
	res, err := r.client.ExecuteRead(ctx, fmt.Sprintf(cityCypherTemplate, "WHERE c.cityId = $cityId"), map[string]any{
		"cityId": id,
	})
	if err != nil {
		return domain.City{}, false, fmt.Errorf("get city %d: %w", id, err)
	}
	record, ok := res.First()
	if !ok {
		return domain.City{}, false, nil
	}
	return cityFromRecord(record), true, nil
}

// CityByName returns the lowest-id city with the given name.
func (r *Repository) CityByName(ctx context.Context, name string) (domain.City, bool, error) {
	name = strings.TrimSpace(name)
	res, err := r.client.ExecuteRead(ctx, fmt.Sprintf(cityCypherTemplate, "WHERE c.name = $name"), map[string]any{
		"name": name,
	})
	if err != nil {
		return domain.City{}, false, fmt.Errorf("get city %q: %w", name, err)
	}
	record, ok := res.First()
	if !ok {
		return domain.City{}, false, nil
	}
	return cityFromRecord(record), true, nil
}

// Airport returns the airport with the given id.
func (r *Repository) Airport(ctx context.Context, id int64) (domain.Airport, bool, error) {
	res, err := r.client.ExecuteRead(ctx, airportCypher, map[string]any{
		"airportId": id,
	})
	if err != nil {
		return domain.Airport{}, false, fmt.Errorf("get airport %d: %w", id, err)
	}
	record, ok := res.First()
	if !ok {
		return domain.Airport{}, false, nil
	}
	return airportFromRecord(record), true, nil
}

// Route returns the route with the given id.
func (r *Repository) Route(ctx context.Context, id int64) (domain.Route, bool, error) {
	res, err := r.client.ExecuteRead(ctx, routeCypher, map[string]any{
		"routeId": id,
	})
	if err != nil {
		return domain.Route{}, false, fmt.Errorf("get route %d: %w", id, err)
	}
	record, ok := res.First()
	if !ok {
		return domain.Route{}, false, nil
	}
	return routeFromRecord(record), true, nil
}

// ListRoutes returns a page of routes ordered by id along with the total count.
func (r *Repository) ListRoutes(ctx context.Context, opts ListRoutesOptions) (domain.RouteListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	params := map[string]any{
		"skip":  offset,
		"limit": limit,
	}

	res, err := r.client.ExecuteRead(ctx, listRoutesCypher, params)
	if err != nil {
		return domain.RouteListResult{}, fmt.Errorf("list routes query: %w", err)
	}

	routes := make([]domain.Route, 0, len(res.Records))
	for _, record := range res.Records {
		routes = append(routes, routeFromRecord(record))
	}

	countRes, err := r.client.ExecuteRead(ctx, countRoutesCypher, nil)
	if err != nil {
		return domain.RouteListResult{}, fmt.Errorf("count routes query: %w", err)
	}

	var total int64
	if record, ok := countRes.First(); ok {
		total = record.Int64("total")
	}

	return domain.RouteListResult{
		Items: routes,
		Total: total,
	}, nil
}

const cityCypherTemplate = `
MATCH (c:City)
%s
OPTIONAL MATCH (a:Airport)-[:LOCATED_IN]->(c)
WITH c, a
ORDER BY a.airportId
WITH c, collect(CASE WHEN a IS NULL THEN NULL ELSE {airportId: a.airportId, name: a.name} END) AS airports
RETURN c.cityId AS cityId, c.name AS name, airports
ORDER BY cityId
`

const airportCypher = `
MATCH (a:Airport {airportId: $airportId})-[:LOCATED_IN]->(c:City)
RETURN a.airportId AS airportId, c.cityId AS cityId, a.name AS name
`

const routeCypher = `
MATCH (s:Airport)-[r:ROUTE {routeId: $routeId}]->(f:Airport)
RETURN r.routeId AS routeId, s.airportId AS start, f.airportId AS finish, r.price AS price
`

const listRoutesCypher = `
MATCH (s:Airport)-[r:ROUTE]->(f:Airport)
RETURN r.routeId AS routeId, s.airportId AS start, f.airportId AS finish, r.price AS price
ORDER BY routeId
SKIP $skip LIMIT $limit
`

const countRoutesCypher = `
MATCH (:Airport)-[r:ROUTE]->(:Airport)
RETURN count(r) AS total
`
