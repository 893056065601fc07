package repository

import (
	"context"
	"fmt"

	"github.com/strax84mb/travel-advisor/internal/domain"
	"github.com/strax84mb/travel-advisor/internal/graph"
)

// Outbound returns every route departing one of the from airports whose
// arrival airport is not in excludeArrivals, ordered by route id.
func (r *Repository) Outbound(ctx context.Context, from []int64, excludeArrivals []int64) ([]domain.Route, error) {
	if len(from) == 0 {
		return nil, nil
	}
	if excludeArrivals == nil {
		excludeArrivals = []int64{}
	}

	res, err := r.client.ExecuteRead(ctx, outboundCypher, map[string]any{
		"from":    from,
		"exclude": excludeArrivals,
	})
	if err != nil {
		return nil, fmt.Errorf("outbound routes query: %w", err)
	}

	routes := make([]domain.Route, 0, len(res.Records))
	for _, record := range res.Records {
		routes = append(routes, routeFromRecord(record))
	}
	return routes, nil
}

// CoLocated returns the ids of every airport sharing a city with one of
// airportIDs, the given airports included.
func (r *Repository) CoLocated(ctx context.Context, airportIDs []int64) ([]int64, error) {
	if len(airportIDs) == 0 {
		return nil, nil
	}

	res, err := r.client.ExecuteRead(ctx, coLocatedCypher, map[string]any{
		"ids": airportIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("co-located airports query: %w", err)
	}
	return idsFromRecords(res.Records), nil
}

// CityAirports returns the ids of the airports located in cityID.
func (r *Repository) CityAirports(ctx context.Context, cityID int64) ([]int64, error) {
	res, err := r.client.ExecuteRead(ctx, cityAirportsCypher, map[string]any{
		"cityId": cityID,
	})
	if err != nil {
		return nil, fmt.Errorf("city airports query: %w", err)
	}
	return idsFromRecords(res.Records), nil
}

func idsFromRecords(records []graph.Record) []int64 {
	ids := make([]int64, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.Int64("airportId"))
	}
	return ids
}

const outboundCypher = `
MATCH (s:Airport)-[r:ROUTE]->(f:Airport)
WHERE s.airportId IN $from AND NOT f.airportId IN $exclude
RETURN r.routeId AS routeId, s.airportId AS start, f.airportId AS finish, r.price AS price
ORDER BY routeId
`

const coLocatedCypher = `
MATCH (a:Airport)-[:LOCATED_IN]->(c:City)
WHERE a.airportId IN $ids
MATCH (o:Airport)-[:LOCATED_IN]->(c)
RETURN DISTINCT o.airportId AS airportId
ORDER BY airportId
`

const cityAirportsCypher = `
MATCH (a:Airport)-[:LOCATED_IN]->(:City {cityId: $cityId})
RETURN a.airportId AS airportId
ORDER BY airportId
`
