package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/strax84mb/travel-advisor/internal/domain"
	"github.com/strax84mb/travel-advisor/internal/graph"
)

// ErrNotFound is returned by writes whose referenced city or airport does not exist.
var ErrNotFound = errors.New("record not found")

// Repository encapsulates graph persistence operations for cities, airports
// and the routes between them.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// EnsureSchema creates the uniqueness constraints and indexes the queries rely on.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaCypher {
		if _, err := r.client.ExecuteWrite(ctx, stmt, nil); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// CreateCity stores a city under the next city id.
func (r *Repository) CreateCity(ctx context.Context, name string) (domain.City, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.City{}, errors.New("city name is required")
	}

	res, err := r.client.ExecuteWrite(ctx, createCityCypher, map[string]any{
		"name": name,
	})
	if err != nil {
		return domain.City{}, fmt.Errorf("create city %q: %w", name, err)
	}
	record, ok := res.First()
	if !ok {
		return domain.City{}, fmt.Errorf("create city %q: no record returned", name)
	}
	return cityFromRecord(record), nil
}

// CreateAirport stores an airport located in cityID under the next airport id.
func (r *Repository) CreateAirport(ctx context.Context, cityID int64, name string) (domain.Airport, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Airport{}, errors.New("airport name is required")
	}

	res, err := r.client.ExecuteWrite(ctx, createAirportCypher, map[string]any{
		"cityId": cityID,
		"name":   name,
	})
	if err != nil {
		return domain.Airport{}, fmt.Errorf("create airport %q: %w", name, err)
	}
	record, ok := res.First()
	if !ok {
		return domain.Airport{}, fmt.Errorf("create airport %q in city %d: %w", name, cityID, ErrNotFound)
	}
	return airportFromRecord(record), nil
}

// CreateRoute stores a route between two existing airports under the next route id.
func (r *Repository) CreateRoute(ctx context.Context, route domain.Route) (domain.Route, error) {
	if err := route.Validate(); err != nil {
		return domain.Route{}, err
	}

	res, err := r.client.ExecuteWrite(ctx, createRouteCypher, map[string]any{
		"start":  route.Start,
		"finish": route.Finish,
		"price":  route.Price,
	})
	if err != nil {
		return domain.Route{}, fmt.Errorf("create route %d->%d: %w", route.Start, route.Finish, err)
	}
	record, ok := res.First()
	if !ok {
		return domain.Route{}, fmt.Errorf("create route %d->%d: %w", route.Start, route.Finish, ErrNotFound)
	}
	return routeFromRecord(record), nil
}

func cityFromRecord(record graph.Record) domain.City {
	city := domain.City{
		ID:   record.Int64("cityId"),
		Name: record.String("name"),
	}
	for _, a := range record.Records("airports") {
		city.Airports = append(city.Airports, domain.Airport{
			ID:     a.Int64("airportId"),
			CityID: city.ID,
			Name:   a.String("name"),
		})
	}
	return city
}

func airportFromRecord(record graph.Record) domain.Airport {
	return domain.Airport{
		ID:     record.Int64("airportId"),
		CityID: record.Int64("cityId"),
		Name:   record.String("name"),
	}
}

func routeFromRecord(record graph.Record) domain.Route {
	return domain.Route{
		ID:     record.Int64("routeId"),
		Start:  record.Int64("start"),
		Finish: record.Int64("finish"),
		Price:  record.Int64("price"),
	}
}

var schemaCypher = []string{
	`CREATE CONSTRAINT city_id IF NOT EXISTS FOR (c:City) REQUIRE c.cityId IS UNIQUE`,
	`CREATE CONSTRAINT airport_id IF NOT EXISTS FOR (a:Airport) REQUIRE a.airportId IS UNIQUE`,
	`CREATE CONSTRAINT sequence_name IF NOT EXISTS FOR (s:Sequence) REQUIRE s.name IS UNIQUE`,
	`CREATE INDEX city_name IF NOT EXISTS FOR (c:City) ON (c.name)`,
	`CREATE INDEX route_id IF NOT EXISTS FOR ()-[r:ROUTE]-() ON (r.routeId)`,
}

const createCityCypher = `
MERGE (s:Sequence {name: "city"})
SET s.value = coalesce(s.value, 0) + 1
WITH s.value AS id
CREATE (c:City {cityId: id, name: $name})
RETURN c.cityId AS cityId, c.name AS name, [] AS airports
`

const createAirportCypher = `
MATCH (c:City {cityId: $cityId})
MERGE (s:Sequence {name: "airport"})
SET s.value = coalesce(s.value, 0) + 1
WITH c, s.value AS id
CREATE (a:Airport {airportId: id, name: $name})-[:LOCATED_IN]->(c)
RETURN a.airportId AS airportId, c.cityId AS cityId, a.name AS name
`

const createRouteCypher = `
MATCH (s:Airport {airportId: $start})
MATCH (f:Airport {airportId: $finish})
MERGE (seq:Sequence {name: "route"})
SET seq.value = coalesce(seq.value, 0) + 1
WITH s, f, seq.value AS id
CREATE (s)-[r:ROUTE {routeId: id, price: $price}]->(f)
RETURN r.routeId AS routeId, s.airportId AS start, f.airportId AS finish, r.price AS price
`
