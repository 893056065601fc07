package routefinder

import (
	"context"
	"fmt"

	"github.com/strax84mb/travel-advisor/internal/apperr"
	"github.com/strax84mb/travel-advisor/internal/domain"
)

// ErrInconsistentData marks an airport or city referenced by a found path that
// the lookup does not know about. The graph and the airport store have drifted
// apart; it is never a normal "no route" outcome.
var ErrInconsistentData = apperr.New(apperr.KindInternal, apperr.CodeEntityNotFound, "path references unknown record")

// BuildItinerary turns the routes of a winning path into steps: a Start step at
// the origin airport, then a Flight step per route. A CityCommute step is
// inserted before a flight whose departure airport differs from the previous
// flight's arrival airport.
func BuildItinerary(ctx context.Context, lookup Lookup, routes []domain.Route) ([]domain.ItineraryStep, error) {
	if len(routes) == 0 {
		return nil, apperr.Internal(apperr.CodeInternal, nil, "itinerary needs at least one route")
	}

	b := itineraryBuilder{
		lookup:   lookup,
		airports: make(map[int64]domain.Airport),
		cities:   make(map[int64]domain.City),
	}

	steps := make([]domain.ItineraryStep, 0, 2*len(routes)+1)
	start, err := b.step(ctx, domain.StepStart, routes[0].Start)
	if err != nil {
		return nil, err
	}
	steps = append(steps, start)

	for i, route := range routes {
		if i > 0 && route.Start != routes[i-1].Finish {
			commute, err := b.step(ctx, domain.StepCityCommute, route.Start)
			if err != nil {
				return nil, err
			}
			steps = append(steps, commute)
		}
		flight, err := b.step(ctx, domain.StepFlight, route.Finish)
		if err != nil {
			return nil, err
		}
		flight.RouteID = route.ID
		flight.Price = route.Price
		steps = append(steps, flight)
	}
	return steps, nil
}

type itineraryBuilder struct {
	lookup   Lookup
	airports map[int64]domain.Airport
	cities   map[int64]domain.City
}

func (b *itineraryBuilder) step(ctx context.Context, kind domain.StepKind, airportID int64) (domain.ItineraryStep, error) {
	airport, err := b.airport(ctx, airportID)
	if err != nil {
		return domain.ItineraryStep{}, err
	}
	city, err := b.city(ctx, airport.CityID)
	if err != nil {
		return domain.ItineraryStep{}, err
	}
	return domain.ItineraryStep{
		Kind:        kind,
		AirportID:   airport.ID,
		AirportName: airport.Name,
		CityID:      city.ID,
		CityName:    city.Name,
	}, nil
}

func (b *itineraryBuilder) airport(ctx context.Context, id int64) (domain.Airport, error) {
	if a, ok := b.airports[id]; ok {
		return a, nil
	}
	a, found, err := b.lookup.Airport(ctx, id)
	if err != nil {
		return domain.Airport{}, apperr.Wrap(err, fmt.Sprintf("load airport %d", id))
	}
	if !found {
		return domain.Airport{}, fmt.Errorf("airport %d: %w", id, ErrInconsistentData)
	}
	b.airports[id] = a
	return a, nil
}

func (b *itineraryBuilder) city(ctx context.Context, id int64) (domain.City, error) {
	if c, ok := b.cities[id]; ok {
		return c, nil
	}
	c, found, err := b.lookup.City(ctx, id)
	if err != nil {
		return domain.City{}, apperr.Wrap(err, fmt.Sprintf("load city %d", id))
	}
	if !found {
		return domain.City{}, fmt.Errorf("city %d: %w", id, ErrInconsistentData)
	}
	b.cities[id] = c
	return c, nil
}
