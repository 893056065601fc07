package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/strax84mb/travel-advisor/internal/apperr"
	"github.com/strax84mb/travel-advisor/internal/domain"
	"github.com/strax84mb/travel-advisor/internal/repository"
	"github.com/strax84mb/travel-advisor/internal/routefinder"
)

var tracer = otel.Tracer("service")

// ErrNoRoute is returned when no sequence of flights connects two cities.
var ErrNoRoute = apperr.New(apperr.KindNotFound, apperr.CodeRouteNotFound, "no route between cities")

// TravelRepository is the storage contract required by the travel service.
type TravelRepository interface {
	routefinder.Accessor
	routefinder.Lookup
	CityAirports(ctx context.Context, cityID int64) ([]int64, error)
	ListCities(ctx context.Context) ([]domain.City, error)
	Route(ctx context.Context, id int64) (domain.Route, bool, error)
	ListRoutes(ctx context.Context, opts repository.ListRoutesOptions) (domain.RouteListResult, error)
}

// SearchOptions bounds a single cheapest-route search.
type SearchOptions struct {
	MaxRounds int
	Timeout   time.Duration
}

// TravelService answers catalog queries and cheapest-route requests.
type TravelService struct {
	repo   TravelRepository
	logger *slog.Logger
	opts   SearchOptions
	nowFn  func() time.Time
}

// PaginationMeta captures pagination metadata returned to API clients.
type PaginationMeta struct {
	Offset     int
	Limit      int
	TotalItems int64
	TotalPages int
}

// RoutesPage represents paginated routes with metadata.
type RoutesPage struct {
	Items      []domain.Route
	Pagination PaginationMeta
}

// ListRoutesParams defines pagination for listing routes.
type ListRoutesParams struct {
	Offset int
	Limit  int
}

// NewTravelService constructs a TravelService. A nil logger discards output.
func NewTravelService(repo TravelRepository, logger *slog.Logger, opts SearchOptions) *TravelService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.MaxRounds == 0 {
		opts.MaxRounds = routefinder.DefaultMaxRounds
	}
	return &TravelService{
		repo:   repo,
		logger: logger.With("component", "travel_service"),
		opts:   opts,
		nowFn:  time.Now,
	}
}

// ListCities returns every city with its airports.
func (s *TravelService) ListCities(ctx context.Context) ([]domain.City, error) {
	cities, err := s.repo.ListCities(ctx)
	if err != nil {
		return nil, dbRead(err, "list cities")
	}
	return cities, nil
}

// GetCity returns one city with its airports.
func (s *TravelService) GetCity(ctx context.Context, id int64) (domain.City, error) {
	city, found, err := s.repo.City(ctx, id)
	if err != nil {
		return domain.City{}, dbRead(err, "get city")
	}
	if !found {
		return domain.City{}, apperr.NotFound(apperr.CodeEntityNotFound, "city %d not found", id)
	}
	return city, nil
}

// GetAirport returns one airport.
func (s *TravelService) GetAirport(ctx context.Context, id int64) (domain.Airport, error) {
	airport, found, err := s.repo.Airport(ctx, id)
	if err != nil {
		return domain.Airport{}, dbRead(err, "get airport")
	}
	if !found {
		return domain.Airport{}, apperr.NotFound(apperr.CodeEntityNotFound, "airport %d not found", id)
	}
	return airport, nil
}

// GetRoute returns one route.
func (s *TravelService) GetRoute(ctx context.Context, id int64) (domain.Route, error) {
	route, found, err := s.repo.Route(ctx, id)
	if err != nil {
		return domain.Route{}, dbRead(err, "get route")
	}
	if !found {
		return domain.Route{}, apperr.NotFound(apperr.CodeEntityNotFound, "route %d not found", id)
	}
	return route, nil
}

// ListRoutes retrieves a page of routes.
func (s *TravelService) ListRoutes(ctx context.Context, params ListRoutesParams) (RoutesPage, error) {
	offset, limit := normalizePagination(params.Offset, params.Limit)

	result, err := s.repo.ListRoutes(ctx, repository.ListRoutesOptions{
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return RoutesPage{}, dbRead(err, "list routes")
	}

	return RoutesPage{
		Items:      result.Items,
		Pagination: buildPaginationMeta(offset, limit, result.Total),
	}, nil
}

// CheapestRoute finds the cheapest sequence of flights from any airport of the
// origin city to any airport of the destination city and returns it as an
// itinerary. ErrNoRoute is returned when the cities are not connected.
func (s *TravelService) CheapestRoute(ctx context.Context, originCityID, destinationCityID int64) (domain.Itinerary, error) {
	if originCityID == destinationCityID {
		return domain.Itinerary{}, apperr.BadRequest("starting and destination city must differ")
	}

	ctx, span := tracer.Start(ctx, "service.TravelService.CheapestRoute", trace.WithAttributes(
		attribute.Int64("origin_city_id", originCityID),
		attribute.Int64("destination_city_id", destinationCityID),
	))
	defer span.End()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	started := s.nowFn()
	itinerary, stats, err := s.cheapestRoute(ctx, originCityID, destinationCityID)
	elapsed := s.nowFn().Sub(started)
	searchDuration.Observe(elapsed.Seconds())

	logger := s.logger.With(
		"origin_city_id", originCityID,
		"destination_city_id", destinationCityID,
		"rounds", stats.Rounds,
		"expansions", stats.Expansions,
		"duration", elapsed,
	)

	switch {
	case err == nil:
		searchTotal.WithLabelValues(outcomeFound).Inc()
		searchRounds.Observe(float64(stats.Rounds))
		searchExpansions.Observe(float64(stats.Expansions))
		span.SetAttributes(attribute.Int64("price", itinerary.TotalPrice))
		logger.Info("cheapest route found", "price", itinerary.TotalPrice, "steps", len(itinerary.Steps))
		return itinerary, nil
	case errors.Is(err, ErrNoRoute):
		searchTotal.WithLabelValues(outcomeNoRoute).Inc()
		logger.Debug("no route between cities")
		return domain.Itinerary{}, err
	default:
		searchTotal.WithLabelValues(outcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "cheapest route failed")
		if apperr.KindOf(err) == apperr.KindInternal {
			logger.Error("cheapest route failed", "error", err)
		}
		return domain.Itinerary{}, err
	}
}

func (s *TravelService) cheapestRoute(ctx context.Context, originCityID, destinationCityID int64) (domain.Itinerary, routefinder.Stats, error) {
	if _, err := s.GetCity(ctx, originCityID); err != nil {
		return domain.Itinerary{}, routefinder.Stats{}, err
	}
	if _, err := s.GetCity(ctx, destinationCityID); err != nil {
		return domain.Itinerary{}, routefinder.Stats{}, err
	}

	origins, err := s.repo.CityAirports(ctx, originCityID)
	if err != nil {
		return domain.Itinerary{}, routefinder.Stats{}, dbRead(err, "origin airports")
	}
	destinations, err := s.repo.CityAirports(ctx, destinationCityID)
	if err != nil {
		return domain.Itinerary{}, routefinder.Stats{}, dbRead(err, "destination airports")
	}
	if len(origins) == 0 || len(destinations) == 0 {
		return domain.Itinerary{}, routefinder.Stats{}, noRoute(originCityID, destinationCityID)
	}

	search, root := routefinder.NewSearch(origins[0], destinations, s.repo, routefinder.WithMaxRounds(s.opts.MaxRounds))
	roots := []*routefinder.Node{root}
	for _, id := range origins[1:] {
		roots = append(roots, search.Root(id))
	}

	res, err := search.Run(ctx, roots...)
	if err != nil {
		return domain.Itinerary{}, res.Stats, searchFailed(err)
	}
	if !res.Found {
		return domain.Itinerary{}, res.Stats, noRoute(originCityID, destinationCityID)
	}

	steps, err := routefinder.BuildItinerary(ctx, s.repo, res.Routes)
	if err != nil {
		return domain.Itinerary{}, res.Stats, apperr.Wrap(err, "build itinerary")
	}

	return domain.Itinerary{
		OriginCityID:      originCityID,
		DestinationCityID: destinationCityID,
		TotalPrice:        res.Price,
		Steps:             steps,
	}, res.Stats, nil
}

func noRoute(originCityID, destinationCityID int64) error {
	return fmt.Errorf("city %d to city %d: %w", originCityID, destinationCityID, ErrNoRoute)
}

func searchFailed(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Internal(apperr.CodeSearchLimit, err, "search timed out")
	}
	return dbRead(err, "search")
}

// dbRead keeps the kind of an *apperr.Error and classifies anything else as a
// failed storage read.
func dbRead(err error, msg string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return apperr.Wrap(err, msg)
	}
	return apperr.Internal(apperr.CodeDBRead, err, "%s", msg)
}

func normalizePagination(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return offset, limit
}

func buildPaginationMeta(offset, limit int, total int64) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
		if total > 0 && totalPages == 0 {
			totalPages = 1
		}
	}
	return PaginationMeta{
		Offset:     offset,
		Limit:      limit,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
