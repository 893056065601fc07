package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/strax84mb/travel-advisor/internal/apperr"
	"github.com/strax84mb/travel-advisor/internal/domain"
	"github.com/strax84mb/travel-advisor/internal/repository"
)

// ImportStore is the storage contract required by the Importer.
type ImportStore interface {
	CreateCity(ctx context.Context, name string) (domain.City, error)
	CityByName(ctx context.Context, name string) (domain.City, bool, error)
	CreateAirport(ctx context.Context, cityID int64, name string) (domain.Airport, error)
	CreateRoute(ctx context.Context, route domain.Route) (domain.Route, error)
}

// TaskError accumulates multiple errors produced during bulk import.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d errors:", len(e.Errors))
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// ImportResult counts the records written by an import.
type ImportResult struct {
	Cities   int
	Airports int
	Routes   int
}

// Importer writes parsed datasets to the store. Cities and airports are
// written in file order so ids follow the files; routes go through a bounded
// worker pool.
type Importer struct {
	store   ImportStore
	workers int
	logger  *slog.Logger
}

// NewImporter creates an Importer with the provided route concurrency.
func NewImporter(store ImportStore, workers int, logger *slog.Logger) *Importer {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Importer{
		store:   store,
		workers: workers,
		logger:  logger.With("component", "importer"),
	}
}

// Import writes cities, then airports, then routes. Rows that fail are
// collected into a *TaskError; a failing city or airport stage stops the
// import before later stages run.
func (im *Importer) Import(ctx context.Context, data Dataset) (ImportResult, error) {
	var result ImportResult

	cities, err := im.ImportCities(ctx, data.Cities)
	result.Cities = cities
	if err != nil {
		return result, err
	}

	airports, err := im.ImportAirports(ctx, data.Airports)
	result.Airports = airports
	if err != nil {
		return result, err
	}

	routes, err := im.ImportRoutes(ctx, data.Routes)
	result.Routes = routes
	return result, err
}

// ImportCities creates every city whose name is not stored yet.
func (im *Importer) ImportCities(ctx context.Context, records []CityRecord) (int, error) {
	var (
		created int
		taskErr TaskError
	)
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		_, exists, err := im.store.CityByName(ctx, rec.Name)
		if err != nil {
			return created, apperr.Internal(apperr.CodeDBRead, err, "row %d: look up city %q", rec.Row, rec.Name)
		}
		if exists {
			im.logger.Debug("city already stored", "row", rec.Row, "name", rec.Name)
			continue
		}
		if _, err := im.store.CreateCity(ctx, rec.Name); err != nil {
			importedRecords.WithLabelValues("city", "error").Inc()
			taskErr.append(apperr.Internal(apperr.CodeDBSave, err, "row %d: save city %q", rec.Row, rec.Name))
			continue
		}
		importedRecords.WithLabelValues("city", "ok").Inc()
		created++
	}
	im.logger.Info("cities imported", "created", created, "failed", len(taskErr.Errors))
	return created, taskErr.asError()
}

// ImportAirports creates airports in the city named by each record.
func (im *Importer) ImportAirports(ctx context.Context, records []AirportRecord) (int, error) {
	var (
		created int
		taskErr TaskError
	)
	cityIDs := make(map[string]int64)
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		cityID, ok := cityIDs[rec.CityName]
		if !ok {
			city, found, err := im.store.CityByName(ctx, rec.CityName)
			if err != nil {
				return created, apperr.Internal(apperr.CodeDBRead, err, "row %d: look up city %q", rec.Row, rec.CityName)
			}
			if !found {
				importedRecords.WithLabelValues("airport", "error").Inc()
				taskErr.append(apperr.NotFound(apperr.CodeEntityNotFound, "row %d: city %q not found", rec.Row, rec.CityName))
				continue
			}
			cityID = city.ID
			cityIDs[rec.CityName] = cityID
		}
		if _, err := im.store.CreateAirport(ctx, cityID, rec.Name); err != nil {
			importedRecords.WithLabelValues("airport", "error").Inc()
			taskErr.append(saveError(err, "row %d: save airport %q", rec.Row, rec.Name))
			continue
		}
		importedRecords.WithLabelValues("airport", "ok").Inc()
		created++
	}
	im.logger.Info("airports imported", "created", created, "failed", len(taskErr.Errors))
	return created, taskErr.asError()
}

// ImportRoutes creates routes concurrently.
func (im *Importer) ImportRoutes(ctx context.Context, records []RouteRecord) (int, error) {
	errs, err := im.run(ctx, len(records), func(ctx context.Context, idx int) error {
		rec := records[idx]
		_, err := im.store.CreateRoute(ctx, domain.Route{
			Start:  rec.Start,
			Finish: rec.Finish,
			Price:  rec.Price,
		})
		if err != nil {
			importedRecords.WithLabelValues("route", "error").Inc()
			return saveError(err, "row %d: save route %d->%d", rec.Row, rec.Start, rec.Finish)
		}
		importedRecords.WithLabelValues("route", "ok").Inc()
		return nil
	})
	if err != nil {
		return 0, err
	}

	var taskErr TaskError
	for _, e := range errs {
		taskErr.append(e)
	}
	created := len(records) - len(taskErr.Errors)
	im.logger.Info("routes imported", "created", created, "failed", len(taskErr.Errors))
	return created, taskErr.asError()
}

// run calls workerFn for every index on at most im.workers goroutines and
// returns the per-index errors in index order. Cancellation is returned as
// the second result.
func (im *Importer) run(ctx context.Context, total int, workerFn func(ctx context.Context, idx int) error) ([]error, error) {
	if total == 0 {
		return nil, nil
	}
	errs := make([]error, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)
	for i := range total {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			err := workerFn(gctx, i)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			errs[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return errs, nil
}

func saveError(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &apperr.Error{Kind: apperr.KindNotFound, Code: apperr.CodeEntityNotFound, Msg: fmt.Sprintf(format, args...), Err: err}
	}
	return apperr.Internal(apperr.CodeDBSave, err, format, args...)
}
