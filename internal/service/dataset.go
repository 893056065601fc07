package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/strax84mb/travel-advisor/internal/apperr"
	"github.com/strax84mb/travel-advisor/internal/domain"
	"github.com/strax84mb/travel-advisor/internal/routefinder"
)

// Dataset file names inside a data directory.
const (
	CitiesFile   = "cities.csv"
	AirportsFile = "airports.csv"
	RoutesFile   = "routes.csv"
)

// LoadDataset parses the three import files found in dir.
func LoadDataset(dir string) (Dataset, error) {
	var data Dataset

	err := parseFile(filepath.Join(dir, CitiesFile), func(f *os.File) (err error) {
		data.Cities, err = ParseCities(f)
		return err
	})
	if err != nil {
		return Dataset{}, err
	}

	err = parseFile(filepath.Join(dir, AirportsFile), func(f *os.File) (err error) {
		data.Airports, err = ParseAirports(f)
		return err
	})
	if err != nil {
		return Dataset{}, err
	}

	err = parseFile(filepath.Join(dir, RoutesFile), func(f *os.File) (err error) {
		data.Routes, err = ParseRoutes(f)
		return err
	})
	if err != nil {
		return Dataset{}, err
	}
	return data, nil
}

func parseFile(path string, parse func(*os.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := parse(f); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

// StaticGraph builds an in-memory graph from the dataset. Ids are assigned in
// file order starting at 1, which matches what an import into an empty store
// produces for cities and airports.
func (d Dataset) StaticGraph() (*routefinder.StaticGraph, error) {
	cities := make([]domain.City, 0, len(d.Cities))
	cityIDs := make(map[string]int64, len(d.Cities))
	for _, rec := range d.Cities {
		if _, dup := cityIDs[rec.Name]; dup {
			continue
		}
		id := int64(len(cities) + 1)
		cityIDs[rec.Name] = id
		cities = append(cities, domain.City{ID: id, Name: rec.Name})
	}

	airports := make([]domain.Airport, 0, len(d.Airports))
	for _, rec := range d.Airports {
		cityID, ok := cityIDs[rec.CityName]
		if !ok {
			return nil, apperr.NotFound(apperr.CodeEntityNotFound, "row %d: city %q not found", rec.Row, rec.CityName)
		}
		airports = append(airports, domain.Airport{
			ID:     int64(len(airports) + 1),
			CityID: cityID,
			Name:   rec.Name,
		})
	}

	routes := make([]domain.Route, 0, len(d.Routes))
	for i, rec := range d.Routes {
		routes = append(routes, domain.Route{
			ID:     int64(i + 1),
			Start:  rec.Start,
			Finish: rec.Finish,
			Price:  rec.Price,
		})
	}

	g, err := routefinder.NewStaticGraph(cities, airports, routes)
	if err != nil {
		return nil, apperr.Wrap(err, "build graph")
	}
	return g, nil
}
