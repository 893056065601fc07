package generator

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/strax84mb/travel-advisor/internal/service"
)

// WriteDataset writes cities.csv, airports.csv and routes.csv under dir in the
// layout LoadDataset reads back.
func WriteDataset(data service.Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	cities := [][]string{{"name"}}
	for _, c := range data.Cities {
		cities = append(cities, []string{c.Name})
	}
	if err := writeCSV(filepath.Join(dir, service.CitiesFile), cities); err != nil {
		return err
	}

	airports := [][]string{{"city_name", "airport_name"}}
	for _, a := range data.Airports {
		airports = append(airports, []string{a.CityName, a.Name})
	}
	if err := writeCSV(filepath.Join(dir, service.AirportsFile), airports); err != nil {
		return err
	}

	routes := [][]string{{"start_airport_id", "finish_airport_id", "price"}}
	for _, r := range data.Routes {
		routes = append(routes, []string{
			strconv.FormatInt(r.Start, 10),
			strconv.FormatInt(r.Finish, 10),
			strconv.FormatInt(r.Price, 10),
		})
	}
	return writeCSV(filepath.Join(dir, service.RoutesFile), routes)
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv for %s: %w", path, err)
	}
	return file.Close()
}
