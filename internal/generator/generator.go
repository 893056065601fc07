package generator

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/strax84mb/travel-advisor/internal/service"
)

// Generator produces synthetic cities, airports and routes in the import file
// format.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
}

// New returns a configured Generator instance. The same seed always yields the
// same dataset.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumCities <= 0 {
		cfg.NumCities = def.NumCities
	}
	if cfg.MaxAirportsPerCity <= 0 {
		cfg.MaxAirportsPerCity = def.MaxAirportsPerCity
	}
	if cfg.NumRoutes < 0 {
		cfg.NumRoutes = 0
	}
	if cfg.MaxPrice <= 0 {
		cfg.MaxPrice = def.MaxPrice
	}
	cfg.ZeroPriceChance = min(max(cfg.ZeroPriceChance, 0), 1)

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		nameFragments: defaultNameFragments(),
	}
}

// Generate synthesises the dataset. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (service.Dataset, error) {
	var data service.Dataset

	// Row numbers follow the file layout: row 1 is the header.
	for i := 0; i < g.cfg.NumCities; i++ {
		data.Cities = append(data.Cities, service.CityRecord{Row: i + 2, Name: g.cityName(i)})
	}

	for _, city := range data.Cities {
		if err := ctx.Err(); err != nil {
			return service.Dataset{}, err
		}
		count := 1 + g.rand.IntN(g.cfg.MaxAirportsPerCity)
		for j := 0; j < count; j++ {
			data.Airports = append(data.Airports, service.AirportRecord{
				Row:      len(data.Airports) + 2,
				CityName: city.Name,
				Name:     g.airportName(city.Name, j),
			})
		}
	}

	// A single airport cannot host a route.
	if len(data.Airports) < 2 {
		return data, nil
	}

	for i := 0; i < g.cfg.NumRoutes; i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return service.Dataset{}, err
			}
		}
		start := g.rand.Int64N(int64(len(data.Airports))) + 1
		finish := g.rand.Int64N(int64(len(data.Airports))-1) + 1
		if finish >= start {
			finish++
		}
		data.Routes = append(data.Routes, service.RouteRecord{
			Row:    i + 2,
			Start:  start,
			Finish: finish,
			Price:  g.randomPrice(),
		})
	}

	return data, nil
}

func (g *Generator) randomPrice() int64 {
	if g.rand.Float64() < g.cfg.ZeroPriceChance {
		return 0
	}
	return 1 + g.rand.Int64N(g.cfg.MaxPrice)
}

// cityName is unique per index; the fragment list wraps with a numeric suffix.
func (g *Generator) cityName(i int) string {
	cities := g.nameFragments.cities
	name := cities[i%len(cities)]
	if round := i / len(cities); round > 0 {
		return fmt.Sprintf("%s %d", name, round+1)
	}
	return name
}

func (g *Generator) airportName(city string, j int) string {
	suffixes := g.nameFragments.airportSuffix
	if j < len(suffixes) {
		return fmt.Sprintf("%s %s", city, suffixes[j])
	}
	return fmt.Sprintf("%s Terminal %d", city, j+1)
}

type nameFragments struct {
	cities        []string
	airportSuffix []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		cities: []string{
			"Belgrade", "Vienna", "Paris", "Lisbon", "Madrid", "Rome", "Berlin", "Oslo",
			"Athens", "Dublin", "Prague", "Warsaw", "Zagreb", "Sofia", "Helsinki", "Riga",
		},
		airportSuffix: []string{"International", "Regional", "Downtown", "North Field"},
	}
}
