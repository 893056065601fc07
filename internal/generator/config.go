package generator

// Config drives the synthetic travel network generator.
type Config struct {
	NumCities          int
	MaxAirportsPerCity int
	NumRoutes          int
	MaxPrice           int64
	// ZeroPriceChance is the probability that a route is free.
	ZeroPriceChance float64
	Seed            uint64
}

// DefaultConfig returns settings that produce a network large enough to make
// the search do real work.
func DefaultConfig() Config {
	return Config{
		NumCities:          200,
		MaxAirportsPerCity: 3,
		NumRoutes:          5000,
		MaxPrice:           900,
		ZeroPriceChance:    0.01,
		Seed:               42,
	}
}
