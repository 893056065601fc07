package domain

// StepKind tags an itinerary step.
type StepKind string

const (
	StepStart       StepKind = "START"
	StepFlight      StepKind = "FLIGHT"
	StepCityCommute StepKind = "CITY_COMMUTE"
)

// ItineraryStep is one decorated stop of the winning path. RouteID and Price
// are only set for StepFlight.
type ItineraryStep struct {
	Kind        StepKind
	AirportID   int64
	AirportName string
	CityID      int64
	CityName    string
	RouteID     int64
	Price       int64
}

// Itinerary is the cheapest connection found between two cities.
type Itinerary struct {
	OriginCityID      int64
	DestinationCityID int64
	TotalPrice        int64
	Steps             []ItineraryStep
}
