package domain

import "fmt"

// City groups one or more airports that are reachable from each other by ground transfer.
type City struct {
	ID       int64
	Name     string
	Airports []Airport
}

// Airport belongs to exactly one city.
type Airport struct {
	ID     int64
	CityID int64
	Name   string
}

// Route is a directed, priced flight between two airports.
type Route struct {
	ID     int64
	Start  int64
	Finish int64
	Price  int64
}

// Validate checks the invariants the cheapest-route search relies on.
func (r Route) Validate() error {
	if r.Price < 0 {
		return fmt.Errorf("route %d has negative price %d", r.ID, r.Price)
	}
	if r.Start == r.Finish {
		return fmt.Errorf("route %d starts and finishes at airport %d", r.ID, r.Start)
	}
	return nil
}

// RouteListResult captures paginated route list results.
type RouteListResult struct {
	Items []Route
	Total int64
}
