package server

import (
	"github.com/strax84mb/travel-advisor/internal/domain"
	"github.com/strax84mb/travel-advisor/internal/service"
)

type errorResponse struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type cheapestPathRequest struct {
	StartingCityID    int64 `json:"startingCityId" validate:"required,gt=0"`
	DestinationCityID int64 `json:"destinationCityId" validate:"required,gt=0,nefield=StartingCityID"`
}

type airportResponse struct {
	ID     int64  `json:"id"`
	CityID int64  `json:"cityId"`
	Name   string `json:"name"`
}

type cityResponse struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	Airports []airportResponse `json:"airports"`
}

type routeResponse struct {
	ID              int64 `json:"id"`
	StartAirportID  int64 `json:"startAirportId"`
	FinishAirportID int64 `json:"finishAirportId"`
	Price           int64 `json:"price"`
}

type paginationResponse struct {
	Offset     int   `json:"offset"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

type routesPageResponse struct {
	Items      []routeResponse    `json:"items"`
	Pagination paginationResponse `json:"pagination"`
}

type itineraryStepResponse struct {
	Kind        string `json:"kind"`
	AirportID   int64  `json:"airportId"`
	AirportName string `json:"airportName"`
	CityID      int64  `json:"cityId"`
	CityName    string `json:"cityName"`
	RouteID     int64  `json:"routeId,omitempty"`
	Price       *int64 `json:"price,omitempty"`
}

type itineraryResponse struct {
	StartingCityID    int64                   `json:"startingCityId"`
	DestinationCityID int64                   `json:"destinationCityId"`
	TotalPrice        int64                   `json:"totalPrice"`
	Steps             []itineraryStepResponse `json:"steps"`
}

func toAirportResponse(a domain.Airport) airportResponse {
	return airportResponse{ID: a.ID, CityID: a.CityID, Name: a.Name}
}

func toCityResponse(c domain.City) cityResponse {
	resp := cityResponse{
		ID:       c.ID,
		Name:     c.Name,
		Airports: make([]airportResponse, 0, len(c.Airports)),
	}
	for _, a := range c.Airports {
		resp.Airports = append(resp.Airports, toAirportResponse(a))
	}
	return resp
}

func toRouteResponse(r domain.Route) routeResponse {
	return routeResponse{
		ID:              r.ID,
		StartAirportID:  r.Start,
		FinishAirportID: r.Finish,
		Price:           r.Price,
	}
}

func toRoutesPageResponse(page service.RoutesPage) routesPageResponse {
	resp := routesPageResponse{
		Items: make([]routeResponse, 0, len(page.Items)),
		Pagination: paginationResponse{
			Offset:     page.Pagination.Offset,
			Limit:      page.Pagination.Limit,
			TotalItems: page.Pagination.TotalItems,
			TotalPages: page.Pagination.TotalPages,
		},
	}
	for _, r := range page.Items {
		resp.Items = append(resp.Items, toRouteResponse(r))
	}
	return resp
}

func toItineraryResponse(it domain.Itinerary) itineraryResponse {
	resp := itineraryResponse{
		StartingCityID:    it.OriginCityID,
		DestinationCityID: it.DestinationCityID,
		TotalPrice:        it.TotalPrice,
		Steps:             make([]itineraryStepResponse, 0, len(it.Steps)),
	}
	for _, s := range it.Steps {
		step := itineraryStepResponse{
			Kind:        string(s.Kind),
			AirportID:   s.AirportID,
			AirportName: s.AirportName,
			CityID:      s.CityID,
			CityName:    s.CityName,
			RouteID:     s.RouteID,
		}
		if s.Kind == domain.StepFlight {
			price := s.Price
			step.Price = &price
		}
		resp.Steps = append(resp.Steps, step)
	}
	return resp
}
