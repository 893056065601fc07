package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/strax84mb/travel-advisor/internal/apperr"
	"github.com/strax84mb/travel-advisor/internal/service"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger  *slog.Logger
	service *service.TravelService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *service.TravelService) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
	}
}

func (h *APIHandlers) listCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.ListCities(r.Context())
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	resp := make([]cityResponse, 0, len(cities))
	for _, c := range cities {
		resp = append(resp, toCityResponse(c))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) getCity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	city, err := h.service.GetCity(r.Context(), id)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCityResponse(city))
}

func (h *APIHandlers) getAirport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	airport, err := h.service.GetAirport(r.Context(), id)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAirportResponse(airport))
}

func (h *APIHandlers) listRoutes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := h.service.ListRoutes(r.Context(), service.ListRoutesParams{
		Offset: parseInt(query.Get("offset"), 0),
		Limit:  parseInt(query.Get("limit"), 50),
	})
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRoutesPageResponse(page))
}

func (h *APIHandlers) getRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	route, err := h.service.GetRoute(r.Context(), id)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRouteResponse(route))
}

func (h *APIHandlers) cheapestPath(w http.ResponseWriter, r *http.Request) {
	var req cheapestPathRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeAppError(w, r, apperr.BadRequest("invalid request body: %v", err))
		return
	}
	if err := validate.Struct(req); err != nil {
		h.writeAppError(w, r, apperr.BadRequest("%s", validationMessage(err)))
		return
	}

	itinerary, err := h.service.CheapestRoute(r.Context(), req.StartingCityID, req.DestinationCityID)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toItineraryResponse(itinerary))
}

func (h *APIHandlers) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeAppError(w, r, apperr.BadRequest("invalid id %q", raw))
		return 0, false
	}
	return id, true
}

// writeAppError maps the error kind to a status code. Internal failures are
// logged and their details kept out of the response.
func (h *APIHandlers) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	description := err.Error()
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindBadRequest:
		status = http.StatusBadRequest
	default:
		h.logger.Error("request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", RequestIDFrom(r.Context()),
		)
		description = "internal server error"
	}
	writeError(w, status, string(apperr.CodeOf(err)), description)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "nefield":
		return "starting and destination city must differ"
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	respondJSON(w, status, errorResponse{
		Code:        code,
		Description: description,
	})
}
