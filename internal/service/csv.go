package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/strax84mb/travel-advisor/internal/apperr"
)

var recordValidate = validator.New()

// CityRecord is one row of a cities file: name.
type CityRecord struct {
	Row  int
	Name string `validate:"required,max=120"`
}

// AirportRecord is one row of an airports file: city_name,airport_name.
type AirportRecord struct {
	Row      int
	CityName string `validate:"required,max=120"`
	Name     string `validate:"required,max=120"`
}

// RouteRecord is one row of a routes file: start_airport_id,finish_airport_id,price.
type RouteRecord struct {
	Row    int
	Start  int64 `validate:"gt=0"`
	Finish int64 `validate:"gt=0,nefield=Start"`
	Price  int64 `validate:"gte=0"`
}

// Dataset groups the parsed contents of the three import files.
type Dataset struct {
	Cities   []CityRecord
	Airports []AirportRecord
	Routes   []RouteRecord
}

// ParseCities reads a cities file. The first row is a header.
func ParseCities(r io.Reader) ([]CityRecord, error) {
	var out []CityRecord
	err := readRows(r, 1, func(row int, fields []string) error {
		rec := CityRecord{Row: row, Name: strings.TrimSpace(fields[0])}
		if err := recordValidate.Struct(rec); err != nil {
			return rowError(row, err)
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// ParseAirports reads an airports file. The first row is a header.
func ParseAirports(r io.Reader) ([]AirportRecord, error) {
	var out []AirportRecord
	err := readRows(r, 2, func(row int, fields []string) error {
		rec := AirportRecord{
			Row:      row,
			CityName: strings.TrimSpace(fields[0]),
			Name:     strings.TrimSpace(fields[1]),
		}
		if err := recordValidate.Struct(rec); err != nil {
			return rowError(row, err)
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// ParseRoutes reads a routes file. The first row is a header.
func ParseRoutes(r io.Reader) ([]RouteRecord, error) {
	var out []RouteRecord
	err := readRows(r, 3, func(row int, fields []string) error {
		rec := RouteRecord{Row: row}
		targets := []*int64{&rec.Start, &rec.Finish, &rec.Price}
		names := []string{"start airport id", "finish airport id", "price"}
		for i, target := range targets {
			v, err := strconv.ParseInt(strings.TrimSpace(fields[i]), 10, 64)
			if err != nil {
				return rowError(row, fmt.Errorf("%s: %w", names[i], err))
			}
			*target = v
		}
		if err := recordValidate.Struct(rec); err != nil {
			return rowError(row, err)
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// readRows skips the header and hands every following row to fn with its
// 1-based line number.
func readRows(r io.Reader, fields int, fn func(row int, fields []string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = fields
	reader.TrimLeadingSpace = true

	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			line := 0
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.StartLine
			}
			return rowError(line, err)
		}
		line, _ := reader.FieldPos(0)
		if header {
			header = false
			continue
		}
		if err := fn(line, record); err != nil {
			return err
		}
	}
}

func rowError(row int, err error) error {
	return &apperr.Error{
		Kind: apperr.KindBadRequest,
		Code: apperr.CodeTextRowParse,
		Msg:  fmt.Sprintf("row %d", row),
		Err:  err,
	}
}
