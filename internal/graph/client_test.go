package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordAccessors(t *testing.T) {
	record := Record{
		"cityId": int64(7),
		"count":  3,
		"name":   "Paris",
		"airports": []any{
			map[string]any{"airportId": int64(1), "name": "Orly"},
			"not a map",
			map[string]any{"airportId": int64(2), "name": "Charles de Gaulle"},
		},
	}

	assert.Equal(t, int64(7), record.Int64("cityId"))
	assert.Equal(t, int64(3), record.Int64("count"))
	assert.Equal(t, int64(0), record.Int64("name"))
	assert.Equal(t, "Paris", record.String("name"))
	assert.Equal(t, "", record.String("missing"))

	airports := record.Records("airports")
	if assert.Len(t, airports, 2) {
		assert.Equal(t, "Charles de Gaulle", airports[1].String("name"))
	}
	assert.Empty(t, record.Records("name"))
}

func TestResultFirst(t *testing.T) {
	_, ok := Result{}.First()
	assert.False(t, ok)

	rec, ok := Result{Records: []Record{{"routeId": int64(4)}, {"routeId": int64(5)}}}.First()
	assert.True(t, ok)
	assert.Equal(t, int64(4), rec.Int64("routeId"))
}
