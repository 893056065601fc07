package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/strax84mb/travel-advisor/internal/domain"
	"github.com/strax84mb/travel-advisor/internal/graph"
)

func TestRepository_CreateCity(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	mem.PushWriteResult(graph.Result{Records: []graph.Record{
		{"cityId": int64(4), "name": "Belgrade", "airports": []any{}},
	}})

	city, err := repo.CreateCity(context.Background(), "  Belgrade ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if city.ID != 4 || city.Name != "Belgrade" {
		t.Fatalf("unexpected city %+v", city)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write query, got %d", len(calls))
	}
	if calls[0].Query != createCityCypher {
		t.Fatalf("unexpected query\nexpected:\n%s\ngot:\n%s", createCityCypher, calls[0].Query)
	}
	if calls[0].Params["name"] != "Belgrade" {
		t.Errorf("expected trimmed name, got %v", calls[0].Params["name"])
	}
}

func TestRepository_CreateCityRequiresName(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	if _, err := repo.CreateCity(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank name")
	}
	if len(mem.WriteCalls()) != 0 {
		t.Fatal("expected no write for blank name")
	}
}

func TestRepository_CreateAirportUnknownCity(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	_, err := repo.CreateAirport(context.Background(), 9, "Nikola Tesla")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_CreateRoute(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	mem.PushWriteResult(graph.Result{Records: []graph.Record{
		{"routeId": int64(11), "start": int64(1), "finish": int64(2), "price": int64(120)},
	}})

	route, err := repo.CreateRoute(context.Background(), domain.Route{Start: 1, Finish: 2, Price: 120})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if route.ID != 11 || route.Price != 120 {
		t.Fatalf("unexpected route %+v", route)
	}

	if _, err := repo.CreateRoute(context.Background(), domain.Route{Start: 1, Finish: 2, Price: -5}); err == nil {
		t.Fatal("expected error for negative price")
	}
	if len(mem.WriteCalls()) != 1 {
		t.Fatalf("expected invalid route to be rejected before the query, got %d writes", len(mem.WriteCalls()))
	}
}

func TestRepository_Outbound(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"routeId": int64(1), "start": int64(10), "finish": int64(20), "price": int64(30)},
		{"routeId": int64(2), "start": int64(11), "finish": int64(21), "price": int64(40)},
	}})

	routes, err := repo.Outbound(context.Background(), []int64{10, 11}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
	if routes[1] != (domain.Route{ID: 2, Start: 11, Finish: 21, Price: 40}) {
		t.Errorf("unexpected route %+v", routes[1])
	}

	calls := mem.ReadCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 read query, got %d", len(calls))
	}
	exclude, ok := calls[0].Params["exclude"].([]int64)
	if !ok || exclude == nil {
		t.Fatalf("expected empty exclude list, got %#v", calls[0].Params["exclude"])
	}
}

func TestRepository_OutboundWithoutAirports(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	routes, err := repo.Outbound(context.Background(), nil, []int64{1})
	if err != nil || routes != nil {
		t.Fatalf("expected no routes and no error, got %v %v", routes, err)
	}
	if len(mem.ReadCalls()) != 0 {
		t.Fatal("expected no query without departure airports")
	}
}

func TestRepository_CoLocated(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	mem.Handle("LOCATED_IN", func(params map[string]any) (graph.Result, error) {
		ids := params["ids"].([]int64)
		if len(ids) != 1 || ids[0] != 5 {
			t.Errorf("unexpected ids %v", ids)
		}
		return graph.Result{Records: []graph.Record{
			{"airportId": int64(5)},
			{"airportId": int64(6)},
		}}, nil
	})

	ids, err := repo.CoLocated(context.Background(), []int64{5})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ids) != 2 || ids[0] != 5 || ids[1] != 6 {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestRepository_ReadErrorsAreWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	repo := New(graph.NewMemoryClient().WithError(boom))
	ctx := context.Background()

	if _, err := repo.Outbound(ctx, []int64{1}, nil); !errors.Is(err, boom) {
		t.Errorf("outbound: expected wrapped error, got %v", err)
	}
	if _, err := repo.CityAirports(ctx, 1); !errors.Is(err, boom) {
		t.Errorf("city airports: expected wrapped error, got %v", err)
	}
	if _, _, err := repo.City(ctx, 1); !errors.Is(err, boom) {
		t.Errorf("city: expected wrapped error, got %v", err)
	}
}

func TestRepository_City(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{
			"cityId": int64(3),
			"name":   "Novi Sad",
			"airports": []any{
				map[string]any{"airportId": int64(7), "name": "NS North"},
				map[string]any{"airportId": int64(8), "name": "NS South"},
			},
		},
	}})

	city, found, err := repo.City(context.Background(), 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !found {
		t.Fatal("expected city to be found")
	}
	if len(city.Airports) != 2 || city.Airports[1].CityID != 3 || city.Airports[1].Name != "NS South" {
		t.Fatalf("unexpected airports %+v", city.Airports)
	}

	calls := mem.ReadCalls()
	if !strings.Contains(calls[0].Query, "WHERE c.cityId = $cityId") {
		t.Errorf("expected id filter in query: %s", calls[0].Query)
	}

	_, found, err = repo.City(context.Background(), 4)
	if err != nil || found {
		t.Fatalf("expected missing city, got found=%v err=%v", found, err)
	}
}

func TestRepository_ListRoutes(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"routeId": int64(1), "start": int64(1), "finish": int64(2), "price": int64(10)},
	}})
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"total": int64(17)},
	}})

	result, err := repo.ListRoutes(context.Background(), ListRoutesOptions{Offset: -4, Limit: 500})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 route, got %d", len(result.Items))
	}
	if result.Total != 17 {
		t.Fatalf("expected total 17, got %d", result.Total)
	}

	calls := mem.ReadCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 read queries, got %d", len(calls))
	}
	if calls[0].Params["skip"] != 0 || calls[0].Params["limit"] != 200 {
		t.Errorf("expected clamped pagination, got skip=%v limit=%v", calls[0].Params["skip"], calls[0].Params["limit"])
	}
	if !strings.Contains(calls[0].Query, "ORDER BY routeId") {
		t.Errorf("unexpected ordering in list routes query: %s", calls[0].Query)
	}
}

func TestRepository_EnsureSchema(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mem.WriteCalls()) != len(schemaCypher) {
		t.Fatalf("expected %d schema statements, got %d", len(schemaCypher), len(mem.WriteCalls()))
	}
}
