package routefinder

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strax84mb/travel-advisor/internal/domain"
)

// fixture builds small flight graphs with named airports.
type fixture struct {
	cities   []domain.City
	airports []domain.Airport
	routes   []domain.Route
	ids      map[string]int64
}

func newFixture() *fixture {
	return &fixture{ids: make(map[string]int64)}
}

// city adds a city with the given airports. A city without airport names gets
// one airport named after itself.
func (f *fixture) city(name string, airports ...string) *fixture {
	cityID := int64(len(f.cities) + 1)
	f.cities = append(f.cities, domain.City{ID: cityID, Name: name})
	if len(airports) == 0 {
		airports = []string{name}
	}
	for _, a := range airports {
		id := int64(len(f.airports) + 1)
		f.airports = append(f.airports, domain.Airport{ID: id, CityID: cityID, Name: a})
		f.ids[a] = id
	}
	return f
}

func (f *fixture) route(from, to string, price int64) *fixture {
	f.routes = append(f.routes, domain.Route{
		ID:     int64(len(f.routes) + 1),
		Start:  f.ids[from],
		Finish: f.ids[to],
		Price:  price,
	})
	return f
}

func (f *fixture) id(name string) int64 {
	return f.ids[name]
}

func (f *fixture) path(names ...string) []int64 {
	out := make([]int64, 0, len(names))
	for _, n := range names {
		out = append(out, f.ids[n])
	}
	return out
}

func (f *fixture) graph(t *testing.T) *StaticGraph {
	t.Helper()
	g, err := NewStaticGraph(f.cities, f.airports, f.routes)
	require.NoError(t, err)
	return g
}

func runSearch(t *testing.T, acc Accessor, origins, destinations []int64, opts ...Option) Result {
	t.Helper()
	s, root := NewSearch(origins[0], destinations, acc, opts...)
	roots := []*Node{root}
	for _, o := range origins[1:] {
		roots = append(roots, s.Root(o))
	}
	res, err := s.Run(context.Background(), roots...)
	require.NoError(t, err)
	return res
}

func TestSearchPrefersCheaperTwoHopPath(t *testing.T) {
	f := newFixture().city("A").city("B").city("D").
		route("A", "B", 10).
		route("B", "D", 10).
		route("A", "D", 30)

	res := runSearch(t, f.graph(t), f.path("A"), f.path("D"))

	require.True(t, res.Found)
	assert.Equal(t, int64(20), res.Price)
	assert.Equal(t, f.path("A", "B", "D"), res.Path)
	require.Len(t, res.Routes, 2)
	assert.Equal(t, int64(1), res.Routes[0].ID)
	assert.Equal(t, int64(2), res.Routes[1].ID)
}

func TestSearchPicksCheapestAmongEqualLengthPaths(t *testing.T) {
	f := newFixture().city("A").city("B").city("C").city("D").
		route("A", "B", 5).
		route("A", "C", 5).
		route("B", "D", 100).
		route("C", "D", 5)

	res := runSearch(t, f.graph(t), f.path("A"), f.path("D"))

	require.True(t, res.Found)
	assert.Equal(t, int64(10), res.Price)
	assert.Equal(t, f.path("A", "C", "D"), res.Path)
}

func TestSearchNoRoute(t *testing.T) {
	f := newFixture().city("A").city("B").city("C").city("D").
		route("A", "B", 5).
		route("B", "A", 5).
		route("C", "D", 5)

	res := runSearch(t, f.graph(t), f.path("A"), f.path("D"))

	assert.False(t, res.Found)
	assert.Empty(t, res.Path)
	assert.Empty(t, res.Routes)
	assert.Zero(t, res.Price)
}

func TestSearchEndsAtReachableDestinationAirport(t *testing.T) {
	f := newFixture().city("A").city("B").city("Dest", "D1", "D2").
		route("A", "B", 3).
		route("B", "D2", 4)

	res := runSearch(t, f.graph(t), f.path("A"), f.path("D1", "D2"))

	require.True(t, res.Found)
	assert.Equal(t, int64(7), res.Price)
	assert.Equal(t, f.id("D2"), res.Path[len(res.Path)-1])
}

func TestSearchContinuesFromCoLocatedAirport(t *testing.T) {
	f := newFixture().city("A").city("Mid", "M1", "M2").city("D").
		route("A", "M1", 10).
		route("M2", "D", 10)

	res := runSearch(t, f.graph(t), f.path("A"), f.path("D"))

	require.True(t, res.Found)
	assert.Equal(t, int64(20), res.Price)
	assert.Equal(t, f.path("A", "M1", "D"), res.Path)
	require.Len(t, res.Routes, 2)
	assert.Equal(t, f.id("M2"), res.Routes[1].Start)
}

func TestSearchMultipleOriginsShareBest(t *testing.T) {
	f := newFixture().city("O1").city("O2").city("B").city("D").
		route("O1", "B", 10).
		route("B", "D", 10).
		route("O2", "D", 15)

	res := runSearch(t, f.graph(t), f.path("O1", "O2"), f.path("D"))

	require.True(t, res.Found)
	assert.Equal(t, int64(15), res.Price)
	assert.Equal(t, f.path("O2", "D"), res.Path)
}

func TestSearchZeroPriceRoutes(t *testing.T) {
	f := newFixture().city("A").city("B").city("D").
		route("A", "B", 0).
		route("B", "D", 0).
		route("A", "D", 1)

	res := runSearch(t, f.graph(t), f.path("A"), f.path("D"))

	require.True(t, res.Found)
	assert.Equal(t, int64(0), res.Price)
	assert.Equal(t, f.path("A", "B", "D"), res.Path)
}

func TestSearchNeverExpandsAtOrAboveBest(t *testing.T) {
	f := newFixture().city("A").city("B").city("C").city("E").city("D").
		route("A", "D", 4).
		route("A", "B", 3).
		route("A", "C", 6).
		route("B", "E", 2).
		route("C", "E", 1).
		route("E", "D", 1)

	expansions := 0
	hook := func(e Expansion) {
		expansions++
		if e.HasBest {
			assert.Less(t, e.Price, e.Best, "expanded airport %d", e.Airport)
		}
	}
	res := runSearch(t, f.graph(t), f.path("A"), f.path("D"), WithExpansionHook(hook))

	require.True(t, res.Found)
	assert.Equal(t, int64(4), res.Price)
	assert.Equal(t, 2, expansions)
	assert.Equal(t, 2, res.Stats.Expansions)
	assert.Equal(t, 3, res.Stats.Prunes)
}

func TestSearchIsDeterministic(t *testing.T) {
	f := newFixture().city("A").city("B").city("C").city("D").
		route("A", "B", 5).
		route("A", "C", 5).
		route("B", "D", 5).
		route("C", "D", 5)
	g := f.graph(t)

	first := runSearch(t, g, f.path("A"), f.path("D"))
	for range 5 {
		again := runSearch(t, g, f.path("A"), f.path("D"))
		assert.Equal(t, first.Price, again.Price)
		assert.Equal(t, first.Path, again.Path)
	}
}

func TestSearchNeverRevisitsAirport(t *testing.T) {
	f := newFixture().city("A").city("B").city("C").city("D").
		route("A", "B", 1).
		route("B", "A", 1).
		route("B", "C", 1).
		route("C", "B", 1).
		route("C", "A", 1).
		route("C", "D", 50)

	res := runSearch(t, f.graph(t), f.path("A"), f.path("D"))

	require.True(t, res.Found)
	assert.Equal(t, int64(52), res.Price)
	assertSimplePath(t, res.Path)
}

func TestSearchAgainstBruteForce(t *testing.T) {
	for seed := uint64(1); seed <= 200; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*31))
		n := 2 + rng.IntN(6)
		f := newFixture()
		for i := range n {
			f.city(string(rune('A' + i)))
		}
		for from := 1; from <= n; from++ {
			for to := 1; to <= n; to++ {
				if from == to || rng.IntN(3) != 0 {
					continue
				}
				f.routes = append(f.routes, domain.Route{
					ID:     int64(len(f.routes) + 1),
					Start:  int64(from),
					Finish: int64(to),
					Price:  int64(rng.IntN(20)),
				})
			}
		}

		origins := []int64{1}
		if n > 3 && rng.IntN(2) == 0 {
			origins = append(origins, 2)
		}
		destination := int64(n)

		want, ok := bruteForce(f.routes, origins, destination)
		res := runSearch(t, f.graph(t), origins, []int64{destination}, WithExpansionHook(func(e Expansion) {
			if e.HasBest {
				assert.Less(t, e.Price, e.Best, "seed %d", seed)
			}
		}))

		require.Equal(t, ok, res.Found, "seed %d", seed)
		if !ok {
			continue
		}
		assert.Equal(t, want, res.Price, "seed %d", seed)
		assertSimplePath(t, res.Path)
		assert.Contains(t, origins, res.Path[0], "seed %d", seed)
		assert.Equal(t, destination, res.Path[len(res.Path)-1], "seed %d", seed)

		var total int64
		for i, r := range res.Routes {
			assert.Equal(t, res.Path[i], r.Start, "seed %d", seed)
			assert.Equal(t, res.Path[i+1], r.Finish, "seed %d", seed)
			total += r.Price
		}
		assert.Equal(t, res.Price, total, "seed %d", seed)
	}
}

// bruteForce enumerates every simple path from the origins to destination.
func bruteForce(routes []domain.Route, origins []int64, destination int64) (int64, bool) {
	var (
		best  int64
		found bool
		walk  func(at int64, price int64, seen map[int64]bool)
	)
	walk = func(at int64, price int64, seen map[int64]bool) {
		if at == destination {
			if !found || price < best {
				best, found = price, true
			}
			return
		}
		for _, r := range routes {
			if r.Start != at || seen[r.Finish] {
				continue
			}
			seen[r.Finish] = true
			walk(r.Finish, price+r.Price, seen)
			delete(seen, r.Finish)
		}
	}
	for _, o := range origins {
		walk(o, 0, map[int64]bool{o: true})
	}
	return best, found
}

func assertSimplePath(t *testing.T, path []int64) {
	t.Helper()
	seen := make(map[int64]bool, len(path))
	for _, id := range path {
		assert.False(t, seen[id], "airport %d visited twice in %v", id, path)
		seen[id] = true
	}
}

type stubAccessor struct {
	outbound  func(from, exclude []int64) ([]domain.Route, error)
	coLocated func(ids []int64) ([]int64, error)
}

func (s stubAccessor) Outbound(_ context.Context, from, exclude []int64) ([]domain.Route, error) {
	return s.outbound(from, exclude)
}

func (s stubAccessor) CoLocated(_ context.Context, ids []int64) ([]int64, error) {
	if s.coLocated == nil {
		return ids, nil
	}
	return s.coLocated(ids)
}

func TestSearchAbortsOnAccessorError(t *testing.T) {
	boom := errors.New("graph unavailable")
	acc := stubAccessor{outbound: func([]int64, []int64) ([]domain.Route, error) {
		return nil, boom
	}}

	s, root := NewSearch(1, []int64{2}, acc)
	_, err := s.Run(context.Background(), root)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestSearchAbortsOnCoLocatedError(t *testing.T) {
	boom := errors.New("timeout")
	acc := stubAccessor{
		outbound: func([]int64, []int64) ([]domain.Route, error) { return nil, nil },
		coLocated: func([]int64) ([]int64, error) {
			return nil, boom
		},
	}

	s, root := NewSearch(1, []int64{2}, acc)
	_, err := s.Run(context.Background(), root)

	assert.ErrorIs(t, err, boom)
}

func TestSearchRejectsNegativePrice(t *testing.T) {
	acc := stubAccessor{outbound: func(from, _ []int64) ([]domain.Route, error) {
		return []domain.Route{{ID: 9, Start: from[0], Finish: 2, Price: -1}}, nil
	}}

	s, root := NewSearch(1, []int64{2}, acc)
	_, err := s.Run(context.Background(), root)

	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestSearchRoundLimit(t *testing.T) {
	f := newFixture().city("A").city("B").city("C").city("D").city("E").
		route("A", "B", 1).
		route("B", "C", 1).
		route("C", "D", 1).
		route("D", "E", 1)

	s, root := NewSearch(f.id("A"), f.path("E"), f.graph(t), WithMaxRounds(2))
	res, err := s.Run(context.Background(), root)

	require.ErrorIs(t, err, ErrRoundLimit)
	assert.Equal(t, 2, res.Stats.Rounds)
}

func TestSearchHonoursCancelledContext(t *testing.T) {
	f := newFixture().city("A").city("B").route("A", "B", 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, root := NewSearch(f.id("A"), f.path("B"), f.graph(t))
	_, err := s.Run(ctx, root)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchWithoutRoots(t *testing.T) {
	s, _ := NewSearch(1, []int64{2}, stubAccessor{})
	_, err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoRoots)
}

func TestNodeStatusTransitions(t *testing.T) {
	n := newRoot(1)
	assert.Equal(t, "unexpanded", n.status.String())

	require.True(t, n.setStatus(statusExpanded))
	n.children = []*Node{{price: 1}}
	assert.False(t, n.setStatus(statusUnexpanded))
	assert.False(t, n.setStatus(statusExpanded))

	require.True(t, n.setStatus(statusPruned))
	assert.Nil(t, n.children)
	assert.False(t, n.setStatus(statusExpanded))
	assert.False(t, n.setStatus(statusPruned))
	assert.Equal(t, "pruned", n.status.String())
}
