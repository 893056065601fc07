package routefinder

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/strax84mb/travel-advisor/internal/apperr"
	"github.com/strax84mb/travel-advisor/internal/domain"
)

var tracer = otel.Tracer("routefinder")

// DefaultMaxRounds bounds the number of rounds a search may take. Every round
// materialises one more tree level, so this is also the longest itinerary in
// flights that can be found.
const DefaultMaxRounds = 64

var (
	// ErrRoundLimit is returned when a search is still expanding after the
	// configured number of rounds.
	ErrRoundLimit = apperr.New(apperr.KindInternal, apperr.CodeSearchLimit, "search round limit reached")
	// ErrNegativePrice is returned when the accessor yields a route with a
	// negative price.
	ErrNegativePrice = apperr.New(apperr.KindInternal, apperr.CodeInternal, "route with negative price")
	// ErrNoRoots is returned when Run is called without a root node.
	ErrNoRoots = errors.New("search needs at least one root")
)

// Stats describes the work done by a search.
type Stats struct {
	Rounds        int
	Expansions    int
	Prunes        int
	AccessorCalls int
}

// Result is the outcome of a search. Found is false when no route connects the
// roots to the destinations. Path lists the airport ids visited, starting with
// the origin airport, and Routes the flights taken between them, so that
// Path[i+1] == Routes[i].Finish.
type Result struct {
	Found  bool
	Price  int64
	Path   []int64
	Routes []domain.Route
	Stats  Stats
}

// Expansion is reported to an expansion hook right before a node's outbound
// routes are fetched.
type Expansion struct {
	Airport int64
	Price   int64
	Best    int64
	HasBest bool
}

// Option customises a Search.
type Option func(*Search)

// WithMaxRounds overrides DefaultMaxRounds. Values <= 0 disable the limit.
func WithMaxRounds(n int) Option {
	return func(s *Search) {
		s.maxRounds = n
	}
}

// WithExpansionHook registers fn to be called for every node expansion.
func WithExpansionHook(fn func(Expansion)) Option {
	return func(s *Search) {
		s.onExpand = fn
	}
}

// Search coordinates a round-based branch-and-bound search. It owns the best
// price and path found so far, shared by every branch of every root. A Search
// is used for a single invocation and is not safe for concurrent use.
type Search struct {
	accessor     Accessor
	destinations map[int64]struct{}
	maxRounds    int
	onExpand     func(Expansion)

	hasBest    bool
	bestPrice  int64
	bestPath   []int64
	bestRoutes []domain.Route
	expanded   bool
	stats      Stats
}

// NewSearch builds a coordinator searching from start to any of destinations
// and returns it with the root node for start.
func NewSearch(start int64, destinations []int64, accessor Accessor, opts ...Option) (*Search, *Node) {
	s := &Search{
		accessor:     accessor,
		destinations: make(map[int64]struct{}, len(destinations)),
		maxRounds:    DefaultMaxRounds,
	}
	for _, id := range destinations {
		s.destinations[id] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, newRoot(start)
}

// Root returns a root node for another origin airport. Running several roots
// in one search lets a solution found from one origin prune the others.
func (s *Search) Root(start int64) *Node {
	return newRoot(start)
}

// Run expands the trees under roots round by round until a round expands
// nothing, then returns the cheapest path found. Any accessor error aborts the
// search.
func (s *Search) Run(ctx context.Context, roots ...*Node) (Result, error) {
	if len(roots) == 0 {
		return Result{}, ErrNoRoots
	}

	ctx, span := tracer.Start(ctx, "routefinder.Search.Run", trace.WithAttributes(
		attribute.Int("roots", len(roots)),
		attribute.Int("destinations", len(s.destinations)),
	))
	defer span.End()

	for {
		if s.maxRounds > 0 && s.stats.Rounds >= s.maxRounds {
			err := fmt.Errorf("after %d rounds: %w", s.stats.Rounds, ErrRoundLimit)
			span.RecordError(err)
			span.SetStatus(codes.Error, "round limit")
			return Result{Stats: s.stats}, err
		}
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return Result{Stats: s.stats}, fmt.Errorf("search interrupted after %d rounds: %w", s.stats.Rounds, err)
		}

		s.expanded = false
		s.stats.Rounds++
		for _, root := range roots {
			if err := s.visit(ctx, root, []int64{root.Airport()}, nil); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "visit failed")
				return Result{Stats: s.stats}, err
			}
		}
		span.AddEvent("round", trace.WithAttributes(
			attribute.Int("round", s.stats.Rounds),
			attribute.Bool("expanded", s.expanded),
		))
		if !s.expanded {
			break
		}
	}

	span.SetAttributes(
		attribute.Int("rounds", s.stats.Rounds),
		attribute.Int("expansions", s.stats.Expansions),
		attribute.Bool("found", s.hasBest),
	)

	res := Result{Found: s.hasBest, Stats: s.stats}
	if s.hasBest {
		res.Price = s.bestPrice
		res.Path = s.bestPath
		res.Routes = s.bestRoutes
	}
	return res, nil
}

func (s *Search) visit(ctx context.Context, n *Node, path []int64, routes []domain.Route) error {
	if n.status == statusPruned {
		return nil
	}

	if _, ok := s.destinations[n.Airport()]; ok && (!s.hasBest || n.price < s.bestPrice) {
		s.record(n.price, path, routes)
		s.prune(n)
		return nil
	}

	if s.hasBest && n.price >= s.bestPrice {
		s.prune(n)
		return nil
	}

	switch n.status {
	case statusUnexpanded:
		return s.expand(ctx, n, path)
	case statusExpanded:
		for _, child := range n.children {
			// Full slice expressions force a copy so siblings never share a backing array.
			childPath := append(path[:len(path):len(path)], child.Airport())
			childRoutes := append(routes[:len(routes):len(routes)], child.via)
			if err := s.visit(ctx, child, childPath, childRoutes); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Search) expand(ctx context.Context, n *Node, path []int64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("expand airport %d: %w", n.Airport(), err)
	}
	if s.onExpand != nil {
		s.onExpand(Expansion{
			Airport: n.Airport(),
			Price:   n.price,
			Best:    s.bestPrice,
			HasBest: s.hasBest,
		})
	}

	s.stats.AccessorCalls++
	from, err := s.accessor.CoLocated(ctx, []int64{n.Airport()})
	if err != nil {
		return fmt.Errorf("co-located airports of %d: %w", n.Airport(), err)
	}
	if len(from) == 0 {
		from = []int64{n.Airport()}
	}

	s.stats.AccessorCalls++
	edges, err := s.accessor.Outbound(ctx, from, path)
	if err != nil {
		return fmt.Errorf("outbound routes of %v: %w", from, err)
	}
	if len(edges) == 0 {
		s.prune(n)
		return nil
	}

	children := make([]*Node, 0, len(edges))
	for _, edge := range edges {
		if edge.Price < 0 {
			return fmt.Errorf("route %d: %w", edge.ID, ErrNegativePrice)
		}
		children = append(children, &Node{
			price: n.price + edge.Price,
			via:   edge,
		})
	}
	n.children = children
	n.setStatus(statusExpanded)
	s.expanded = true
	s.stats.Expansions++
	return nil
}

func (s *Search) record(price int64, path []int64, routes []domain.Route) {
	s.hasBest = true
	s.bestPrice = price
	s.bestPath = append([]int64(nil), path...)
	s.bestRoutes = append([]domain.Route(nil), routes...)
}

func (s *Search) prune(n *Node) {
	if n.setStatus(statusPruned) {
		s.stats.Prunes++
	}
}
