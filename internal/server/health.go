package server

import (
	"context"
	"fmt"

	"github.com/strax84mb/travel-advisor/internal/graph"
)

// HealthService reports whether the API can serve route searches.
type HealthService interface {
	Probe(ctx context.Context) error
}

// GraphHealthService checks that the graph holding the flight network is
// reachable. A nil client means the API runs without a graph and is healthy.
type GraphHealthService struct {
	Client graph.Client
}

func (s GraphHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	if err := s.Client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("flight graph unreachable: %w", err)
	}
	return nil
}
