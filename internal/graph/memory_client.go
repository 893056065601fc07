package graph

import (
	"context"
	"maps"
	"strings"
	"sync"
)

// Handler computes the response to a query matched by MemoryClient.Handle.
type Handler func(params map[string]any) (Result, error)

// MemoryClient is an in-memory implementation of Client used for unit testing
// repository logic without a running graph database. Responses come from
// handlers registered for a query fragment, falling back to queued results.
type MemoryClient struct {
	mu           sync.Mutex
	writeCalls   []ExecutedQuery
	readCalls    []ExecutedQuery
	readResults  []Result
	writeResults []Result
	handlers     []queryHandler
	err          error
	connectivity error
}

type queryHandler struct {
	fragment string
	fn       Handler
}

// ExecutedQuery captures a cypher statement and parameters executed against the graph.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
}

// NewMemoryClient instantiates an empty in-memory client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError configures the client to return the provided error for subsequent calls.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// Handle answers every read or write whose cypher contains fragment with fn.
// Handlers are matched in registration order.
func (m *MemoryClient) Handle(fragment string, fn Handler) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, queryHandler{fragment: fragment, fn: fn})
	return m
}

// PushReadResult appends a result that will be returned on the next unhandled ExecuteRead call.
func (m *MemoryClient) PushReadResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readResults = append(m.readResults, res)
}

// PushWriteResult appends a result that will be returned on the next unhandled ExecuteWrite call.
func (m *MemoryClient) PushWriteResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeResults = append(m.writeResults, res)
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(&m.writeCalls, &m.writeResults, cypher, params)
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(&m.readCalls, &m.readResults, cypher, params)
}

func (m *MemoryClient) execute(calls *[]ExecutedQuery, queue *[]Result, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	if m.err != nil {
		err := m.err
		m.mu.Unlock()
		return Result{}, err
	}

	*calls = append(*calls, ExecutedQuery{
		Query:  cypher,
		Params: maps.Clone(params),
	})

	for _, h := range m.handlers {
		if strings.Contains(cypher, h.fragment) {
			fn := h.fn
			m.mu.Unlock()
			return fn(params)
		}
	}
	defer m.mu.Unlock()

	if len(*queue) == 0 {
		return Result{}, nil
	}
	res := (*queue)[0]
	*queue = (*queue)[1:]
	return res, nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// WriteCalls returns a snapshot of executed write queries.
func (m *MemoryClient) WriteCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.writeCalls...)
}

// ReadCalls returns a snapshot of executed read queries.
func (m *MemoryClient) ReadCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.readCalls...)
}
