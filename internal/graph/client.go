// Package graph wraps the graph database holding the flight network.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Client is the query surface the repository runs Cypher through. Reads and
// writes are separate so the neo4j implementation can route them to the right
// cluster members.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result holds the records of one query.
type Result struct {
	Records []Record
}

// First returns the first record, if any.
func (r Result) First() (Record, bool) {
	if len(r.Records) == 0 {
		return nil, false
	}
	return r.Records[0], true
}

// Record maps the keys of a RETURN clause to their values.
type Record map[string]any

// Int64 reads key as an integer. Bolt delivers integers as int64; the other
// numeric types show up in hand-built records.
func (r Record) Int64(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// String reads key as a string, or "" when it is absent or of another type.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Records reads key as a list of maps, as produced by collect({...}).
// Entries that are not maps are skipped.
func (r Record) Records(key string) []Record {
	items, _ := r[key].([]any)
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
	// AcquireTimeout bounds the wait for a pooled connection; zero keeps the
	// driver default.
	AcquireTimeout time.Duration
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
