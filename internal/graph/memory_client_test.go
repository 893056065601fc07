package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClientHandlersTakePrecedence(t *testing.T) {
	client := NewMemoryClient().Handle("MATCH (c:City", func(params map[string]any) (Result, error) {
		return Result{Records: []Record{{"id": params["id"]}}}, nil
	})
	client.PushReadResult(Result{Records: []Record{{"queued": true}}})

	ctx := context.Background()
	res, err := client.ExecuteRead(ctx, "MATCH (c:City {cityId: $id}) RETURN c", map[string]any{"id": int64(3)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Records[0]["id"])

	res, err = client.ExecuteRead(ctx, "MATCH (a:Airport) RETURN a", nil)
	require.NoError(t, err)
	assert.Equal(t, true, res.Records[0]["queued"])

	res, err = client.ExecuteRead(ctx, "MATCH (a:Airport) RETURN a", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Records)

	assert.Len(t, client.ReadCalls(), 3)
	assert.Empty(t, client.WriteCalls())
}

func TestMemoryClientErrors(t *testing.T) {
	boom := errors.New("unavailable")
	client := NewMemoryClient().WithError(boom).WithConnectivityError(boom)

	_, err := client.ExecuteWrite(context.Background(), "CREATE (n)", nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, client.VerifyConnectivity(context.Background()), boom)
	assert.Empty(t, client.WriteCalls())
}

func TestNewNeo4jClientRequiresURI(t *testing.T) {
	_, err := NewNeo4jClient(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrMissingURI)
}
