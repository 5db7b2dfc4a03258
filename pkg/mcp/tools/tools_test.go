package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sqlward/sqlward/pkg/gateway"
)

func requestWithArgs(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestResolvePool_UnknownProfile(t *testing.T) {
	deps := &Deps{
		Manager: gateway.NewPoolManager(gateway.ManagerConfig{}, zap.NewNop()),
		Profiles: map[string]*gateway.Profile{
			"local":   {Name: "local"},
			"staging": {Name: "staging"},
		},
		Logger: zap.NewNop(),
	}

	pool, errResult := resolvePool(context.Background(), deps, "production")
	assert.Nil(t, pool)
	require.NotNil(t, errResult)

	resp := decodeErrorResult(t, errResult)
	assert.Equal(t, "unknown_profile", resp.Code)

	// Known profile names are listed sorted so the agent can self-correct.
	details, ok := resp.Details.(map[string]any)
	require.True(t, ok)
	known, ok := details["known_profiles"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"local", "staging"}, known)
}

func TestProfileNames_Sorted(t *testing.T) {
	names := profileNames(map[string]*gateway.Profile{
		"zeta": {}, "alpha": {}, "mid": {},
	})
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestOptionalArgumentGetters(t *testing.T) {
	t.Run("int present", func(t *testing.T) {
		req := requestWithArgs(map[string]any{"max_rows": float64(25)})
		val, ok := getOptionalInt(req, "max_rows")
		assert.True(t, ok)
		assert.Equal(t, 25, val)
	})

	t.Run("int absent", func(t *testing.T) {
		req := requestWithArgs(map[string]any{})
		_, ok := getOptionalInt(req, "max_rows")
		assert.False(t, ok)
	})

	t.Run("string present and absent", func(t *testing.T) {
		req := requestWithArgs(map[string]any{"schema": "dbo"})
		assert.Equal(t, "dbo", getOptionalString(req, "schema"))
		assert.Empty(t, getOptionalString(req, "missing"))
	})

	t.Run("object round-trips through json decoding", func(t *testing.T) {
		var args map[string]any
		require.NoError(t, json.Unmarshal([]byte(`{"params":{"city":"Berlin","limit":10}}`), &args))
		req := requestWithArgs(args)

		params := getOptionalObject(req, "params")
		require.NotNil(t, params)
		assert.Equal(t, "Berlin", params["city"])
	})

	t.Run("nil arguments", func(t *testing.T) {
		var req mcp.CallToolRequest
		_, ok := getOptionalInt(req, "max_rows")
		assert.False(t, ok)
		assert.Nil(t, getOptionalObject(req, "params"))
		assert.Empty(t, getOptionalString(req, "schema"))
	})
}
