package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name   string
	params []ParamSpec
}

func (t *stubTool) Name() string        { return t.name }
func (t *stubTool) Description() string { return "stub tool " + t.name }
func (t *stubTool) Params() []ParamSpec { return t.params }
func (t *stubTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	return NewSuccessResult("ok"), nil
}
func (t *stubTool) Validate(args map[string]any) error {
	return ValidateArgs(t.params, args)
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	names := []string{"zebra", "alpha", "middle"}
	for _, name := range names {
		require.NoError(t, r.Register(&stubTool{name: name}))
	}

	assert.Equal(t, names, r.Names())

	listed := r.List()
	require.Len(t, listed, 3)
	for i, tool := range listed {
		assert.Equal(t, names[i], tool.Name())
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubTool{name: "dup"}))

	err := r.Register(&stubTool{name: "dup"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	// Failed registration does not disturb the order
	assert.Equal(t, []string{"dup"}, r.Names())
}

func TestRegistryGetUnknownIsTypedError(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("missing")
	require.Error(t, err)
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "missing", nfe.Name)
}

func TestCatalogListsToolsInOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubTool{name: "first", params: []ParamSpec{
		{Name: "query", Type: "string", Required: true, Description: "the query"},
	}}))
	require.NoError(t, r.Register(&stubTool{name: "second"}))

	catalog := r.Catalog()
	assert.Contains(t, catalog, "1. first:")
	assert.Contains(t, catalog, "- query (string, required): the query")
	assert.Contains(t, catalog, "2. second:")
	assert.Less(t, indexOf(catalog, "1. first"), indexOf(catalog, "2. second"))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestValidateArgs(t *testing.T) {
	specs := []ParamSpec{
		{Name: "path", Type: "string", Required: true},
		{Name: "limit", Type: "int"},
	}

	assert.NoError(t, ValidateArgs(specs, map[string]any{"path": "a.txt"}))
	// YAML numbers arrive as float64
	assert.NoError(t, ValidateArgs(specs, map[string]any{"path": "a.txt", "limit": float64(3)}))

	err := ValidateArgs(specs, map[string]any{"limit": 3})
	require.Error(t, err)
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "path", ve.Field)

	assert.Error(t, ValidateArgs(specs, map[string]any{"path": 42}))
	assert.Error(t, ValidateArgs(specs, map[string]any{"path": "a", "unknown": true}))
}
