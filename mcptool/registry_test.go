package mcptool

import (
	"context"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	tools []mcp.Tool
	err   error
	calls int
}

func (s *stubLister) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	s.calls++
	return s.tools, s.err
}

func TestParseRequirements(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        []string
	}{
		{
			name:        "no marker",
			description: "Formats source files.",
			want:        nil,
		},
		{
			name:        "single requirement",
			description: "Deploys the build. requires: builder",
			want:        []string{"builder"},
		},
		{
			name:        "comma separated list",
			description: "Deploys the build.\nrequires: builder, packager",
			want:        []string{"builder", "packager"},
		},
		{
			name:        "case insensitive marker",
			description: "Requires: builder",
			want:        []string{"builder"},
		},
		{
			name:        "empty list after marker",
			description: "requires:",
			want:        nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseRequirements(tt.description))
		})
	}
}

func TestRegistryGetTool(t *testing.T) {
	lister := &stubLister{tools: []mcp.Tool{
		{Name: "builder", Description: "Compiles sources."},
		{Name: "deployer", Description: "Ships artifacts. requires: builder"},
	}}
	registry := NewRegistry(lister)

	tool, err := registry.GetTool(context.Background(), "deployer")
	require.NoError(t, err)
	require.Equal(t, "deployer", tool.Name)
	require.Equal(t, []string{"builder"}, tool.Dependencies)

	// The catalog is listed once and cached.
	_, err = registry.GetTool(context.Background(), "builder")
	require.NoError(t, err)
	require.Equal(t, 1, lister.calls)

	_, err = registry.GetTool(context.Background(), "missing")
	require.ErrorContains(t, err, "not found")

	registry.Refresh()
	_, err = registry.GetTool(context.Background(), "builder")
	require.NoError(t, err)
	require.Equal(t, 2, lister.calls)
}

func TestRegistryListError(t *testing.T) {
	lister := &stubLister{err: fmt.Errorf("connection refused")}
	registry := NewRegistry(lister)

	_, err := registry.GetTool(context.Background(), "builder")
	require.ErrorContains(t, err, "failed to list mcp tools")
}

func TestRegistryDuplicateToolNames(t *testing.T) {
	lister := &stubLister{tools: []mcp.Tool{
		{Name: "builder"},
		{Name: "builder"},
	}}
	registry := NewRegistry(lister)

	_, err := registry.GetTool(context.Background(), "builder")
	require.ErrorContains(t, err, "duplicate tool name")
}
