package cli

import (
	"context"
	"testing"

	"github.com/deepnoodle-ai/weft"
	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestRenderResultSuccess(t *testing.T) {
	resolver := weft.NewResolver(weft.ResolverOptions{})
	result := resolver.Resolve(context.Background(), []*weft.Task{
		{ID: "build", Tool: "process-execute"},
		{ID: "publish", DependsOn: []string{"build"}},
	}, weft.ResolveOptions{})
	require.True(t, result.Success)

	rendered := renderResult("release", result)
	require.Contains(t, rendered, "Execution Plan: release")
	require.Contains(t, rendered, "| build")
	require.Contains(t, rendered, "| publish")
	require.Contains(t, rendered, "critical path: build → publish")
	require.Contains(t, rendered, "group 1: build")
	require.Contains(t, rendered, "group 2: publish")
}

func TestRenderResultFailure(t *testing.T) {
	resolver := weft.NewResolver(weft.ResolverOptions{})
	result := resolver.Resolve(context.Background(), []*weft.Task{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"a"}},
	}, weft.ResolveOptions{})
	require.False(t, result.Success)

	rendered := renderResult("", result)
	require.Contains(t, rendered, "Execution Plan")
	require.Contains(t, rendered, "circular dependencies detected")
	require.NotContains(t, rendered, "critical path")
}

func TestUnifiedDiff(t *testing.T) {
	require.Empty(t, unifiedDiff("same\n", "same\n"))

	diff := unifiedDiff("line one\nline two\n", "line one\nline three\n")
	require.Contains(t, diff, "-line two")
	require.Contains(t, diff, "+line three")
}

func TestHasGlobMeta(t *testing.T) {
	require.True(t, hasGlobMeta("plans/**/*.yaml"))
	require.True(t, hasGlobMeta("plan-?.yaml"))
	require.False(t, hasGlobMeta("plans/release.yaml"))
}
