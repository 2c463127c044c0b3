package weft

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/deepnoodle-ai/weft/resource"
	"github.com/deepnoodle-ai/weft/retry"
	"github.com/stretchr/testify/require"
)

type stubToolRegistry struct {
	tools map[string]*ToolInfo
	calls int
}

func (s *stubToolRegistry) GetTool(ctx context.Context, name string) (*ToolInfo, error) {
	s.calls++
	tool, ok := s.tools[name]
	if !ok {
		return nil, retry.Permanent(fmt.Errorf("tool %q not found", name))
	}
	return tool, nil
}

type stubPromptClient struct {
	responses map[string]string
}

func (s *stubPromptClient) Generate(ctx context.Context, prompt string) (string, error) {
	for description, response := range s.responses {
		if strings.Contains(prompt, fmt.Sprintf("Target Task: %q", description)) {
			return response, nil
		}
	}
	return "[]", nil
}

type sequentialIDs struct {
	next int
}

func (s *sequentialIDs) NewID() string {
	s.next++
	return fmt.Sprintf("task-%d", s.next)
}

func TestResolveExplicitChain(t *testing.T) {
	resolver := NewResolver(ResolverOptions{})
	result := resolver.Resolve(context.Background(), []*Task{
		{ID: "task3", DependsOn: []string{"task2"}},
		{ID: "task2", DependsOn: []string{"task1"}},
		{ID: "task1"},
	}, ResolveOptions{})

	require.True(t, result.Success)
	require.Empty(t, result.Error)
	require.Equal(t, []string{"task1", "task2", "task3"}, result.ExecutionOrder)
	require.Equal(t, 3, result.Graph.NodeCount())
	require.Equal(t, 2, result.Graph.EdgeCount())
}

func TestResolveEmptyInput(t *testing.T) {
	resolver := NewResolver(ResolverOptions{})
	result := resolver.Resolve(context.Background(), nil, ResolveOptions{})

	require.True(t, result.Success)
	require.Equal(t, []string{}, result.ExecutionOrder)
	require.Empty(t, result.CriticalPath)
	require.Zero(t, result.EstimatedTime)
}

func TestResolveCycles(t *testing.T) {
	tests := []struct {
		name  string
		tasks []*Task
	}{
		{
			name: "two task cycle",
			tasks: []*Task{
				{ID: "a", DependsOn: []string{"b"}},
				{ID: "b", DependsOn: []string{"a"}},
			},
		},
		{
			name: "three task cycle",
			tasks: []*Task{
				{ID: "a", DependsOn: []string{"c"}},
				{ID: "b", DependsOn: []string{"a"}},
				{ID: "c", DependsOn: []string{"b"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewResolver(ResolverOptions{})
			result := resolver.Resolve(context.Background(), tt.tasks, ResolveOptions{})
			require.False(t, result.Success)
			require.Contains(t, result.Error, "circular dependencies detected")
			require.Empty(t, result.ExecutionOrder)
		})
	}
}

func TestResolveCycleWithDetectionDisabled(t *testing.T) {
	resolver := NewResolver(ResolverOptions{DisableCycleDetection: true})
	result := resolver.Resolve(context.Background(), []*Task{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"a"}},
	}, ResolveOptions{})

	// The sort still refuses the cyclic graph, just with less detail.
	require.False(t, result.Success)
	require.Contains(t, result.Error, "circular dependency detected during topological sort")
}

func TestResolvePriorityOrdering(t *testing.T) {
	resolver := NewResolver(ResolverOptions{})
	result := resolver.Resolve(context.Background(), []*Task{
		{ID: "low", Priority: 1},
		{ID: "high", Priority: 9},
		{ID: "unset"},
	}, ResolveOptions{})

	require.True(t, result.Success)
	// Unset priority defaults to 5, placing it between the other two.
	require.Equal(t, []string{"high", "unset", "low"}, result.ExecutionOrder)
}

func TestResolveExclusiveResourceConflict(t *testing.T) {
	resolver := NewResolver(ResolverOptions{})
	result := resolver.Resolve(context.Background(), []*Task{
		{ID: "low", Tool: "file-write", Priority: 5},
		{ID: "high", Tool: "file-write", Priority: 10},
	}, ResolveOptions{})

	require.True(t, result.Success)
	// The higher priority writer goes first; the conflict is reported.
	require.Equal(t, []string{"high", "low"}, result.ExecutionOrder)
	require.NotNil(t, result.Resources)
	require.Len(t, result.Resources.Conflicts, 1)
	conflict := result.Resources.Conflicts[0]
	require.Equal(t, resource.ConflictExclusive, conflict.Type)
	require.Equal(t, "tool:file-write", conflict.Resource)
	require.True(t, conflict.Involves("low", "high"))
}

func TestResolveParallelGroups(t *testing.T) {
	resolver := NewResolver(ResolverOptions{})
	result := resolver.Resolve(context.Background(), []*Task{
		{ID: "a"},
		{ID: "b"},
		{ID: "c"},
		{ID: "merge", DependsOn: []string{"a", "b", "c"}},
	}, ResolveOptions{})

	require.True(t, result.Success)
	require.Len(t, result.ParallelGroups, 2)
	require.ElementsMatch(t, []string{"a", "b", "c"}, result.ParallelGroups[0].Tasks)
	require.Equal(t, []string{"merge"}, result.ParallelGroups[1].Tasks)
}

func TestResolveParallelGroupsSplitOnConflict(t *testing.T) {
	shared := &TaskResources{Outputs: []string{"report"}}
	resolver := NewResolver(ResolverOptions{})
	result := resolver.Resolve(context.Background(), []*Task{
		{ID: "first", Resources: shared},
		{ID: "second", Resources: shared},
	}, ResolveOptions{})

	require.True(t, result.Success)
	// Both tasks are dependency-free but write the same output, so they
	// must not share a group.
	require.Len(t, result.ParallelGroups, 2)
	require.Equal(t, []string{"first"}, result.ParallelGroups[0].Tasks)
	require.Equal(t, []string{"second"}, result.ParallelGroups[1].Tasks)
	require.Len(t, result.ParallelGroups[0].Excluded, 1)
	require.Equal(t, resource.ConflictOutput, result.ParallelGroups[0].Excluded[0].Type)
}

func TestResolveCriticalPath(t *testing.T) {
	resolver := NewResolver(ResolverOptions{})
	result := resolver.Resolve(context.Background(), []*Task{
		{ID: "start", EstimatedTime: time.Second},
		{ID: "slow", DependsOn: []string{"start"}, EstimatedTime: 5 * time.Second},
		{ID: "fast", DependsOn: []string{"start"}, EstimatedTime: time.Second},
		{ID: "finish", DependsOn: []string{"slow", "fast"}, EstimatedTime: time.Second},
	}, ResolveOptions{})

	require.True(t, result.Success)
	require.Equal(t, []string{"start", "slow", "finish"}, result.CriticalPath)
	require.Equal(t, 7*time.Second, result.EstimatedTime)
}

func TestResolveMissingDependencyTolerated(t *testing.T) {
	resolver := NewResolver(ResolverOptions{})
	result := resolver.Resolve(context.Background(), []*Task{
		{ID: "task1"},
		{ID: "task2", DependsOn: []string{"task1", "ghost"}},
	}, ResolveOptions{})

	require.True(t, result.Success)
	require.Equal(t, []string{"task1", "task2"}, result.ExecutionOrder)
	require.Equal(t, 1, result.Graph.EdgeCount())
}

func TestResolveMalformedInput(t *testing.T) {
	resolver := NewResolver(ResolverOptions{IDGenerator: &sequentialIDs{}})
	result := resolver.Resolve(context.Background(), []*Task{
		nil,
		{Description: "standalone work"},
		nil,
	}, ResolveOptions{})

	require.True(t, result.Success)
	require.Equal(t, []string{"task-1"}, result.ExecutionOrder)
}

func TestResolveToolBasedInference(t *testing.T) {
	registry := &stubToolRegistry{tools: map[string]*ToolInfo{
		"builder":  {Name: "builder"},
		"deployer": {Name: "deployer", Dependencies: []string{"builder"}},
	}}
	resolver := NewResolver(ResolverOptions{ToolRegistry: registry})
	result := resolver.Resolve(context.Background(), []*Task{
		{ID: "deploy", Tool: "deployer"},
		{ID: "build", Tool: "builder"},
	}, ResolveOptions{})

	require.True(t, result.Success)
	require.Equal(t, []string{"build", "deploy"}, result.ExecutionOrder)
	require.True(t, result.Graph.HasEdge("deploy", "build"))
	require.Equal(t, 2, registry.calls)
}

func TestResolveToolLookupFailureTolerated(t *testing.T) {
	registry := &stubToolRegistry{tools: map[string]*ToolInfo{}}
	resolver := NewResolver(ResolverOptions{ToolRegistry: registry})
	result := resolver.Resolve(context.Background(), []*Task{
		{ID: "a", Tool: "unknown-tool"},
		{ID: "b"},
	}, ResolveOptions{})

	require.True(t, result.Success)
	require.Equal(t, 0, result.Graph.EdgeCount())
}

func TestResolveSemanticAnalysis(t *testing.T) {
	prompter := &stubPromptClient{responses: map[string]string{
		"train the model": `Sure, here you go: ["fetch"]`,
	}}
	resolver := NewResolver(ResolverOptions{PromptClient: prompter})
	result := resolver.Resolve(context.Background(), []*Task{
		{ID: "fetch", Description: "download the dataset"},
		{ID: "train", Description: "train the model"},
	}, ResolveOptions{SemanticAnalysis: true})

	require.True(t, result.Success)
	require.Equal(t, []string{"fetch", "train"}, result.ExecutionOrder)
	require.True(t, result.Graph.HasEdge("train", "fetch"))
}

func TestResolveSemanticAnalysisWithoutClient(t *testing.T) {
	resolver := NewResolver(ResolverOptions{})
	result := resolver.Resolve(context.Background(), []*Task{
		{ID: "a"},
		{ID: "b"},
	}, ResolveOptions{SemanticAnalysis: true})

	require.True(t, result.Success)
	require.Equal(t, 0, result.Graph.EdgeCount())
}

func TestResolveMissingResources(t *testing.T) {
	resolver := NewResolver(ResolverOptions{})
	result := resolver.Resolve(context.Background(), []*Task{
		{ID: "a", Resources: &TaskResources{Inputs: []string{"gpu", "cpu"}}},
	}, ResolveOptions{AvailableResources: []string{"disk"}})

	require.True(t, result.Success)
	require.NotNil(t, result.Resources)
	require.Len(t, result.Resources.Missing, 1)
	require.Equal(t, "gpu", result.Resources.Missing[0].Resource)
}

func TestResolverCache(t *testing.T) {
	resolver := NewResolver(ResolverOptions{})
	tasks := []*Task{
		{ID: "task1"},
		{ID: "task2", DependsOn: []string{"task1"}},
	}

	first := resolver.Resolve(context.Background(), tasks, ResolveOptions{})
	require.True(t, first.Success)

	stats := resolver.GetCacheStats()
	require.True(t, stats.Enabled)
	require.Equal(t, 1, stats.Size)

	second := resolver.Resolve(context.Background(), tasks, ResolveOptions{})
	require.Same(t, first, second)
	require.Equal(t, 1, resolver.GetCacheStats().Size)

	// Different call options miss the cache.
	third := resolver.Resolve(context.Background(), tasks, ResolveOptions{
		AvailableResources: []string{"disk"},
	})
	require.True(t, third.Success)
	require.Equal(t, 2, resolver.GetCacheStats().Size)

	resolver.ClearCache()
	require.Equal(t, 0, resolver.GetCacheStats().Size)
}

func TestResolverCacheSkipsUnencodableTasks(t *testing.T) {
	resolver := NewResolver(ResolverOptions{})
	tasks := []*Task{
		{ID: "task1", Params: map[string]any{"signal": make(chan int)}},
	}

	first := resolver.Resolve(context.Background(), tasks, ResolveOptions{})
	require.True(t, first.Success)
	require.Equal(t, 0, resolver.GetCacheStats().Size)

	second := resolver.Resolve(context.Background(), tasks, ResolveOptions{})
	require.True(t, second.Success)
	require.NotSame(t, first, second)
	require.Equal(t, 0, resolver.GetCacheStats().Size)
}

func TestResolverCacheDisabled(t *testing.T) {
	resolver := NewResolver(ResolverOptions{DisableCache: true})
	tasks := []*Task{{ID: "task1"}}

	first := resolver.Resolve(context.Background(), tasks, ResolveOptions{})
	second := resolver.Resolve(context.Background(), tasks, ResolveOptions{})
	require.True(t, first.Success)
	require.True(t, second.Success)
	require.NotSame(t, first, second)

	stats := resolver.GetCacheStats()
	require.False(t, stats.Enabled)
	require.Equal(t, 0, stats.Size)
}

func TestResolveComplexity(t *testing.T) {
	resolver := NewResolver(ResolverOptions{})
	result := resolver.Resolve(context.Background(), []*Task{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"a", "b"}},
		{ID: "d", DependsOn: []string{"b"}},
	}, ResolveOptions{})

	require.True(t, result.Success)
	require.InDelta(t, 1.0, result.Complexity, 0.0001)
}

func TestResolveTask(t *testing.T) {
	resolver := NewResolver(ResolverOptions{})
	result := resolver.ResolveTask(context.Background(), &Task{ID: "solo"}, ResolveOptions{})

	require.True(t, result.Success)
	require.Equal(t, []string{"solo"}, result.ExecutionOrder)
	require.Equal(t, []string{"solo"}, result.CriticalPath)
}
