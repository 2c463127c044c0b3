package weft

import (
	"testing"
	"time"

	"github.com/deepnoodle-ai/weft/graph"
	"github.com/stretchr/testify/require"
)

func TestEstimateTaskTime(t *testing.T) {
	tests := []struct {
		name string
		task *Task
		want time.Duration
	}{
		{
			name: "explicit estimate wins",
			task: &Task{Tool: "process-execute", EstimatedTime: 42 * time.Second},
			want: 42 * time.Second,
		},
		{
			name: "known tool",
			task: &Task{Tool: "web-search"},
			want: 3 * time.Second,
		},
		{
			name: "unknown tool",
			task: &Task{Tool: "custom-tool"},
			want: 2 * time.Second,
		},
		{
			name: "subtasks",
			task: &Task{Subtasks: []*Task{{}, {}, {}}},
			want: 1500 * time.Millisecond,
		},
		{
			name: "long description",
			task: &Task{Description: "analyze the quarterly revenue numbers and produce a summary table"},
			want: 650 * time.Millisecond,
		},
		{
			name: "short description hits the floor",
			task: &Task{Description: "tidy up"},
			want: 500 * time.Millisecond,
		},
		{
			name: "bare task",
			task: &Task{},
			want: time.Second,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, EstimateTaskTime(tt.task))
		})
	}
}

func TestCriticalPathPicksLongestChain(t *testing.T) {
	g := graph.New[*Task]()
	g.AddNode("start", &Task{ID: "start", EstimatedTime: time.Second})
	g.AddNode("slow", &Task{ID: "slow", EstimatedTime: 10 * time.Second})
	g.AddNode("fast", &Task{ID: "fast", EstimatedTime: time.Second})
	g.AddNode("finish", &Task{ID: "finish", EstimatedTime: time.Second})
	require.NoError(t, g.AddEdge("slow", "start"))
	require.NoError(t, g.AddEdge("fast", "start"))
	require.NoError(t, g.AddEdge("finish", "slow"))
	require.NoError(t, g.AddEdge("finish", "fast"))

	order, err := graph.Sort(g)
	require.NoError(t, err)

	path, total := criticalPath(g, order)
	require.Equal(t, []string{"start", "slow", "finish"}, path)
	require.Equal(t, 12*time.Second, total)
}

func TestCriticalPathEmpty(t *testing.T) {
	path, total := criticalPath(graph.New[*Task](), nil)
	require.Empty(t, path)
	require.Zero(t, total)
}

func TestCriticalPathSingleNode(t *testing.T) {
	g := graph.New[*Task]()
	g.AddNode("only", &Task{ID: "only", EstimatedTime: 2 * time.Second})

	path, total := criticalPath(g, []string{"only"})
	require.Equal(t, []string{"only"}, path)
	require.Equal(t, 2*time.Second, total)
}

func TestParallelGroupsWithoutConflicts(t *testing.T) {
	g := graph.New[*Task]()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(id, &Task{ID: id})
	}
	g.AddNode("merge", &Task{ID: "merge"})
	require.NoError(t, g.AddEdge("merge", "a"))
	require.NoError(t, g.AddEdge("merge", "b"))
	require.NoError(t, g.AddEdge("merge", "c"))

	groups := parallelGroups(g, nil)
	require.Len(t, groups, 2)
	require.Equal(t, []string{"a", "b", "c"}, groups[0].Tasks)
	require.Equal(t, []string{"merge"}, groups[1].Tasks)
}
