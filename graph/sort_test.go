package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSort(t *testing.T) {
	tests := []struct {
		name      string
		nodes     []string
		edges     [][2]string
		wantOrder []string
		wantErr   bool
	}{
		{
			name:      "empty graph",
			nodes:     nil,
			wantOrder: []string{},
		},
		{
			name:      "linear chain",
			nodes:     []string{"task1", "task2", "task3"},
			edges:     [][2]string{{"task2", "task1"}, {"task3", "task2"}},
			wantOrder: []string{"task1", "task2", "task3"},
		},
		{
			name:      "diamond",
			nodes:     []string{"a", "b", "c", "d"},
			edges:     [][2]string{{"b", "a"}, {"c", "a"}, {"d", "b"}, {"d", "c"}},
			wantOrder: []string{"a", "b", "c", "d"},
		},
		{
			name:    "two node cycle",
			nodes:   []string{"a", "b"},
			edges:   [][2]string{{"a", "b"}, {"b", "a"}},
			wantErr: true,
		},
		{
			name:    "cycle with acyclic prefix",
			nodes:   []string{"a", "b", "c"},
			edges:   [][2]string{{"b", "a"}, {"b", "c"}, {"c", "b"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, tt.nodes, tt.edges)
			order, err := Sort(g)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrCyclic)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantOrder, order)
			require.True(t, IsValidOrder(g, order))
		})
	}
}

func TestSortFunc(t *testing.T) {
	g := buildGraph(t, []string{"low", "mid", "high"}, nil)

	rank := map[string]int{"high": 0, "mid": 1, "low": 2}
	order, err := SortFunc(g, func(a, b string) bool { return rank[a] < rank[b] })
	require.NoError(t, err)
	require.Equal(t, []string{"high", "mid", "low"}, order)
}

func TestSortDFS(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c", "d"},
		[][2]string{{"b", "a"}, {"c", "a"}, {"d", "b"}, {"d", "c"}},
	)
	order := SortDFS(g)
	require.Len(t, order, 4)
	require.True(t, IsValidOrder(g, order))
}

func TestReverseSort(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c"},
		[][2]string{{"b", "a"}, {"c", "b"}},
	)
	order, err := ReverseSort(g)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b", "a"}, order)
}

func TestLevels(t *testing.T) {
	// a and d are independent roots; b and c both wait on a; e waits on
	// both b and c.
	g := buildGraph(t,
		[]string{"a", "b", "c", "d", "e"},
		[][2]string{{"b", "a"}, {"c", "a"}, {"e", "b"}, {"e", "c"}},
	)
	levels := Levels(g)
	require.Equal(t, [][]string{
		{"a", "d"},
		{"b", "c"},
		{"e"},
	}, levels)
}

func TestLevelsStopsOnCycle(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c"},
		[][2]string{{"b", "a"}, {"b", "c"}, {"c", "b"}},
	)
	levels := Levels(g)
	require.Equal(t, [][]string{{"a"}}, levels)
}

func TestIsValidOrder(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c"},
		[][2]string{{"b", "a"}, {"c", "b"}},
	)
	require.True(t, IsValidOrder(g, []string{"a", "b", "c"}))
	require.False(t, IsValidOrder(g, []string{"b", "a", "c"}))
	require.False(t, IsValidOrder(g, []string{"b", "c"}))
}

func TestOrderings(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c"},
		[][2]string{{"c", "a"}, {"c", "b"}},
	)

	// a and b may appear in either order; c is always last.
	orderings := AllOrderings(g, 0)
	require.Len(t, orderings, 2)
	for _, ordering := range orderings {
		require.True(t, IsValidOrder(g, ordering))
		require.Equal(t, "c", ordering[2])
	}

	// Early termination through the max bound.
	capped := AllOrderings(g, 1)
	require.Len(t, capped, 1)
}
