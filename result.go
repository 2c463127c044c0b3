package weft

import (
	"time"

	"github.com/deepnoodle-ai/weft/graph"
	"github.com/deepnoodle-ai/weft/resource"
)

// ParallelGroup is a set of tasks that may execute concurrently: no
// member depends on another, directly or transitively, and no two
// members contend for the same exclusive resource or output.
type ParallelGroup struct {
	// Tasks are the member task ids, in scheduling order.
	Tasks []string `json:"tasks"`

	// Excluded lists the conflicts that forced tasks out of this group
	// into a later one, if any.
	Excluded []resource.Conflict `json:"excluded,omitempty"`
}

// Result is the outcome of one resolution call. Failures are always
// represented here rather than raised: when Success is false, Error
// describes the problem and the remaining fields may be partially
// populated.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// ExecutionOrder is a valid topological order of the dependency
	// graph, secondarily ordered by priority and resource exclusivity.
	ExecutionOrder []string `json:"execution_order"`

	// Graph is the dependency graph that was built for the task set.
	Graph *graph.Graph[*Task] `json:"-"`

	// ParallelGroups are the execution levels, split so that no group
	// contains a conflicting pair.
	ParallelGroups []ParallelGroup `json:"parallel_groups,omitempty"`

	// Resources is the resource analyzer's output, including conflicts.
	Resources *resource.Analysis `json:"resources,omitempty"`

	// CriticalPath is the longest time-weighted dependency chain.
	CriticalPath []string `json:"critical_path,omitempty"`

	// EstimatedTime is the critical path's total duration: the
	// completion lower bound under unlimited parallelism.
	EstimatedTime time.Duration `json:"estimated_time,omitempty"`

	// Complexity is a scalar summary of the graph's edge density.
	Complexity float64 `json:"complexity,omitempty"`
}

func failure(err string) *Result {
	return &Result{Success: false, Error: err}
}
