package weft

import (
	"time"

	"github.com/deepnoodle-ai/weft/graph"
	"github.com/deepnoodle-ai/weft/resource"
)

const (
	// defaultTaskDuration is assumed when no other heuristic applies.
	defaultTaskDuration = time.Second

	// defaultToolDuration is assumed for tools absent from the table.
	defaultToolDuration = 2 * time.Second

	// subtaskDuration is the assumed cost per subtask.
	subtaskDuration = 500 * time.Millisecond

	// Description-based estimation scales with length, with a floor.
	perDescriptionChar     = 10 * time.Millisecond
	minDescriptionDuration = 500 * time.Millisecond
)

// toolDurations maps known tool capabilities to assumed durations.
var toolDurations = map[string]time.Duration{
	"file-read":            500 * time.Millisecond,
	"file-write":           time.Second,
	"web-search":           3 * time.Second,
	"database-read":        time.Second,
	"database-write":       2 * time.Second,
	"process-execute":      5 * time.Second,
	"system-modify":        3 * time.Second,
	"configuration-update": time.Second,
}

// EstimateTaskTime estimates a task's duration. An explicit estimate
// wins; otherwise the declared tool's table entry, then subtask count,
// then description length (with a floor), then the fixed default.
func EstimateTaskTime(task *Task) time.Duration {
	if task.EstimatedTime > 0 {
		return task.EstimatedTime
	}
	if task.Tool != "" {
		if duration, ok := toolDurations[task.Tool]; ok {
			return duration
		}
		return defaultToolDuration
	}
	if len(task.Subtasks) > 0 {
		return time.Duration(len(task.Subtasks)) * subtaskDuration
	}
	if task.Description != "" {
		duration := time.Duration(len(task.Description)) * perDescriptionChar
		if duration < minDescriptionDuration {
			duration = minDescriptionDuration
		}
		return duration
	}
	return defaultTaskDuration
}

// criticalPath computes the longest cumulative-duration chain through
// the dependency DAG by dynamic programming over a topological order.
// The returned duration is the chain's total: the completion lower
// bound assuming unlimited parallelism.
func criticalPath(g *graph.Graph[*Task], order []string) ([]string, time.Duration) {
	if len(order) == 0 {
		return nil, 0
	}

	finish := make(map[string]time.Duration, len(order))
	predecessor := make(map[string]string, len(order))

	for _, id := range order {
		node, ok := g.Get(id)
		if !ok {
			continue
		}
		var longest time.Duration
		for _, dep := range node.Dependencies() {
			if finish[dep] > longest {
				longest = finish[dep]
				predecessor[id] = dep
			}
		}
		finish[id] = longest + EstimateTaskTime(node.Data())
	}

	var end string
	var total time.Duration
	for _, id := range order {
		if finish[id] > total {
			total = finish[id]
			end = id
		}
	}

	var path []string
	for id := end; id != ""; {
		path = append(path, id)
		id = predecessor[id]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, total
}

// parallelGroups converts execution levels into conflict-free groups:
// within a level, any task that conflicts with an already-placed member
// is pushed into a later group, and the conflict is recorded on the
// group it was excluded from.
func parallelGroups(g *graph.Graph[*Task], analysis *resource.Analysis) []ParallelGroup {
	var groups []ParallelGroup
	for _, level := range graph.Levels(g) {
		pending := level
		for len(pending) > 0 {
			group := ParallelGroup{}
			var deferred []string
			for _, id := range pending {
				if conflict, ok := conflictsWithAny(analysis, id, group.Tasks); ok {
					group.Excluded = append(group.Excluded, conflict)
					deferred = append(deferred, id)
					continue
				}
				if dependsOnAny(g, id, group.Tasks) {
					deferred = append(deferred, id)
					continue
				}
				group.Tasks = append(group.Tasks, id)
			}
			groups = append(groups, group)
			pending = deferred
		}
	}
	return groups
}

func conflictsWithAny(analysis *resource.Analysis, id string, members []string) (resource.Conflict, bool) {
	if analysis == nil {
		return resource.Conflict{}, false
	}
	for _, member := range members {
		for _, conflict := range analysis.Conflicts {
			if conflict.Involves(id, member) {
				return conflict, true
			}
		}
	}
	return resource.Conflict{}, false
}

// dependsOnAny guards against transitive ordering relations sneaking
// into one group. Levels already respect direct edges, so this only
// fires for reachability introduced by level splitting.
func dependsOnAny(g *graph.Graph[*Task], id string, members []string) bool {
	for _, member := range members {
		if HasTransitiveDependency(g, id, member, 0) || HasTransitiveDependency(g, member, id, 0) {
			return true
		}
	}
	return false
}
