package weft

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/deepnoodle-ai/weft/graph"
	"github.com/deepnoodle-ai/weft/resource"
	"github.com/deepnoodle-ai/weft/retry"
)

// placeholderPattern matches ${name} references inside task descriptions.
var placeholderPattern = regexp.MustCompile(`\$\{([a-zA-Z0-9_.:/-]+)\}`)

// BuildGraph constructs the dependency graph for an already-normalized
// task list, combining explicit, resource-based, data-flow, tool-based,
// and (opt-in) semantic dependency inference. A pair of tasks linked by
// more than one inference source collapses to a single edge.
func (r *Resolver) BuildGraph(ctx context.Context, tasks []*Task, opts ResolveOptions) (*graph.Graph[*Task], *resource.Analysis, error) {
	g := graph.New[*Task]()
	for _, task := range tasks {
		g.AddNode(task.ID, task)
	}

	if err := r.addExplicitEdges(g, tasks); err != nil {
		return nil, nil, err
	}

	analysis := r.analyzer.Analyze(resourceTasks(tasks), resource.Context{
		AvailableResources: opts.AvailableResources,
		AvailableTools:     opts.AvailableTools,
		ExcludeToolRes:     opts.ExcludeToolResources,
	})
	if err := r.addResourceEdges(g, tasks, analysis); err != nil {
		return nil, nil, err
	}
	if err := r.addDataFlowEdges(g, tasks); err != nil {
		return nil, nil, err
	}
	if err := r.addToolEdges(ctx, g, tasks); err != nil {
		return nil, nil, err
	}
	if opts.SemanticAnalysis {
		if err := r.addSemanticEdges(ctx, g, tasks); err != nil {
			return nil, nil, err
		}
	}
	return g, analysis, nil
}

// addExplicitEdges wires each task's declared dependency list. Entries
// naming tasks that are not part of this resolution are dropped.
func (r *Resolver) addExplicitEdges(g *graph.Graph[*Task], tasks []*Task) error {
	for _, task := range tasks {
		for _, dep := range task.DependsOn {
			if dep == task.ID || !g.HasNode(dep) {
				if !g.HasNode(dep) {
					r.logger.Debug("dropping dependency on unknown task",
						"task_id", task.ID, "dependency", dep)
				}
				continue
			}
			if err := g.AddEdge(task.ID, dep); err != nil {
				return fmt.Errorf("explicit edge: %w", err)
			}
		}
	}
	return nil
}

// addResourceEdges derives edges from the resource analysis: a task
// depends on any task whose analyzed outputs intersect its inputs, and
// each exclusive conflict is serialized by making the lower-priority
// task depend on the higher-priority one (first-seen wins on ties).
func (r *Resolver) addResourceEdges(g *graph.Graph[*Task], tasks []*Task, analysis *resource.Analysis) error {
	for _, task := range tasks {
		reqs := analysis.Requirements[task.ID]
		for _, other := range tasks {
			if other.ID == task.ID {
				continue
			}
			otherReqs := analysis.Requirements[other.ID]
			if intersects(reqs.Inputs, otherReqs.Outputs) {
				if err := g.AddEdge(task.ID, other.ID); err != nil {
					return fmt.Errorf("resource edge: %w", err)
				}
			}
		}
	}

	for _, conflict := range analysis.Conflicts {
		if conflict.Type != resource.ConflictExclusive {
			continue
		}
		firstNode, ok := g.Get(conflict.TaskA)
		if !ok {
			continue
		}
		secondNode, ok := g.Get(conflict.TaskB)
		if !ok {
			continue
		}
		// TaskA was processed first; it wins ties.
		first, second := firstNode.Data(), secondNode.Data()
		loser, winner := second, first
		if second.EffectivePriority() > first.EffectivePriority() {
			loser, winner = first, second
		}
		r.logger.Debug("serializing exclusive resource conflict",
			"resource", conflict.Resource, "before", winner.ID, "after", loser.ID)
		if err := g.AddEdge(loser.ID, winner.ID); err != nil {
			return fmt.Errorf("exclusivity edge: %w", err)
		}
	}
	return nil
}

// addDataFlowEdges derives edges from data slots: a task depends on any
// task whose data outputs intersect its data inputs.
func (r *Resolver) addDataFlowEdges(g *graph.Graph[*Task], tasks []*Task) error {
	outputs := make(map[string][]string, len(tasks))
	for _, task := range tasks {
		outputs[task.ID] = ExtractDataOutputs(task)
	}
	for _, task := range tasks {
		inputs := ExtractDataInputs(task)
		if len(inputs) == 0 {
			continue
		}
		for _, other := range tasks {
			if other.ID == task.ID {
				continue
			}
			if intersects(inputs, outputs[other.ID]) {
				if err := g.AddEdge(task.ID, other.ID); err != nil {
					return fmt.Errorf("data-flow edge: %w", err)
				}
			}
		}
	}
	return nil
}

// addToolEdges consults the tool registry for each task's declared tool
// and makes the task depend on any other task that provides one of the
// tool's prerequisite capabilities. Registry failures are logged and
// skipped.
func (r *Resolver) addToolEdges(ctx context.Context, g *graph.Graph[*Task], tasks []*Task) error {
	if r.tools == nil {
		return nil
	}
	for _, task := range tasks {
		if task.Tool == "" {
			continue
		}
		var info *ToolInfo
		err := retry.Do(ctx, func() error {
			var lookupErr error
			info, lookupErr = r.tools.GetTool(ctx, task.Tool)
			return lookupErr
		})
		if err != nil {
			r.logger.Warn("tool registry lookup failed, skipping tool-based inference",
				"task_id", task.ID, "tool", task.Tool, "error", err)
			continue
		}
		if info == nil || len(info.Dependencies) == 0 {
			continue
		}
		prerequisites := make(map[string]struct{}, len(info.Dependencies))
		for _, name := range info.Dependencies {
			prerequisites[name] = struct{}{}
		}
		for _, other := range tasks {
			if other.ID == task.ID || other.Tool == "" {
				continue
			}
			if _, ok := prerequisites[other.Tool]; ok {
				if err := g.AddEdge(task.ID, other.ID); err != nil {
					return fmt.Errorf("tool edge: %w", err)
				}
			}
		}
	}
	return nil
}

// ExtractDataInputs returns the sorted set of data names a task
// consumes: ${name} placeholders in its description plus its declared
// param and input slot names.
func ExtractDataInputs(task *Task) []string {
	set := make(map[string]struct{})
	for _, match := range placeholderPattern.FindAllStringSubmatch(task.Description, -1) {
		set[match[1]] = struct{}{}
	}
	for name := range task.Params {
		set[name] = struct{}{}
	}
	for name := range task.Inputs {
		set[name] = struct{}{}
	}
	return sortedSet(set)
}

// ExtractDataOutputs returns the sorted set of data names a task
// produces: its declared output slot names, its produces list, and an
// implicit output named after the task's own id.
func ExtractDataOutputs(task *Task) []string {
	set := make(map[string]struct{})
	for name := range task.Outputs {
		set[name] = struct{}{}
	}
	for _, name := range task.Produces {
		set[name] = struct{}{}
	}
	if task.ID != "" {
		set[task.ID] = struct{}{}
	}
	return sortedSet(set)
}

// HasTransitiveDependency reports whether from reaches to through
// dependency edges, searching at most maxDepth hops. A maxDepth of zero
// or less means unbounded.
func HasTransitiveDependency(g *graph.Graph[*Task], from, to string, maxDepth int) bool {
	visited := make(map[string]bool)
	var search func(id string, depth int) bool
	search = func(id string, depth int) bool {
		if id == to {
			return true
		}
		if maxDepth > 0 && depth >= maxDepth {
			return false
		}
		visited[id] = true
		for _, dep := range g.Dependencies(id) {
			if !visited[dep] && search(dep, depth+1) {
				return true
			}
		}
		return false
	}
	if from == to {
		return false
	}
	return search(from, 0)
}

// Complexity summarizes the graph's edge density: zero for an empty
// graph, and strictly increasing in edge count for a fixed node count.
func Complexity(g *graph.Graph[*Task]) float64 {
	if g.NodeCount() == 0 {
		return 0
	}
	return float64(g.EdgeCount()) / float64(g.NodeCount())
}

// CountDependencies sums the dependency-set sizes across all nodes.
func CountDependencies(g *graph.Graph[*Task]) int {
	total := 0
	for _, node := range g.Nodes() {
		total += len(node.Dependencies())
	}
	return total
}

func resourceTasks(tasks []*Task) []resource.Task {
	converted := make([]resource.Task, 0, len(tasks))
	for _, task := range tasks {
		rt := resource.Task{
			ID:       task.ID,
			Priority: task.EffectivePriority(),
			Tool:     task.Tool,
			Params:   sortedKeysOf(task.Params),
			Inputs:   sortedStringKeys(task.Inputs),
			Outputs:  sortedStringKeys(task.Outputs),
		}
		if task.Resources != nil {
			rt.Declared = resource.Declared{
				Inputs:    task.Resources.Inputs,
				Outputs:   task.Resources.Outputs,
				Exclusive: task.Resources.Exclusive,
				Shared:    task.Resources.Shared,
			}
		}
		converted = append(converted, rt)
	}
	return converted
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, name := range a {
		set[name] = struct{}{}
	}
	for _, name := range b {
		if _, ok := set[name]; ok {
			return true
		}
	}
	return false
}

func sortedSet(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
