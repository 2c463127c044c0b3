// Package resource infers the resources each task needs and detects
// contention between tasks, independent of the dependency graph.
//
// Resource names are namespaced tags: a declared tool contributes a
// "tool:" tag and declared parameters and data slots contribute "param:"
// tags, so that identically-named entries from different namespaces do
// not collide.
package resource

import (
	"fmt"
	"sort"

	"github.com/gobwas/glob"
)

// Tag prefixes for the two inferred resource namespaces.
const (
	ToolTagPrefix  = "tool:"
	ParamTagPrefix = "param:"
)

// SystemResources are always considered available.
var SystemResources = []string{"cpu", "memory", "disk", "network"}

// exclusiveTools names the tool capabilities that require exclusive
// access: at most one task holding any of these may run at a time.
var exclusiveTools = map[string]struct{}{
	"file-write":           {},
	"database-write":       {},
	"process-execute":      {},
	"system-modify":        {},
	"configuration-update": {},
}

// Task is the analyzer's view of a single task: its identity, declared
// resource blocks, and the names that imply parameter resources.
type Task struct {
	ID       string
	Priority float64
	Tool     string
	Declared Declared
	Params   []string
	Inputs   []string
	Outputs  []string
}

// Declared holds a task's explicit resource declarations.
type Declared struct {
	Inputs    []string
	Outputs   []string
	Exclusive []string
	Shared    []string
}

// Requirements is the merged view of a task's declared and inferred
// resource needs.
type Requirements struct {
	Inputs    []string `json:"inputs"`
	Outputs   []string `json:"outputs"`
	Exclusive []string `json:"exclusive"`
	Shared    []string `json:"shared"`
}

// ConflictType classifies how two tasks contend.
type ConflictType string

const (
	// ConflictExclusive means two tasks both require the same exclusive
	// resource and must be serialized.
	ConflictExclusive ConflictType = "exclusive_conflict"

	// ConflictOutput means two tasks both produce the same output tag.
	ConflictOutput ConflictType = "output_conflict"
)

// Conflict records contention between two tasks over one resource.
// Conflicts are symmetric; each unordered pair is recorded once.
type Conflict struct {
	TaskA    string       `json:"task_a"`
	TaskB    string       `json:"task_b"`
	Resource string       `json:"resource"`
	Type     ConflictType `json:"type"`
}

// Involves reports whether both given task ids are party to the conflict.
func (c Conflict) Involves(a, b string) bool {
	return (c.TaskA == a && c.TaskB == b) || (c.TaskA == b && c.TaskB == a)
}

// Missing records a required resource that is not present in the
// available-resource set. Missing resources are informational and do not
// block resolution.
type Missing struct {
	TaskID   string `json:"task_id"`
	Resource string `json:"resource"`
}

// Context declares the resources and tools available to the task set.
// Availability entries may be glob patterns ("db/*" matches "db/users").
type Context struct {
	AvailableResources []string
	AvailableTools     []string
	ExcludeToolRes     bool // when set, declared tools contribute no resource tags
}

// Stats aggregates counts across all analyzed requirements.
type Stats struct {
	Inputs    int `json:"inputs"`
	Outputs   int `json:"outputs"`
	Exclusive int `json:"exclusive"`
	Shared    int `json:"shared"`
	Conflicts int `json:"conflicts"`
	Missing   int `json:"missing"`
}

// Analysis is the result of analyzing a task set.
type Analysis struct {
	Requirements map[string]Requirements `json:"requirements"`
	Conflicts    []Conflict              `json:"conflicts"`
	Missing      []Missing               `json:"missing"`
	Available    []string                `json:"available"`
	Stats        Stats                   `json:"stats"`
}

// Analyzer derives resource requirements and detects conflicts. The zero
// value is not usable; construct with NewAnalyzer.
type Analyzer struct{}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze extracts the requirements of every task, compares each task
// against all previously-processed tasks for conflicts, and checks every
// required input and exclusive resource against the available set.
func (a *Analyzer) Analyze(tasks []Task, ctx Context) *Analysis {
	analysis := &Analysis{
		Requirements: make(map[string]Requirements, len(tasks)),
		Available:    Available(ctx),
	}

	var processed []Task
	for _, task := range tasks {
		reqs := a.Extract(task, ctx.ExcludeToolRes)
		analysis.Requirements[task.ID] = reqs

		for _, name := range reqs.Inputs {
			if !IsAvailable(name, analysis.Available) {
				analysis.Missing = append(analysis.Missing, Missing{TaskID: task.ID, Resource: name})
			}
		}
		for _, name := range reqs.Exclusive {
			if !IsAvailable(name, analysis.Available) {
				analysis.Missing = append(analysis.Missing, Missing{TaskID: task.ID, Resource: name})
			}
		}

		for _, prior := range processed {
			priorReqs := analysis.Requirements[prior.ID]
			if shared, ok := firstShared(priorReqs.Exclusive, reqs.Exclusive); ok {
				analysis.Conflicts = append(analysis.Conflicts, Conflict{
					TaskA:    prior.ID,
					TaskB:    task.ID,
					Resource: shared,
					Type:     ConflictExclusive,
				})
			}
			if shared, ok := firstShared(priorReqs.Outputs, reqs.Outputs); ok {
				analysis.Conflicts = append(analysis.Conflicts, Conflict{
					TaskA:    prior.ID,
					TaskB:    task.ID,
					Resource: shared,
					Type:     ConflictOutput,
				})
			}
		}
		processed = append(processed, task)

		analysis.Stats.Inputs += len(reqs.Inputs)
		analysis.Stats.Outputs += len(reqs.Outputs)
		analysis.Stats.Exclusive += len(reqs.Exclusive)
		analysis.Stats.Shared += len(reqs.Shared)
	}

	analysis.Stats.Conflicts = len(analysis.Conflicts)
	analysis.Stats.Missing = len(analysis.Missing)
	return analysis
}

// Extract merges a task's explicit resource declarations with inferred
// requirements: a declared tool contributes a tool-tagged input (and an
// exclusive entry when the tool is on the exclusive allowlist), and each
// declared parameter and data slot contributes a param-tagged entry.
func (a *Analyzer) Extract(task Task, excludeTool bool) Requirements {
	reqs := Requirements{
		Inputs:    append([]string(nil), task.Declared.Inputs...),
		Outputs:   append([]string(nil), task.Declared.Outputs...),
		Exclusive: append([]string(nil), task.Declared.Exclusive...),
		Shared:    append([]string(nil), task.Declared.Shared...),
	}

	if task.Tool != "" && !excludeTool {
		tag := ToolTagPrefix + task.Tool
		reqs.Inputs = appendUnique(reqs.Inputs, tag)
		if _, exclusive := exclusiveTools[task.Tool]; exclusive {
			reqs.Exclusive = appendUnique(reqs.Exclusive, tag)
		}
	}
	for _, name := range task.Params {
		reqs.Inputs = appendUnique(reqs.Inputs, ParamTagPrefix+name)
	}
	for _, name := range task.Inputs {
		reqs.Inputs = appendUnique(reqs.Inputs, ParamTagPrefix+name)
	}
	for _, name := range task.Outputs {
		reqs.Outputs = appendUnique(reqs.Outputs, ParamTagPrefix+name)
	}
	return reqs
}

// Available computes the full available-resource set for a context:
// context-declared resources, the always-available system resources, and
// a tool tag per context-declared tool. The result is sorted.
func Available(ctx Context) []string {
	available := make([]string, 0, len(ctx.AvailableResources)+len(ctx.AvailableTools)+len(SystemResources))
	available = append(available, ctx.AvailableResources...)
	available = append(available, SystemResources...)
	for _, tool := range ctx.AvailableTools {
		available = append(available, ToolTagPrefix+tool)
	}
	sort.Strings(available)
	return available
}

// IsAvailable reports whether the named resource matches any entry of
// the available set. Entries are treated as glob patterns; an entry that
// fails to compile falls back to exact string comparison.
func IsAvailable(name string, available []string) bool {
	for _, entry := range available {
		if entry == name {
			return true
		}
		if pattern, err := glob.Compile(entry); err == nil && pattern.Match(name) {
			return true
		}
	}
	return false
}

// ResolutionStrategy names a suggested remediation for a conflict.
type ResolutionStrategy string

const (
	// StrategySerialize resolves an exclusive conflict by adding a
	// dependency edge between the two tasks.
	StrategySerialize ResolutionStrategy = "serialize"

	// StrategyRename resolves an output collision by renaming one of the
	// colliding outputs.
	StrategyRename ResolutionStrategy = "rename"
)

// Resolution pairs a conflict with its suggested remediation.
type Resolution struct {
	Conflict    Conflict           `json:"conflict"`
	Strategy    ResolutionStrategy `json:"strategy"`
	Description string             `json:"description"`
}

// ConflictResolutions maps each recorded conflict to a remediation:
// serialize execution for exclusive conflicts, rename the colliding
// output for output conflicts.
func (a *Analysis) ConflictResolutions() []Resolution {
	resolutions := make([]Resolution, 0, len(a.Conflicts))
	for _, conflict := range a.Conflicts {
		switch conflict.Type {
		case ConflictOutput:
			resolutions = append(resolutions, Resolution{
				Conflict: conflict,
				Strategy: StrategyRename,
				Description: fmt.Sprintf("rename output %q in task %s or %s to avoid the collision",
					conflict.Resource, conflict.TaskA, conflict.TaskB),
			})
		default:
			resolutions = append(resolutions, Resolution{
				Conflict: conflict,
				Strategy: StrategySerialize,
				Description: fmt.Sprintf("add a dependency edge between %s and %s so they never hold %q concurrently",
					conflict.TaskA, conflict.TaskB, conflict.Resource),
			})
		}
	}
	return resolutions
}

func firstShared(a, b []string) (string, bool) {
	set := make(map[string]struct{}, len(a))
	for _, name := range a {
		set[name] = struct{}{}
	}
	for _, name := range b {
		if _, ok := set[name]; ok {
			return name, true
		}
	}
	return "", false
}

func appendUnique(list []string, name string) []string {
	for _, existing := range list {
		if existing == name {
			return list
		}
	}
	return append(list, name)
}
