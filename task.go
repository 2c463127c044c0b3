package weft

import (
	"time"
)

// DefaultPriority is assigned to tasks that do not declare a priority.
// Higher priorities are scheduled earlier among simultaneously-ready
// tasks.
const DefaultPriority = 5

// TaskResources holds a task's explicit resource declarations. Each
// entry is a resource name; inferred tool and parameter resources are
// added on top of these during analysis.
type TaskResources struct {
	Inputs    []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs   []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Exclusive []string `json:"exclusive,omitempty" yaml:"exclusive,omitempty"`
	Shared    []string `json:"shared,omitempty" yaml:"shared,omitempty"`
}

// Task describes one unit of work handed to the resolver. Only ID is
// required, and even it is optional: tasks without an id are assigned a
// generated one during normalization.
type Task struct {
	// ID uniquely identifies the task within one resolution call.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Description is free-form text. ${name} placeholders inside it are
	// treated as data inputs for data-flow dependency inference.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Priority orders simultaneously-ready tasks; higher runs earlier.
	// Zero means unset and defaults to DefaultPriority.
	Priority float64 `json:"priority,omitempty" yaml:"priority,omitempty"`

	// DependsOn lists the ids of tasks that must complete first.
	// Entries naming unknown tasks are silently dropped.
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	// Resources are the task's explicit resource declarations.
	Resources *TaskResources `json:"resources,omitempty" yaml:"resources,omitempty"`

	// Inputs and Outputs are named data slots mapping name to a type
	// hint. The names participate in data-flow and resource inference.
	Inputs  map[string]string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs map[string]string `json:"outputs,omitempty" yaml:"outputs,omitempty"`

	// Produces lists additional data outputs by name.
	Produces []string `json:"produces,omitempty" yaml:"produces,omitempty"`

	// Tool names the external capability the task uses, if any.
	Tool string `json:"tool,omitempty" yaml:"tool,omitempty"`

	// Params maps parameter names to values; the names are treated as
	// implicit data inputs.
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`

	// EstimatedTime overrides all duration heuristics when positive.
	EstimatedTime time.Duration `json:"estimated_time,omitempty" yaml:"-"`

	// Subtasks only influence time estimation.
	Subtasks []*Task `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
}

// EffectivePriority returns the task's priority, substituting the
// default for unset values.
func (t *Task) EffectivePriority() float64 {
	if t.Priority == 0 {
		return DefaultPriority
	}
	return t.Priority
}

// normalize filters out nil entries and assigns ids to tasks that lack
// one. The input slice is not modified.
func (r *Resolver) normalize(tasks []*Task) []*Task {
	normalized := make([]*Task, 0, len(tasks))
	for _, task := range tasks {
		if task == nil {
			continue
		}
		if task.ID == "" {
			copied := *task
			copied.ID = r.ids.NewID()
			task = &copied
		}
		normalized = append(normalized, task)
	}
	return normalized
}
