// Package config loads execution plans from YAML and JSON files and
// converts them into resolver inputs.
package config

import (
	"fmt"
	"time"

	"github.com/deepnoodle-ai/weft"
)

// Plan is the file representation of one resolution request: a named
// set of tasks plus the execution environment they will run in.
type Plan struct {
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Environment Environment  `json:"environment,omitempty" yaml:"environment,omitempty"`
	Semantic    bool         `json:"semantic,omitempty" yaml:"semantic,omitempty"`
	Tasks       []TaskConfig `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// Environment declares what the execution environment provides.
// Resource entries may be glob patterns.
type Environment struct {
	Resources            []string `json:"resources,omitempty" yaml:"resources,omitempty"`
	Tools                []string `json:"tools,omitempty" yaml:"tools,omitempty"`
	ExcludeToolResources bool     `json:"exclude_tool_resources,omitempty" yaml:"exclude_tool_resources,omitempty"`
}

// Resources mirrors weft.TaskResources for file parsing.
type Resources struct {
	Inputs    []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs   []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Exclusive []string `json:"exclusive,omitempty" yaml:"exclusive,omitempty"`
	Shared    []string `json:"shared,omitempty" yaml:"shared,omitempty"`
}

// TaskConfig is the file representation of one task. It differs from
// weft.Task only where file-friendliness requires it: the estimated
// time is a duration string like "90s" or "2m".
type TaskConfig struct {
	ID            string            `json:"id,omitempty" yaml:"id,omitempty"`
	Description   string            `json:"description,omitempty" yaml:"description,omitempty"`
	Priority      float64           `json:"priority,omitempty" yaml:"priority,omitempty"`
	DependsOn     []string          `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Resources     *Resources        `json:"resources,omitempty" yaml:"resources,omitempty"`
	Inputs        map[string]string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs       map[string]string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Produces      []string          `json:"produces,omitempty" yaml:"produces,omitempty"`
	Tool          string            `json:"tool,omitempty" yaml:"tool,omitempty"`
	Params        map[string]any    `json:"params,omitempty" yaml:"params,omitempty"`
	EstimatedTime string            `json:"estimated_time,omitempty" yaml:"estimated_time,omitempty"`
}

// Build converts the task configuration into a resolver task.
func (c *TaskConfig) Build() (*weft.Task, error) {
	task := &weft.Task{
		ID:          c.ID,
		Description: c.Description,
		Priority:    c.Priority,
		DependsOn:   c.DependsOn,
		Inputs:      c.Inputs,
		Outputs:     c.Outputs,
		Produces:    c.Produces,
		Tool:        c.Tool,
		Params:      c.Params,
	}
	if c.Resources != nil {
		task.Resources = &weft.TaskResources{
			Inputs:    c.Resources.Inputs,
			Outputs:   c.Resources.Outputs,
			Exclusive: c.Resources.Exclusive,
			Shared:    c.Resources.Shared,
		}
	}
	if c.EstimatedTime != "" {
		duration, err := time.ParseDuration(c.EstimatedTime)
		if err != nil {
			return nil, fmt.Errorf("task %q: invalid estimated_time: %w", c.ID, err)
		}
		task.EstimatedTime = duration
	}
	return task, nil
}

// BuildTasks converts all of the plan's tasks.
func (p *Plan) BuildTasks() ([]*weft.Task, error) {
	tasks := make([]*weft.Task, 0, len(p.Tasks))
	for i := range p.Tasks {
		task, err := p.Tasks[i].Build()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// ResolveOptions derives the per-call resolver options from the plan.
func (p *Plan) ResolveOptions() weft.ResolveOptions {
	return weft.ResolveOptions{
		SemanticAnalysis:     p.Semantic,
		AvailableResources:   p.Environment.Resources,
		AvailableTools:       p.Environment.Tools,
		ExcludeToolResources: p.Environment.ExcludeToolResources,
	}
}

// Validate checks the plan for problems that file parsing cannot catch:
// duplicate task ids and dependencies on ids defined nowhere in the
// plan. The resolver tolerates the latter, but a plan file naming a
// nonexistent task is almost certainly a typo worth surfacing.
func (p *Plan) Validate() error {
	seen := make(map[string]struct{}, len(p.Tasks))
	for _, task := range p.Tasks {
		if task.ID == "" {
			continue
		}
		if _, ok := seen[task.ID]; ok {
			return fmt.Errorf("duplicate task id %q", task.ID)
		}
		seen[task.ID] = struct{}{}
	}
	for _, task := range p.Tasks {
		for _, dep := range task.DependsOn {
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("task %q depends on unknown task %q", task.ID, dep)
			}
		}
	}
	return nil
}
