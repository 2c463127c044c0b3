package weft

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/deepnoodle-ai/weft/graph"
	"github.com/deepnoodle-ai/weft/retry"
)

// bracketedArrayPattern finds the first [...] substring in a free-form
// response. The oracle is asked for a JSON array but is not trusted to
// answer with one and nothing else.
var bracketedArrayPattern = regexp.MustCompile(`\[[^\[\]]*\]`)

// addSemanticEdges asks the prompt client, for each task after the
// first, which of the other tasks' descriptions are prerequisites, and
// adds the corresponding edges. Client failures and unparseable replies
// contribute no edges.
func (r *Resolver) addSemanticEdges(ctx context.Context, g *graph.Graph[*Task], tasks []*Task) error {
	if r.prompter == nil {
		r.logger.Debug("semantic analysis requested but no prompt client configured")
		return nil
	}

	known := make([]string, 0, len(tasks))
	for _, task := range tasks {
		known = append(known, task.ID)
	}

	for i, task := range tasks {
		if i == 0 {
			continue
		}
		prompt := buildSemanticPrompt(task, tasks)
		var content string
		err := retry.Do(ctx, func() error {
			var genErr error
			content, genErr = r.prompter.Generate(ctx, prompt)
			return genErr
		})
		if err != nil {
			r.logger.Warn("semantic dependency query failed, assuming no dependencies",
				"task_id", task.ID, "error", err)
			continue
		}
		for _, dep := range ParseSemanticDependencies(content, known) {
			if dep == task.ID {
				continue
			}
			if err := g.AddEdge(task.ID, dep); err != nil {
				return fmt.Errorf("semantic edge: %w", err)
			}
		}
	}
	return nil
}

// buildSemanticPrompt constructs the prerequisite query for one task.
// The literal `Target Task: "<description>"` line is load-bearing: test
// harnesses and mocks branch on it to identify the task under analysis.
func buildSemanticPrompt(task *Task, tasks []*Task) string {
	var b strings.Builder
	b.WriteString("You are analyzing task scheduling dependencies.\n\n")
	fmt.Fprintf(&b, "Target Task: %q\n\n", task.Description)
	b.WriteString("Candidate prerequisite tasks:\n")
	for _, other := range tasks {
		if other.ID == task.ID {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", other.ID, other.Description)
	}
	b.WriteString("\nWhich candidate tasks must complete before the target task can start?\n")
	b.WriteString("Respond with a JSON array of task ids, for example [\"task-1\", \"task-2\"].\n")
	b.WriteString("Respond with [] if the target task has no prerequisites.\n")
	return b.String()
}

// ParseSemanticDependencies extracts task ids from a free-form oracle
// response: the first bracketed array substring is parsed as JSON and
// filtered to the known id set. Anything unparseable yields an empty
// result; this function never fails.
func ParseSemanticDependencies(content string, knownIDs []string) []string {
	match := bracketedArrayPattern.FindString(content)
	if match == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(match), &ids); err != nil {
		return nil
	}

	known := make(map[string]struct{}, len(knownIDs))
	for _, id := range knownIDs {
		known[id] = struct{}{}
	}
	var filtered []string
	for _, id := range ids {
		if _, ok := known[id]; ok {
			filtered = append(filtered, id)
		}
	}
	return filtered
}
