package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/deepnoodle-ai/weft"
	"github.com/deepnoodle-ai/weft/internal/tablewriter"
	"github.com/fatih/color"
)

var (
	// Color scheme for plan output
	headerStyle  = color.New(color.FgCyan, color.Bold)
	successStyle = color.New(color.FgGreen, color.Bold)
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgYellow, color.Bold)
	timeStyle    = color.New(color.FgWhite, color.Faint)
	mutedStyle   = color.New(color.FgHiBlack)
)

const (
	bullet    = "•"
	arrow     = "→"
	checkmark = "✓"
	xmark     = "✗"
)

// renderResult formats a resolution result as human-readable text. The
// same rendering feeds the plan command and watch-mode diffs.
func renderResult(planName string, result *weft.Result) string {
	var b strings.Builder

	title := "Execution Plan"
	if planName != "" {
		title = fmt.Sprintf("Execution Plan: %s", planName)
	}
	fmt.Fprintln(&b, headerStyle.Sprint(title))
	fmt.Fprintln(&b)

	if !result.Success {
		fmt.Fprintf(&b, "%s %s\n", errorStyle.Sprint(xmark), result.Error)
		return b.String()
	}

	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"#", "TASK", "DEPENDS ON", "ESTIMATE"})
	for i, id := range result.ExecutionOrder {
		var deps []string
		var estimate time.Duration
		if node, ok := result.Graph.Get(id); ok {
			deps = node.Dependencies()
			estimate = weft.EstimateTaskTime(node.Data())
		}
		dependsOn := strings.Join(deps, ", ")
		if dependsOn == "" {
			dependsOn = mutedStyle.Sprint("-")
		}
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			id,
			dependsOn,
			timeStyle.Sprint(estimate.String()),
		})
	}
	table.Render()

	fmt.Fprintln(&b)
	for i, group := range result.ParallelGroups {
		fmt.Fprintf(&b, "%s group %d: %s\n",
			bullet, i+1, strings.Join(group.Tasks, ", "))
	}
	if len(result.CriticalPath) > 0 {
		fmt.Fprintf(&b, "%s critical path: %s (%s)\n",
			bullet,
			strings.Join(result.CriticalPath, fmt.Sprintf(" %s ", arrow)),
			result.EstimatedTime)
	}
	fmt.Fprintf(&b, "%s complexity: %.2f\n", bullet, result.Complexity)

	if result.Resources != nil {
		for _, conflict := range result.Resources.Conflicts {
			fmt.Fprintf(&b, "%s %s and %s contend for %s (%s)\n",
				warningStyle.Sprint("!"),
				conflict.TaskA, conflict.TaskB, conflict.Resource, conflict.Type)
		}
		for _, missing := range result.Resources.Missing {
			fmt.Fprintf(&b, "%s %s requires unavailable resource %s\n",
				warningStyle.Sprint("!"), missing.TaskID, missing.Resource)
		}
	}
	return b.String()
}
