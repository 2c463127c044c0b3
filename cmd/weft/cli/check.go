package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/weft/graph"
	"github.com/deepnoodle-ai/wonton/cli"
)

func registerCheckCommand(app *cli.App) {
	app.Command("check").
		Description("Validate a plan file without resolving it: report cycles, conflicts, and missing resources").
		Args("file").
		Run(func(ctx *cli.Context) error {
			parseGlobalFlags(ctx)
			goCtx := context.Background()

			plan, err := loadPlan(ctx)
			if err != nil {
				return err
			}
			tasks, err := plan.BuildTasks()
			if err != nil {
				return cli.Errorf("%v", err)
			}
			resolver, err := buildResolver(goCtx, plan)
			if err != nil {
				return cli.Errorf("%v", err)
			}

			g, analysis, err := resolver.BuildGraph(goCtx, tasks, plan.ResolveOptions())
			if err != nil {
				return cli.Errorf("failed to build dependency graph: %v", err)
			}

			fmt.Printf("%d tasks, %d dependency edges\n", g.NodeCount(), g.EdgeCount())

			for _, conflict := range analysis.Conflicts {
				fmt.Printf("%s %s and %s contend for %s (%s)\n",
					warningStyle.Sprint("!"),
					conflict.TaskA, conflict.TaskB, conflict.Resource, conflict.Type)
			}
			for _, missing := range analysis.Missing {
				fmt.Printf("%s %s requires unavailable resource %s\n",
					warningStyle.Sprint("!"), missing.TaskID, missing.Resource)
			}

			cycles := graph.DetectCycles(g)
			if len(cycles) == 0 {
				fmt.Printf("%s no cycles detected\n", successStyle.Sprint(checkmark))
				return nil
			}

			stats := graph.Statistics(cycles)
			fmt.Printf("%s %d cycle(s) involving %d task(s)\n",
				errorStyle.Sprint(xmark), stats.Count, stats.NodesInvolved)
			for _, component := range graph.StronglyConnectedComponents(g) {
				fmt.Printf("  %s\n", strings.Join(component, ", "))
			}
			if shortest, ok := graph.ShortestCycle(g, cycles[0][0]); ok {
				fmt.Printf("  shortest: %s\n", strings.Join(shortest, " -> "))
			}
			return cli.Errorf("plan contains dependency cycles")
		})
}
