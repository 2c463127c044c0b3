package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deepnoodle-ai/wonton/cli"
)

func registerPlanCommand(app *cli.App) {
	app.Command("plan").
		Description("Resolve a plan file and print the execution order").
		Args("file").
		Flags(
			cli.Bool("json", "j").Help("Output the full result as JSON"),
		).
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

			result := resolver.Resolve(goCtx, tasks, plan.ResolveOptions())

			if ctx.Bool("json") {
				encoded, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return cli.Errorf("failed to encode result: %v", err)
				}
				fmt.Println(string(encoded))
			} else {
				fmt.Print(renderResult(plan.Name, result))
			}

			if !result.Success {
				return cli.Errorf("plan is not executable")
			}
			return nil
		})
}
