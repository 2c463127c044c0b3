package cli

import (
	"context"
	"os"

	"github.com/deepnoodle-ai/weft"
	"github.com/deepnoodle-ai/weft/config"
	"github.com/deepnoodle-ai/weft/llm"
	"github.com/deepnoodle-ai/weft/slogger"
	"github.com/deepnoodle-ai/wonton/cli"
)

var (
	logLevel       string
	promptProvider string
	app            *cli.App
)

func Execute() {
	app = cli.New("weft").
		Description("Weft resolves task dependencies and plans execution order").
		Version("0.1.0").
		GlobalFlags(
			cli.String("log-level", "").
				Default("warn").
				Help("Log level to use (none, debug, info, warn, error)"),
			cli.String("semantic-provider", "").
				Env("WEFT_SEMANTIC_PROVIDER").
				Default("openai").
				Help("Prompt provider for semantic analysis ('openai' or 'google')"),
		)

	registerPlanCommand(app)
	registerCheckCommand(app)
	registerWatchCommand(app)

	if err := app.Execute(); err != nil {
		if cli.IsHelpRequested(err) {
			os.Exit(0)
		}
		os.Exit(cli.GetExitCode(err))
	}
}

// parseGlobalFlags extracts global flag values from context
func parseGlobalFlags(ctx *cli.Context) {
	logLevel = ctx.String("log-level")
	promptProvider = ctx.String("semantic-provider")
}

func getLogger() slogger.Logger {
	return slogger.New(slogger.LevelFromString(logLevel))
}

// buildResolver assembles a resolver for one CLI invocation. A prompt
// client is only constructed when the plan opts in to semantic
// analysis, so plain invocations need no API credentials.
func buildResolver(ctx context.Context, plan *config.Plan) (*weft.Resolver, error) {
	opts := weft.ResolverOptions{Logger: getLogger()}
	if plan.Semantic {
		prompter, err := buildPromptClient(ctx)
		if err != nil {
			return nil, err
		}
		opts.PromptClient = prompter
	}
	return weft.NewResolver(opts), nil
}

func buildPromptClient(ctx context.Context) (weft.PromptClient, error) {
	switch promptProvider {
	case "google":
		return llm.NewGoogle(ctx)
	default:
		return llm.NewOpenAI(), nil
	}
}

// loadPlan loads the plan named by the command's positional argument,
// treating it as a glob when it contains wildcard characters.
func loadPlan(ctx *cli.Context) (*config.Plan, error) {
	if ctx.NArg() == 0 {
		return nil, cli.Errorf("no plan file provided")
	}
	path := ctx.Arg(0)
	var plan *config.Plan
	var err error
	if hasGlobMeta(path) {
		plan, err = config.LoadGlob(path)
	} else {
		plan, err = config.ParseFile(path)
	}
	if err != nil {
		return nil, cli.Errorf("failed to load plan: %v", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, cli.Errorf("invalid plan: %v", err)
	}
	return plan, nil
}

func hasGlobMeta(path string) bool {
	for _, r := range path {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
