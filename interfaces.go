package weft

import "context"

// ToolInfo describes an external tool capability as reported by a
// ToolRegistry. Dependencies lists the names of tools that must run
// before this one can be used.
type ToolInfo struct {
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// ToolRegistry is the resolver's view of an external tool catalog.
// Lookup failures are tolerated: the resolver logs them and continues
// without tool-based dependency edges for the affected task.
type ToolRegistry interface {
	GetTool(ctx context.Context, name string) (*ToolInfo, error)
}

// PromptClient is the resolver's view of a natural-language reasoning
// oracle used for opt-in semantic dependency inference. Failures and
// malformed replies are tolerated and treated as "no dependencies".
type PromptClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// IDGenerator produces ids for tasks that were supplied without one.
// Inject a deterministic implementation in tests.
type IDGenerator interface {
	NewID() string
}
