// Package mcptool exposes an MCP server's tool catalog as a resolver
// tool registry, so that tool-based dependency inference can run
// against tools discovered over the Model Context Protocol.
package mcptool

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/deepnoodle-ai/weft"
	"github.com/mark3labs/mcp-go/mcp"
)

// requiresMarker introduces a tool's prerequisite list inside its
// description, e.g. "Deploys the build. requires: builder, packager".
const requiresMarker = "requires:"

// ToolLister is the part of an MCP client the registry needs.
type ToolLister interface {
	ListTools(ctx context.Context) ([]mcp.Tool, error)
}

// Registry implements weft.ToolRegistry over an MCP tool catalog. The
// catalog is listed once on first use and cached; call Refresh to pick
// up server-side changes.
type Registry struct {
	lister ToolLister

	mutex  sync.Mutex
	loaded bool
	tools  map[string]*weft.ToolInfo
}

// NewRegistry creates a Registry backed by the given MCP client.
func NewRegistry(lister ToolLister) *Registry {
	return &Registry{lister: lister}
}

// GetTool looks up a tool by name. Unknown names are an error.
func (r *Registry) GetTool(ctx context.Context, name string) (*weft.ToolInfo, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if !r.loaded {
		if err := r.load(ctx); err != nil {
			return nil, err
		}
	}
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool %q not found in mcp catalog", name)
	}
	return tool, nil
}

// Refresh re-lists the catalog on the next lookup.
func (r *Registry) Refresh() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.loaded = false
	r.tools = nil
}

func (r *Registry) load(ctx context.Context) error {
	listed, err := r.lister.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("failed to list mcp tools: %w", err)
	}
	tools := make(map[string]*weft.ToolInfo, len(listed))
	for _, tool := range listed {
		if _, exists := tools[tool.Name]; exists {
			return fmt.Errorf("mcp catalog has duplicate tool name %q", tool.Name)
		}
		tools[tool.Name] = &weft.ToolInfo{
			Name:         tool.Name,
			Dependencies: ParseRequirements(tool.Description),
		}
	}
	r.tools = tools
	r.loaded = true
	return nil
}

// ParseRequirements extracts prerequisite tool names from a tool
// description. The names follow the "requires:" marker as a
// comma-separated list running to the end of its line. Descriptions
// without the marker have no prerequisites.
func ParseRequirements(description string) []string {
	for _, line := range strings.Split(description, "\n") {
		lowered := strings.ToLower(line)
		index := strings.Index(lowered, requiresMarker)
		if index < 0 {
			continue
		}
		var names []string
		for _, name := range strings.Split(line[index+len(requiresMarker):], ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				names = append(names, trimmed)
			}
		}
		return names
	}
	return nil
}
