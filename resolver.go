package weft

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/deepnoodle-ai/weft/graph"
	"github.com/deepnoodle-ai/weft/resource"
	"github.com/deepnoodle-ai/weft/slogger"
)

const (
	DefaultMaxDepth = 10
	DefaultTimeout  = 30 * time.Second
)

// ResolverOptions configures a Resolver. The zero value is usable:
// cycle detection and caching are enabled, logging is discarded, and no
// external collaborators are consulted.
type ResolverOptions struct {
	// MaxDepth bounds transitive-dependency searches. Defaults to 10.
	MaxDepth int

	// Timeout bounds the collaborator-consulting phase of a resolution
	// call. Advisory: collaborators observe it through the context.
	// Defaults to 30 seconds.
	Timeout time.Duration

	// DisableCycleDetection skips the explicit cycle check before
	// sorting. Cyclic inputs then surface as sort failures instead.
	DisableCycleDetection bool

	// DisableCache disables result caching across calls.
	DisableCache bool

	Logger       slogger.Logger
	ToolRegistry ToolRegistry
	PromptClient PromptClient
	IDGenerator  IDGenerator
}

// ResolveOptions carries the per-call context for one resolution.
type ResolveOptions struct {
	// SemanticAnalysis enables LLM-backed dependency inference. It has
	// no effect unless the resolver was built with a PromptClient.
	SemanticAnalysis bool `json:"semantic_analysis,omitempty"`

	// AvailableResources and AvailableTools declare what the execution
	// environment provides, for missing-resource reporting. Resource
	// entries may be glob patterns.
	AvailableResources []string `json:"available_resources,omitempty"`
	AvailableTools     []string `json:"available_tools,omitempty"`

	// ExcludeToolResources suppresses tool-derived resource tags.
	ExcludeToolResources bool `json:"exclude_tool_resources,omitempty"`
}

// Resolver builds dependency graphs from task lists and decides a safe,
// optimized execution order. A Resolver may be reused sequentially
// across calls; its cache persists between them.
type Resolver struct {
	maxDepth       int
	timeout        time.Duration
	cycleDetection bool
	cacheEnabled   bool
	logger         slogger.Logger
	tools          ToolRegistry
	prompter       PromptClient
	ids            IDGenerator
	analyzer       *resource.Analyzer

	mutex sync.Mutex
	cache map[string]*Result
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ResolverOptions) *Resolver {
	r := &Resolver{
		maxDepth:       opts.MaxDepth,
		timeout:        opts.Timeout,
		cycleDetection: !opts.DisableCycleDetection,
		cacheEnabled:   !opts.DisableCache,
		logger:         opts.Logger,
		tools:          opts.ToolRegistry,
		prompter:       opts.PromptClient,
		ids:            opts.IDGenerator,
		analyzer:       resource.NewAnalyzer(),
		cache:          make(map[string]*Result),
	}
	if r.maxDepth <= 0 {
		r.maxDepth = DefaultMaxDepth
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.logger == nil {
		r.logger = slogger.NewDevNullLogger()
	}
	if r.ids == nil {
		r.ids = timestampIDGenerator{}
	}
	return r
}

// Resolve builds the dependency graph for the given tasks, checks it
// for cycles, and computes the execution order, parallel groups,
// critical path, and time estimate. It never panics outward and never
// returns nil: every failure mode is reported through the Result.
func (r *Resolver) Resolve(ctx context.Context, tasks []*Task, opts ResolveOptions) (result *Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic during dependency resolution", "panic", rec)
			result = failure(fmt.Sprintf("internal error during resolution: %v", rec))
		}
	}()

	normalized := r.normalize(tasks)
	r.logger.Debug("resolving dependencies", "task_count", len(normalized))

	var key string
	var cacheable bool
	if r.cacheEnabled {
		key, cacheable = cacheKey(normalized, opts)
		if !cacheable {
			r.logger.Debug("task list is not encodable, skipping result cache")
		} else if cached, ok := r.cachedResult(key); ok {
			r.logger.Debug("returning cached resolution", "key", key)
			return cached
		}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	g, analysis, err := r.BuildGraph(ctx, normalized, opts)
	if err != nil {
		return failure(fmt.Sprintf("building dependency graph: %v", err))
	}

	result = &Result{
		Graph:      g,
		Resources:  analysis,
		Complexity: Complexity(g),
	}

	if r.cycleDetection {
		if cycles := graph.DetectCycles(g); len(cycles) > 0 {
			stats := graph.Statistics(cycles)
			r.logger.Warn("dependency cycles detected",
				"cycles", stats.Count, "nodes_involved", stats.NodesInvolved)
			result.Error = fmt.Sprintf("circular dependencies detected: %s",
				formatCycle(cycles[0]))
			return result
		}
	}

	order, err := graph.SortFunc(g, r.readyOrder(normalized))
	if err != nil {
		// The safety net when explicit detection is disabled.
		result.Error = fmt.Sprintf("circular dependency detected during topological sort: %v", err)
		return result
	}

	result.ExecutionOrder = order
	result.ParallelGroups = parallelGroups(g, analysis)
	result.CriticalPath, result.EstimatedTime = criticalPath(g, order)
	result.Success = true

	if r.cacheEnabled && cacheable {
		r.storeResult(key, result)
	}
	return result
}

// ResolveTask is a convenience wrapper for a single task.
func (r *Resolver) ResolveTask(ctx context.Context, task *Task, opts ResolveOptions) *Result {
	return r.Resolve(ctx, []*Task{task}, opts)
}

// HasTransitiveDependency reports whether from reaches to through the
// graph's dependency edges, bounded by the resolver's MaxDepth.
func (r *Resolver) HasTransitiveDependency(g *graph.Graph[*Task], from, to string) bool {
	return HasTransitiveDependency(g, from, to, r.maxDepth)
}

// readyOrder ranks simultaneously-ready tasks: higher priority first,
// then stable insertion order. Exclusivity ordering is already encoded
// as graph edges by the time sorting runs.
func (r *Resolver) readyOrder(tasks []*Task) func(a, b string) bool {
	priority := make(map[string]float64, len(tasks))
	position := make(map[string]int, len(tasks))
	for i, task := range tasks {
		priority[task.ID] = task.EffectivePriority()
		position[task.ID] = i
	}
	return func(a, b string) bool {
		if priority[a] != priority[b] {
			return priority[a] > priority[b]
		}
		return position[a] < position[b]
	}
}

// CacheStats reports the result cache's state.
type CacheStats struct {
	Size    int  `json:"size"`
	Enabled bool `json:"enabled"`
}

// GetCacheStats returns the current cache size and whether caching is
// enabled. A resolver constructed with caching disabled always reports
// a size of zero.
func (r *Resolver) GetCacheStats() CacheStats {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if !r.cacheEnabled {
		return CacheStats{Size: 0, Enabled: false}
	}
	return CacheStats{Size: len(r.cache), Enabled: true}
}

// ClearCache empties the result cache.
func (r *Resolver) ClearCache() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.cache = make(map[string]*Result)
}

func (r *Resolver) cachedResult(key string) (*Result, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	result, ok := r.cache[key]
	return result, ok
}

func (r *Resolver) storeResult(key string, result *Result) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.cache[key] = result
}

// cacheKey hashes the normalized task list together with the per-call
// options, so that the same tasks under different contexts do not
// collide. A task list that cannot be encoded (a Params value like a
// channel) reports false: hashing truncated data would let distinct
// task sets share a key.
func cacheKey(tasks []*Task, opts ResolveOptions) (string, bool) {
	hasher := sha256.New()
	encoder := json.NewEncoder(hasher)
	if err := encoder.Encode(tasks); err != nil {
		return "", false
	}
	if err := encoder.Encode(opts); err != nil {
		return "", false
	}
	return hex.EncodeToString(hasher.Sum(nil)), true
}

func formatCycle(cycle graph.Cycle) string {
	return strings.Join(cycle, " -> ")
}
