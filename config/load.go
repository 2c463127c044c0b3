package config

import (
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// LoadGlob loads every plan file matched by the doublestar pattern
// (e.g. "plans/**/*.yaml") and merges them into a single Plan. Files
// are merged in lexicographical order: task lists concatenate, the
// environment declarations union, and later name and description
// values override earlier ones. A pattern matching no files is an
// error.
func LoadGlob(pattern string) (*Plan, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no plan files match %q", pattern)
	}
	sort.Strings(matches)

	var merged *Plan
	for _, path := range matches {
		plan, err := ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		if merged == nil {
			merged = plan
			continue
		}
		merged.merge(plan)
	}
	return merged, nil
}

func (p *Plan) merge(other *Plan) {
	if other.Name != "" {
		p.Name = other.Name
	}
	if other.Description != "" {
		p.Description = other.Description
	}
	if other.Semantic {
		p.Semantic = true
	}
	if other.Environment.ExcludeToolResources {
		p.Environment.ExcludeToolResources = true
	}
	p.Environment.Resources = appendMissing(p.Environment.Resources, other.Environment.Resources)
	p.Environment.Tools = appendMissing(p.Environment.Tools, other.Environment.Tools)
	p.Tasks = append(p.Tasks, other.Tasks...)
}

func appendMissing(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		seen[name] = struct{}{}
	}
	for _, name := range extra {
		if _, ok := seen[name]; !ok {
			existing = append(existing, name)
			seen[name] = struct{}{}
		}
	}
	return existing
}
