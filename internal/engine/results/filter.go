package results

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Filter narrows a result set by component tag name. An empty include list
// admits every component; exclude patterns win over include patterns.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

func NewFilter(include, exclude []string) (*Filter, error) {
	inc, err := compileGlobs(include)
	if err != nil {
		return nil, fmt.Errorf("filter.include_components: %w", err)
	}
	exc, err := compileGlobs(exclude)
	if err != nil {
		return nil, fmt.Errorf("filter.exclude_components: %w", err)
	}
	return &Filter{include: inc, exclude: exc}, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", pattern, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

func (f *Filter) Allows(componentTagName string) bool {
	if f == nil {
		return true
	}
	for _, g := range f.exclude {
		if g.Match(componentTagName) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, g := range f.include {
		if g.Match(componentTagName) {
			return true
		}
	}
	return false
}

// Apply returns the records whose component passes the filter, keeping order.
func (f *Filter) Apply(records []Record) []Record {
	if f == nil || (len(f.include) == 0 && len(f.exclude) == 0) {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if f.Allows(rec.ComponentTagName) {
			out = append(out, rec)
		}
	}
	return out
}
