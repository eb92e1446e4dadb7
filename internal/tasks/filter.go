package tasks

import (
	"fmt"
	"sort"
	"strings"
)

// Filter selects a display subset of a collection.
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterCompleted
)

func (f Filter) String() string {
	switch f {
	case FilterActive:
		return "active"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// ParseFilter parses a filter name, case-insensitively.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	}
	return FilterAll, fmt.Errorf("invalid filter: %s (want all, active or completed)", s)
}

// Apply returns the subsequence of ts selected by f, in order.
// FilterAll, and any value this package does not define, returns ts itself.
// ts is never modified.
func Apply(ts []Task, f Filter) []Task {
	var want bool
	switch f {
	case FilterActive:
		want = false
	case FilterCompleted:
		want = true
	default:
		return ts
	}
	out := make([]Task, 0, len(ts))
	for _, t := range ts {
		if t.Completed == want {
			out = append(out, t)
		}
	}
	return out
}

// InCategory returns the tasks whose category matches name
// (case-insensitive, trimmed). An empty name matches everything.
func InCategory(ts []Task, name string) []Task {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ts
	}
	var out []Task
	for _, t := range ts {
		if strings.ToLower(strings.TrimSpace(t.Category)) == name {
			out = append(out, t)
		}
	}
	return out
}

// CategoryCount summarizes one category.
type CategoryCount struct {
	Name  string
	Open  int
	Total int
}

// Categories returns per-category counts sorted by name. Categories are
// grouped the way InCategory matches them; each group is named after the
// first spelling seen.
func Categories(ts []Task) []CategoryCount {
	byName := make(map[string]*CategoryCount)
	for _, t := range ts {
		name := strings.TrimSpace(t.Category)
		key := strings.ToLower(name)
		c, ok := byName[key]
		if !ok {
			c = &CategoryCount{Name: name}
			byName[key] = c
		}
		c.Total++
		if !t.Completed {
			c.Open++
		}
	}
	out := make([]CategoryCount, 0, len(byName))
	for _, c := range byName {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
