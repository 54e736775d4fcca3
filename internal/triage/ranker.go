package triage

import (
	"sort"

	"github.com/jwalitptl/triage-api/internal/model"
)

// CategoryFilter parses the worklist category query. An empty query means no filter.
// ok is false for values outside the known categories; callers answer those with an
// empty worklist.
func CategoryFilter(query string) (filter *model.Category, ok bool) {
	if query == "" {
		return nil, true
	}
	c, err := model.ParseCategory(query)
	if err != nil {
		return nil, false
	}
	return &c, true
}

// Rank returns the active worklist: resolved patients removed, optionally restricted to
// one category, ordered by priority descending then arrival ascending. Full ties keep
// their input order. The input slice and records are left untouched.
func Rank(records []*model.Patient, filter *model.Category) []*model.Patient {
	out := make([]*model.Patient, 0, len(records))
	for _, p := range records {
		if p == nil || !p.Active() {
			continue
		}
		if filter != nil && p.TriageCategory != *filter {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	return out
}
