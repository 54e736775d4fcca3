package triage

import "github.com/jwalitptl/triage-api/internal/model"

// ResourceLookup is read access to the resource registry.
type ResourceLookup interface {
	Lookup(resourceType string) (model.Resource, bool)
}

// Snapshot is an immutable copy of the registry taken in a single read. Building the
// adjuster's view from one snapshot keeps each priority calculation consistent while
// resupply events update the live registry.
type Snapshot struct {
	resources map[string]model.Resource
}

// NewSnapshot copies resources keyed by type. Nil entries are skipped.
func NewSnapshot(resources []*model.Resource) Snapshot {
	m := make(map[string]model.Resource, len(resources))
	for _, r := range resources {
		if r == nil {
			continue
		}
		m[r.ResourceType] = *r
	}
	return Snapshot{resources: m}
}

// Lookup returns the resource of the given type, if registered.
func (s Snapshot) Lookup(resourceType string) (model.Resource, bool) {
	r, ok := s.resources[resourceType]
	return r, ok
}

// Len returns the number of resources in the snapshot.
func (s Snapshot) Len() int {
	return len(s.resources)
}
