// Package world is the in-process target registry and affection mask store
// shared by all agents of a simulation.
package world

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/udisondev/pursuit/internal/model"
)

type maskKey struct {
	subjectID  uint32
	observerID uint32
	areaID     uint32
}

// Registry tracks targets and per (subject x observer x area) affection masks.
//
// Maps are guarded by mu; mask bits themselves are only touched from the
// simulation tick goroutine.
type Registry struct {
	mu        sync.RWMutex
	targets   []*Target
	bySubject map[uint32]*Target
	masks     map[maskKey]*bitset.BitSet
	active    bool
}

// NewRegistry creates an empty, active registry.
func NewRegistry() *Registry {
	return &Registry{
		bySubject: make(map[uint32]*Target),
		masks:     make(map[maskKey]*bitset.BitSet),
		active:    true,
	}
}

// IsActive reports whether detection runs at all.
func (r *Registry) IsActive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// SetActive pauses or resumes detection for every observer.
func (r *Registry) SetActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = active
}

// AddTarget registers a target. Subject IDs must be unique.
func (r *Registry) AddTarget(t *Target) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySubject[t.SubjectID()]; exists {
		return fmt.Errorf("target subject %d already registered", t.SubjectID())
	}
	r.targets = append(r.targets, t)
	r.bySubject[t.SubjectID()] = t
	return nil
}

// RemoveTarget unregisters a target and drops every mask about it.
// The target anchor is left alive: pursuit points detect removal through IsTargetValid.
func (r *Registry) RemoveTarget(subjectID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bySubject[subjectID]; !ok {
		return
	}
	delete(r.bySubject, subjectID)
	r.targets = slices.DeleteFunc(r.targets, func(t *Target) bool {
		return t.SubjectID() == subjectID
	})
	for k := range r.masks {
		if k.subjectID == subjectID {
			delete(r.masks, k)
		}
	}
}

// TargetCount returns number of registered targets.
func (r *Registry) TargetCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets)
}

// Target returns target at index i, nil when out of range.
func (r *Registry) Target(i int) *Target {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.targets) {
		return nil
	}
	return r.targets[i]
}

// TargetBySubject looks a target up by subject ID.
func (r *Registry) TargetBySubject(subjectID uint32) (*Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.bySubject[subjectID]
	return t, ok
}

// Anchor returns the marker agents follow for subjectID.
func (r *Registry) Anchor(subjectID uint32) (*model.Marker, bool) {
	t, ok := r.TargetBySubject(subjectID)
	if !ok {
		return nil, false
	}
	return t.Anchor(), true
}

// IsTargetValid reports whether anchor still belongs to a registered, active target.
func (r *Registry) IsTargetValid(anchor *model.Marker) bool {
	if anchor == nil || !anchor.Alive() {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.targets {
		if t.Anchor() == anchor {
			return t.Active()
		}
	}
	return false
}

// Mask returns the affection mask of observer's area over subject's tracing
// areas, creating it on first use. Returns nil for unknown subjects.
func (r *Registry) Mask(subjectID, observerID, areaID uint32) *bitset.BitSet {
	key := maskKey{subjectID: subjectID, observerID: observerID, areaID: areaID}

	r.mu.RLock()
	m, ok := r.masks[key]
	r.mu.RUnlock()
	if ok {
		return m
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	t, known := r.bySubject[subjectID]
	if !known {
		return nil
	}
	if m, ok = r.masks[key]; ok {
		return m
	}
	m = bitset.New(uint(t.AreaCount()))
	r.masks[key] = m
	return m
}

// Affections returns every mask owned by observerID, ordered by subject then area.
func (r *Registry) Affections(observerID uint32) []model.AffectionMask {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.AffectionMask
	for k, m := range r.masks {
		if k.observerID != observerID {
			continue
		}
		out = append(out, model.AffectionMask{SubjectID: k.subjectID, AreaID: k.areaID, Mask: m})
	}
	slices.SortFunc(out, func(a, b model.AffectionMask) int {
		if c := cmp.Compare(a.SubjectID, b.SubjectID); c != 0 {
			return c
		}
		return cmp.Compare(a.AreaID, b.AreaID)
	})
	return out
}

// ClearMasks clears every bit observerID has written.
func (r *Registry) ClearMasks(observerID uint32) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k, m := range r.masks {
		if k.observerID == observerID {
			m.ClearAll()
		}
	}
}

// ClearAreaMasks clears bits observerID has written through areaID.
func (r *Registry) ClearAreaMasks(observerID, areaID uint32) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k, m := range r.masks {
		if k.observerID == observerID && k.areaID == areaID {
			m.ClearAll()
		}
	}
}
