package world

import "github.com/udisondev/pursuit/internal/model"

// TracingArea is a detectable part of a target (head, body, a noise source).
// Offset is relative to the target anchor; Position is filled by Target.Areas.
type TracingArea struct {
	Offset   model.Vec3
	Position model.Vec3
	Layer    int
	State    model.HitAreaState
}

// Target is something agents can detect and pursue.
// Anchor is the point agents follow; pursuit points borrow it.
type Target struct {
	subjectID uint32
	anchor    *model.Marker
	areas     []TracingArea
	active    bool
}

// NewTarget creates an active target whose anchor is spawned from pool.
func NewTarget(pool *model.MarkerPool, subjectID uint32, pos model.Vec3, areas []TracingArea) *Target {
	return &Target{
		subjectID: subjectID,
		anchor:    pool.Spawn(pos),
		areas:     areas,
		active:    true,
	}
}

// SubjectID returns target subject identifier.
func (t *Target) SubjectID() uint32 {
	return t.subjectID
}

// Anchor returns the marker agents follow.
func (t *Target) Anchor() *model.Marker {
	return t.anchor
}

// Position returns current anchor position.
func (t *Target) Position() model.Vec3 {
	return t.anchor.Position()
}

// MoveTo moves the target anchor (tracing areas follow).
func (t *Target) MoveTo(pos model.Vec3) {
	t.anchor.SetPosition(pos)
}

// Active reports whether the target takes part in detection.
func (t *Target) Active() bool {
	return t.active
}

// SetActive enables or disables detection of the whole target.
func (t *Target) SetActive(active bool) {
	t.active = active
}

// AreaCount returns number of tracing areas.
func (t *Target) AreaCount() int {
	return len(t.areas)
}

// Areas returns tracing areas with world positions resolved from the anchor.
func (t *Target) Areas() []TracingArea {
	origin := t.anchor.Position()
	out := make([]TracingArea, len(t.areas))
	for i, a := range t.areas {
		a.Position = origin.Add(a.Offset)
		out[i] = a
	}
	return out
}

// SetAreaState changes state of tracing area i. Out-of-range indices are ignored.
func (t *Target) SetAreaState(i int, state model.HitAreaState) {
	if i < 0 || i >= len(t.areas) {
		return
	}
	t.areas[i].State = state
}

// SetLayer moves every tracing area to layer.
func (t *Target) SetLayer(layer int) {
	for i := range t.areas {
		t.areas[i].Layer = layer
	}
}
