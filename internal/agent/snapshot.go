package agent

import (
	"github.com/udisondev/pursuit/internal/model"
)

// Snapshot is a read-only view of an agent for debugging.
type Snapshot struct {
	ID             uint32       `json:"id"`
	State          string       `json:"state"`
	Perception     string       `json:"perception"`
	Position       model.Vec3   `json:"position"`
	Destination    model.Vec3   `json:"destination"`
	Speed          float64      `json:"speed"`
	Cursor         int          `json:"cursor"`
	Direct         int          `json:"direct"`
	Suspicion      int          `json:"suspicion"`
	AttackDistance float64      `json:"attack_distance"`
	Dead           bool         `json:"dead"`
	Masks          []MaskReport `json:"masks,omitempty"`
}

// MaskReport lists the tracing areas one observation area detects on a subject.
type MaskReport struct {
	SubjectID uint32 `json:"subject_id"`
	AreaID    uint32 `json:"area_id"`
	Bits      []uint `json:"bits"`
}

// Snapshot captures the agent's current decision state.
func (a *Agent) Snapshot() Snapshot {
	s := Snapshot{
		ID:             a.id,
		State:          a.controller.State().String(),
		Perception:     a.aggregator.State().String(),
		Position:       a.nav.Position(),
		Destination:    a.nav.Destination(),
		Speed:          a.nav.Speed(),
		Cursor:         a.controller.Cursor(),
		Direct:         a.controller.Direct().Len(),
		Suspicion:      a.controller.Suspicion().Len(),
		AttackDistance: a.aggregator.AttackDistance(),
		Dead:           a.aggregator.IsDead(),
	}

	for _, aff := range a.registry.Affections(a.id) {
		if !aff.Affected() {
			continue
		}
		bits := make([]uint, 0, aff.Mask.Count())
		for i, ok := aff.Mask.NextSet(0); ok; i, ok = aff.Mask.NextSet(i + 1) {
			bits = append(bits, i)
		}
		s.Masks = append(s.Masks, MaskReport{SubjectID: aff.SubjectID, AreaID: aff.AreaID, Bits: bits})
	}
	return s
}
