package model

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// ObservationType is the kind of detection an observation area performs.
type ObservationType int32

const (
	// ObservationSight - direct visual contact, the agent attacks on arrival
	ObservationSight ObservationType = iota
	// ObservationHearing - indirect contact, the agent investigates and waits
	ObservationHearing
	// ObservationTracking - direct contact the agent follows without attacking
	ObservationTracking
)

// String returns human-readable observation name
func (o ObservationType) String() string {
	switch o {
	case ObservationSight:
		return "SIGHT"
	case ObservationHearing:
		return "HEARING"
	case ObservationTracking:
		return "TRACKING"
	default:
		return "UNKNOWN"
	}
}

// ParseObservationType parses an observation name as printed by String, case-insensitive.
func ParseObservationType(s string) (ObservationType, error) {
	for _, o := range []ObservationType{ObservationSight, ObservationHearing, ObservationTracking} {
		if strings.EqualFold(s, o.String()) {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown observation type %q", s)
}

// PointKind maps observation to candidate kind.
// Unknown observations degrade to suspicion.
func (o ObservationType) PointKind() PointKind {
	switch o {
	case ObservationSight, ObservationTracking:
		return KindDirectTarget
	default:
		return KindSuspicion
	}
}

// PointAction maps observation to arrival action.
func (o ObservationType) PointAction() PointAction {
	switch o {
	case ObservationSight:
		return ActionAttack
	case ObservationTracking:
		return ActionContinuePath
	default:
		return ActionStop
	}
}

// HitAreaState is the state of a target's tracing area.
type HitAreaState int32

const (
	// HitUnknown - not initialized, never detectable
	HitUnknown HitAreaState = iota
	// HitEnabled - detectable
	HitEnabled
	// HitDisabled - temporarily not detectable
	HitDisabled
)

// AffectionMask is a per (target subject x observation area) bitmask
// over the target's tracing areas, produced by the detection sweep.
type AffectionMask struct {
	SubjectID uint32
	AreaID    uint32
	Mask      *bitset.BitSet
}

// Affected reports whether any tracing area is detected.
func (a AffectionMask) Affected() bool {
	return a.Mask != nil && a.Mask.Any()
}
