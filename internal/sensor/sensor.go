// Package sensor implements the geometric detection sweep that fills
// affection masks for observation areas.
package sensor

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/udisondev/pursuit/internal/model"
	"github.com/udisondev/pursuit/internal/world"
)

// Sensor is an observation area attached to an agent.
type Sensor interface {
	// ID returns area identifier, unique per agent.
	ID() uint32
	// Type returns what kind of observation the area performs.
	Type() model.ObservationType
	// Priority returns priority assigned to candidates found by this area.
	Priority() int32
	// ChaseSpeed returns movement speed for candidates found by this area.
	ChaseSpeed() float64
	// Active reports whether the area detects anything.
	Active() bool
	// TestContainment sets bit i of mask for every tracing area i inside the sensor.
	// Returns true if any bit was set.
	TestContainment(areas []world.TracingArea, mask *bitset.BitSet) bool
}

// Socket gives the sensor its owner's pose.
type Socket interface {
	Position() model.Vec3
	Forward() model.Vec3
}

// MaskStore is the part of the registry the sweep writes to.
type MaskStore interface {
	IsActive() bool
	TargetCount() int
	Target(i int) *world.Target
	Mask(subjectID, observerID, areaID uint32) *bitset.BitSet
	ClearAreaMasks(observerID, areaID uint32)
}

// Sweep runs one detection pass of s on behalf of observerID.
// The sensor's previous bits are always cleared first, so a disabled sensor
// never leaves stale detections behind. Returns true if anything was detected.
func Sweep(observerID uint32, s Sensor, store MaskStore) bool {
	if !store.IsActive() {
		return false
	}

	store.ClearAreaMasks(observerID, s.ID())
	if !s.Active() {
		return false
	}

	affected := false
	for i := range store.TargetCount() {
		t := store.Target(i)
		// an agent's own body is a target too
		if t == nil || !t.Active() || t.SubjectID() == observerID {
			continue
		}
		mask := store.Mask(t.SubjectID(), observerID, s.ID())
		if mask == nil {
			continue
		}
		if s.TestContainment(t.Areas(), mask) {
			affected = true
		}
	}
	return affected
}
