package model

import (
	"fmt"
	"strings"
	"time"
)

// PointKind tells which container a path point belongs to.
type PointKind int32

const (
	// KindPatrolFollowing - regular patrol route point
	KindPatrolFollowing PointKind = iota
	// KindReturnFollowing - patrol point picked while returning to the route
	KindReturnFollowing
	// KindSuspicion - decaying memory of a target, always backed by an owned marker
	KindSuspicion
	// KindDirectTarget - live, currently visible target
	KindDirectTarget
)

// String returns human-readable kind name
func (k PointKind) String() string {
	switch k {
	case KindPatrolFollowing:
		return "PATROL"
	case KindReturnFollowing:
		return "RETURN"
	case KindSuspicion:
		return "SUSPICION"
	case KindDirectTarget:
		return "DIRECT"
	default:
		return "UNKNOWN"
	}
}

// PointAction is what the agent does once it reaches a point.
type PointAction int32

const (
	// ActionContinuePath - advance to the next destination immediately
	ActionContinuePath PointAction = iota
	// ActionStop - hold for the point's transfer delay
	ActionStop
	// ActionAttack - attack the target (direct targets only)
	ActionAttack
)

// String returns human-readable action name
func (a PointAction) String() string {
	switch a {
	case ActionContinuePath:
		return "CONTINUE"
	case ActionStop:
		return "STOP"
	case ActionAttack:
		return "ATTACK"
	default:
		return "UNKNOWN"
	}
}

// ParsePointAction parses an action name as printed by String, case-insensitive.
func ParsePointAction(s string) (PointAction, error) {
	for _, a := range []PointAction{ActionContinuePath, ActionStop, ActionAttack} {
		if strings.EqualFold(s, a.String()) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown point action %q", s)
}

// PathPoint is a navigable destination with movement metadata.
//
// The position comes from Anchor when set, otherwise from Fixed.
// Owned anchors belong to the point and are destroyed by Release;
// borrowed anchors (a live target's marker) are never destroyed here.
type PathPoint struct {
	Anchor *Marker
	Owned  bool
	Fixed  Vec3

	Kind           PointKind
	Action         PointAction
	Priority       int32
	AccuracyRadius float64
	MovementSpeed  float64
	TransferDelay  time.Duration

	claimed bool
}

// NewPathPoint creates a point borrowing anchor.
func NewPathPoint(anchor *Marker) *PathPoint {
	return &PathPoint{Anchor: anchor}
}

// NewFixedPathPoint creates a point at a fixed coordinate.
func NewFixedPathPoint(pos Vec3) *PathPoint {
	return &PathPoint{Fixed: pos}
}

// NewOwnedPathPoint spawns a way-marker at pos and creates a point owning it.
func NewOwnedPathPoint(pool *MarkerPool, pos Vec3) *PathPoint {
	return &PathPoint{Anchor: pool.Spawn(pos), Owned: true}
}

// Position returns the current destination position.
func (p *PathPoint) Position() Vec3 {
	if p.Anchor != nil {
		return p.Anchor.Position()
	}
	return p.Fixed
}

// SetAccuracyRadius sets arrival tolerance, negative values clamp to zero.
func (p *PathPoint) SetAccuracyRadius(r float64) {
	p.AccuracyRadius = max(r, 0)
}

// Detach replaces the anchor with an owned way-marker spawned at the
// current position, decoupling the point from a live target.
// An owned anchor is destroyed first.
func (p *PathPoint) Detach(pool *MarkerPool) {
	pos := p.Position()
	p.Release()
	p.Anchor = pool.Spawn(pos)
	p.Owned = true
}

// Release destroys an owned anchor. Borrowed anchors are left alone.
func (p *PathPoint) Release() {
	if p.Owned && p.Anchor != nil && p.Anchor.pool != nil {
		p.Anchor.pool.Destroy(p.Anchor)
	}
}

// Clone copies point metadata. The clone borrows the anchor: ownership never copies.
func (p *PathPoint) Clone() *PathPoint {
	c := *p
	c.Owned = false
	c.claimed = false
	return &c
}

// Claim marks the point as adopted by a container.
func (p *PathPoint) Claim() {
	p.claimed = true
}

// Claimed reports whether a container adopted the point.
func (p *PathPoint) Claimed() bool {
	return p.claimed
}
