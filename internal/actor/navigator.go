// Package actor provides the agent's physical collaborators: a straight-line
// navigator, the animation body and weapons.
package actor

import (
	"github.com/udisondev/pursuit/internal/model"
)

// Navigator moves the agent along a straight line to its destination.
//
// A new destination needs one Step before it is followed: PathPending
// reports true until then, like a path still being computed.
type Navigator struct {
	pos     model.Vec3
	forward model.Vec3
	dest    model.Vec3
	speed   float64
	pending bool
	body    *model.Marker
}

// NewNavigator creates a navigator at pos facing +Z.
// body, when set, follows the agent so others can track it.
func NewNavigator(pos model.Vec3, body *model.Marker) *Navigator {
	if body != nil {
		body.SetPosition(pos)
	}
	return &Navigator{
		pos:     pos,
		forward: model.NewVec3(0, 0, 1),
		dest:    pos,
		body:    body,
	}
}

// Position returns current position.
func (n *Navigator) Position() model.Vec3 { return n.pos }

// Forward returns the facing direction (unit vector).
func (n *Navigator) Forward() model.Vec3 { return n.forward }

// Destination returns current destination.
func (n *Navigator) Destination() model.Vec3 { return n.dest }

// SetDestination sets a new destination, the path is pending until the next Step.
func (n *Navigator) SetDestination(dest model.Vec3) {
	n.dest = dest
	n.pending = true
}

// RemainingDistance returns the distance left to the destination.
func (n *Navigator) RemainingDistance() float64 { return n.pos.Distance(n.dest) }

// PathPending reports whether the last destination was not followed yet.
func (n *Navigator) PathPending() bool { return n.pending }

// SetSpeed sets commanded speed in units per second. Negative is zero.
func (n *Navigator) SetSpeed(speed float64) { n.speed = max(speed, 0) }

// Speed returns commanded speed.
func (n *Navigator) Speed() float64 { return n.speed }

// DesiredVelocity returns the velocity the navigator wants to move with.
func (n *Navigator) DesiredVelocity() model.Vec3 {
	if n.pending {
		return model.Vec3{}
	}
	return n.dest.Sub(n.pos).Normalized().Scale(n.speed)
}

// Step moves the agent for dt seconds without overshooting the destination.
func (n *Navigator) Step(dt float64) {
	if n.pending {
		n.pending = false
		return
	}

	delta := n.dest.Sub(n.pos)
	dist := delta.Len()
	if dist == 0 || n.speed == 0 || dt <= 0 {
		return
	}

	dir := delta.Scale(1 / dist)
	n.forward = dir
	if step := n.speed * dt; step < dist {
		n.pos = n.pos.Add(dir.Scale(step))
	} else {
		n.pos = n.dest
	}
	if n.body != nil {
		n.body.SetPosition(n.pos)
	}
}
