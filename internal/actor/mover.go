package actor

import "github.com/udisondev/pursuit/internal/model"

// TargetMover walks a target's anchor around a closed loop of waypoints.
type TargetMover struct {
	nav       *Navigator
	waypoints []model.Vec3
	next      int
}

// NewTargetMover creates a mover placing anchor at pos. With no waypoints
// the mover never moves.
func NewTargetMover(anchor *model.Marker, pos model.Vec3, speed float64, waypoints []model.Vec3) *TargetMover {
	m := &TargetMover{
		nav:       NewNavigator(pos, anchor),
		waypoints: waypoints,
	}
	m.nav.SetSpeed(speed)
	if len(waypoints) > 0 {
		m.nav.SetDestination(waypoints[0])
	}
	return m
}

// Position returns the mover's position.
func (m *TargetMover) Position() model.Vec3 {
	return m.nav.Position()
}

// Step advances the mover by dt seconds and turns to the following
// waypoint once the current one is reached.
func (m *TargetMover) Step(dt float64) {
	if len(m.waypoints) == 0 {
		return
	}
	if !m.nav.PathPending() && m.nav.RemainingDistance() == 0 {
		m.next = (m.next + 1) % len(m.waypoints)
		m.nav.SetDestination(m.waypoints[m.next])
	}
	m.nav.Step(dt)
}
