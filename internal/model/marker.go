package model

import "sync/atomic"

// Marker is a movable position reference.
// Live targets expose their anchor as a Marker; the pursuit core spawns
// standalone way-markers to remember where a target was last seen.
type Marker struct {
	id    uint64
	pos   Vec3
	pool  *MarkerPool
	alive bool
}

// ID returns marker identifier (unique within its pool).
func (m *Marker) ID() uint64 {
	return m.id
}

// Position returns current marker position.
func (m *Marker) Position() Vec3 {
	return m.pos
}

// SetPosition moves the marker.
func (m *Marker) SetPosition(pos Vec3) {
	m.pos = pos
}

// Alive reports whether the marker was not destroyed yet.
func (m *Marker) Alive() bool {
	return m.alive
}

// MarkerPool spawns and destroys markers and keeps a live count
// so leaked way-markers are observable.
type MarkerPool struct {
	nextID atomic.Uint64
	live   atomic.Int64
}

// NewMarkerPool creates an empty marker pool.
func NewMarkerPool() *MarkerPool {
	return &MarkerPool{}
}

// Spawn creates a live marker at pos.
func (p *MarkerPool) Spawn(pos Vec3) *Marker {
	p.live.Add(1)
	return &Marker{
		id:    p.nextID.Add(1),
		pos:   pos,
		pool:  p,
		alive: true,
	}
}

// Destroy kills the marker. Destroying a dead marker or a marker
// of another pool is a no-op.
func (p *MarkerPool) Destroy(m *Marker) {
	if m == nil || m.pool != p || !m.alive {
		return
	}
	m.alive = false
	p.live.Add(-1)
}

// Live returns number of markers spawned and not destroyed.
func (p *MarkerPool) Live() int {
	return int(p.live.Load())
}
