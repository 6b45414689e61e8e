// Package path holds ordered collections of path points and the
// destination selection rules used by the pursuit controller.
package path

import (
	"math"

	"github.com/udisondev/pursuit/internal/model"
)

const (
	// approachDistance is the look-ahead inside which the agent slows down before a stop point.
	approachDistance = 2.0
	// minApproachFactor keeps the agent creeping forward so it still reaches the point.
	minApproachFactor = 0.25
	// noCursor marks "no destination selected".
	noCursor = -1
)

// Selector picks the destination index among the container's points.
type Selector int

const (
	// SelectPriorityCloseness - highest priority wins, distance breaks ties
	SelectPriorityCloseness Selector = iota
	// SelectSequential - next point in insertion order, wraps around (patrol routes)
	SelectSequential
)

// Container is an ordered collection of path points.
// It owns the lifetime of owned markers attached to its points: removing a
// point destroys its marker.
//
// Callers share one cursor across several containers, so every operation
// that changes which point is current takes the cursor by pointer.
type Container struct {
	points   []*model.PathPoint
	selector Selector
	current  int
}

// NewPriority creates an empty priority-closeness container.
func NewPriority() *Container {
	return &Container{selector: SelectPriorityCloseness, current: noCursor}
}

// NewSequential creates an empty sequential (patrol route) container.
func NewSequential() *Container {
	return &Container{selector: SelectSequential, current: noCursor}
}

// Len returns number of points.
func (c *Container) Len() int {
	return len(c.points)
}

// At returns point at index i, or nil when i is out of range.
func (c *Container) At(i int) *model.PathPoint {
	if i < 0 || i >= len(c.points) {
		return nil
	}
	return c.points[i]
}

// Points returns the underlying points (read-only view).
func (c *Container) Points() []*model.PathPoint {
	return c.points
}

// Current returns the current index, -1 when no destination is selected.
func (c *Container) Current() int {
	return c.current
}

// Add appends p and takes ownership of it.
func (c *Container) Add(p *model.PathPoint) {
	p.Claim()
	c.points = append(c.points, p)
}

// AddTracked appends p and points both the caller's cursor and the
// container's current index at it.
func (c *Container) AddTracked(p *model.PathPoint, cursor *int) {
	c.Add(p)
	c.current = len(c.points) - 1
	*cursor = c.current
}

// RemoveAt releases the point's owned marker and removes it.
// Out-of-range indices are ignored.
func (c *Container) RemoveAt(i int) {
	if i < 0 || i >= len(c.points) {
		return
	}
	c.points[i].Release()
	copy(c.points[i:], c.points[i+1:])
	c.points[len(c.points)-1] = nil
	c.points = c.points[:len(c.points)-1]

	switch {
	case c.current == i:
		c.current = noCursor
	case c.current > i:
		c.current--
	}
}

// Clear releases and removes every point.
func (c *Container) Clear() {
	for i, p := range c.points {
		p.Release()
		c.points[i] = nil
	}
	c.points = c.points[:0]
	c.current = noCursor
}

// KeepOnly keeps the point at *cursor, releases the rest and rewrites the
// cursor to 0. With an out-of-range cursor everything is cleared and the
// cursor is reset.
func (c *Container) KeepOnly(cursor *int) {
	i := *cursor
	if i < 0 || i >= len(c.points) {
		c.Clear()
		*cursor = noCursor
		return
	}
	kept := c.points[i]
	c.points[i] = nil
	c.Clear()
	c.points = append(c.points, kept)
	c.current = 0
	*cursor = 0
}

// ResetCursor drops the current index, no destination is selected.
func (c *Container) ResetCursor() {
	c.current = noCursor
}

// SelectDestination picks the next destination, writes its index to cursor
// and returns its position. Returns false for an empty container (cursor is
// left untouched).
func (c *Container) SelectDestination(from model.Vec3, cursor *int) (model.Vec3, bool) {
	if len(c.points) == 0 {
		return model.Vec3{}, false
	}

	var i int
	switch c.selector {
	case SelectSequential:
		i = c.nextIndex(*cursor)
	default:
		i = c.bestIndex(from)
	}

	c.current = i
	*cursor = i
	return c.points[i].Position(), true
}

// ClosestPoint picks the point closest to from regardless of priority.
func (c *Container) ClosestPoint(from model.Vec3, cursor *int) (model.Vec3, bool) {
	if len(c.points) == 0 {
		return model.Vec3{}, false
	}

	best := 0
	bestDist := math.Inf(1)
	for i, p := range c.points {
		if d := p.Position().DistanceSquared(from); d < bestDist {
			best, bestDist = i, d
		}
	}

	c.current = best
	*cursor = best
	return c.points[best].Position(), true
}

// ApproachSpeed attenuates speed by the agent's proximity to the point after
// the current one while the current point is a stop. Linear ramp inside
// approachDistance, never below minApproachFactor of the desired speed.
// Without a next point speed is returned unchanged.
func (c *Container) ApproachSpeed(speed float64, from model.Vec3) float64 {
	p := c.At(c.current)
	if p == nil || p.Action != model.ActionStop {
		return speed
	}
	next := c.At(c.followingIndex(c.current))
	if next == nil {
		return speed
	}

	dist := next.Position().Distance(from)
	if dist >= approachDistance {
		return speed
	}
	factor := max(dist/approachDistance, minApproachFactor)
	return speed * factor
}

// Contains reports whether a point with the same anchor and kind is present.
func (c *Container) Contains(anchor *model.Marker, kind model.PointKind) bool {
	if anchor == nil {
		return false
	}
	for _, p := range c.points {
		if p.Anchor == anchor && p.Kind == kind {
			return true
		}
	}
	return false
}

// bestIndex returns highest-priority point, closest to from on equal priority.
// Equal priority and distance keep the earlier point.
func (c *Container) bestIndex(from model.Vec3) int {
	best := 0
	bestPriority := c.points[0].Priority
	bestDist := c.points[0].Position().DistanceSquared(from)

	for i := 1; i < len(c.points); i++ {
		p := c.points[i]
		d := p.Position().DistanceSquared(from)
		if p.Priority > bestPriority || (p.Priority == bestPriority && d < bestDist) {
			best, bestPriority, bestDist = i, p.Priority, d
		}
	}
	return best
}

// nextIndex returns the point after cursor, wrapping around.
func (c *Container) nextIndex(cursor int) int {
	if cursor < 0 || cursor >= len(c.points) {
		return 0
	}
	return (cursor + 1) % len(c.points)
}

// followingIndex returns the index after i, or -1 when there is none.
// Sequential routes wrap around, a single point has no follower.
func (c *Container) followingIndex(i int) int {
	if i < 0 || len(c.points) < 2 {
		return noCursor
	}
	if i+1 < len(c.points) {
		return i + 1
	}
	if c.selector == SelectSequential {
		return 0
	}
	return noCursor
}
