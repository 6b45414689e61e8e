package model

import (
	"testing"
	"time"
)

func TestPathPoint_Position(t *testing.T) {
	pool := NewMarkerPool()
	anchor := pool.Spawn(NewVec3(1, 0, 1))

	borrowed := NewPathPoint(anchor)
	fixed := NewFixedPathPoint(NewVec3(7, 0, 7))

	anchor.SetPosition(NewVec3(2, 0, 2))
	if borrowed.Position() != NewVec3(2, 0, 2) {
		t.Errorf("anchored Position() = %v, want live anchor position", borrowed.Position())
	}
	if fixed.Position() != NewVec3(7, 0, 7) {
		t.Errorf("fixed Position() = %v, want (7,0,7)", fixed.Position())
	}
}

func TestPathPoint_ReleaseOwnership(t *testing.T) {
	pool := NewMarkerPool()
	live := pool.Spawn(Vec3{})

	NewPathPoint(live).Release()
	if !live.Alive() {
		t.Error("Release() destroyed a borrowed anchor")
	}

	owned := NewOwnedPathPoint(pool, NewVec3(3, 0, 0))
	owned.Release()
	if owned.Anchor.Alive() {
		t.Error("Release() kept an owned anchor alive")
	}
	if pool.Live() != 1 {
		t.Errorf("Live() = %d, want 1", pool.Live())
	}
}

func TestPathPoint_CloneNeverOwns(t *testing.T) {
	pool := NewMarkerPool()
	p := NewOwnedPathPoint(pool, NewVec3(1, 0, 0))
	p.Kind = KindSuspicion
	p.TransferDelay = time.Second
	p.Claim()

	c := p.Clone()
	if c.Owned || c.Claimed() {
		t.Errorf("Clone() owned = %v, claimed = %v, want false, false", c.Owned, c.Claimed())
	}
	if c.Anchor != p.Anchor || c.Kind != KindSuspicion || c.TransferDelay != time.Second {
		t.Error("Clone() must copy metadata and borrow the anchor")
	}

	c.Release()
	if !p.Anchor.Alive() {
		t.Error("releasing a clone destroyed the original's marker")
	}
}

func TestPathPoint_Detach(t *testing.T) {
	pool := NewMarkerPool()
	target := pool.Spawn(NewVec3(4, 0, 4))

	p := NewPathPoint(target)
	p.Detach(pool)

	if !p.Owned || p.Anchor == target {
		t.Fatal("Detach() must spawn an owned anchor")
	}
	target.SetPosition(NewVec3(9, 0, 9))
	if p.Position() != NewVec3(4, 0, 4) {
		t.Errorf("detached Position() = %v, want (4,0,4)", p.Position())
	}
	if !target.Alive() {
		t.Error("Detach() destroyed the borrowed anchor")
	}

	// detaching an owned point replaces its marker
	old := p.Anchor
	p.Detach(pool)
	if old.Alive() {
		t.Error("Detach() leaked the previous owned marker")
	}
	if pool.Live() != 2 {
		t.Errorf("Live() = %d, want 2", pool.Live())
	}
}

func TestPathPoint_SetAccuracyRadius(t *testing.T) {
	p := NewFixedPathPoint(Vec3{})
	p.SetAccuracyRadius(-3)
	if p.AccuracyRadius != 0 {
		t.Errorf("AccuracyRadius = %v, want 0", p.AccuracyRadius)
	}
	p.SetAccuracyRadius(1.5)
	if p.AccuracyRadius != 1.5 {
		t.Errorf("AccuracyRadius = %v, want 1.5", p.AccuracyRadius)
	}
}

func TestRouteWaypoint_PathPoint(t *testing.T) {
	w := RouteWaypoint{
		Position:       NewVec3(1, 0, 2),
		Action:         ActionStop,
		Priority:       4,
		AccuracyRadius: -1,
		MovementSpeed:  -2,
		TransferDelay:  3 * time.Second,
	}

	p := w.PathPoint()
	if p.Anchor != nil || p.Position() != NewVec3(1, 0, 2) {
		t.Errorf("PathPoint() must be fixed at the waypoint, got %v", p.Position())
	}
	if p.Kind != KindPatrolFollowing || p.Action != ActionStop || p.Priority != 4 {
		t.Errorf("PathPoint() kind/action/priority = %v/%v/%d", p.Kind, p.Action, p.Priority)
	}
	if p.AccuracyRadius != 0 || p.MovementSpeed != 0 {
		t.Errorf("negative radius and speed must clamp, got %v and %v", p.AccuracyRadius, p.MovementSpeed)
	}
	if p.TransferDelay != 3*time.Second {
		t.Errorf("TransferDelay = %v, want 3s", p.TransferDelay)
	}
}
