package model

import "time"

// AgentTemplate holds agent tuning shared by every spawn of the template.
type AgentTemplate struct {
	ID             int32
	Name           string
	AttackDistance float64
	BodyRadius     float64
	MovementSpeed  float64
	TargetUltimate bool
	Areas          []AreaSpec
}

// AreaSpec describes one observation area (circle or cone sonar) of a template.
type AreaSpec struct {
	ID         uint32
	Type       ObservationType
	Priority   int32
	Radius     float64
	Angle      float64 // degrees, 360 for a circle
	Yaw        float64 // degrees
	Offset     Vec3
	TargetMask uint32
	ChaseSpeed float64
}

// RouteWaypoint is a stored patrol route point.
type RouteWaypoint struct {
	Seq            int32
	Position       Vec3
	Action         PointAction
	Priority       int32
	AccuracyRadius float64
	MovementSpeed  float64
	TransferDelay  time.Duration
}

// PathPoint builds a fixed patrol path point from the waypoint.
func (w RouteWaypoint) PathPoint() *PathPoint {
	p := NewFixedPathPoint(w.Position)
	p.Kind = KindPatrolFollowing
	p.Action = w.Action
	p.Priority = w.Priority
	p.MovementSpeed = max(w.MovementSpeed, 0)
	p.TransferDelay = w.TransferDelay
	p.SetAccuracyRadius(w.AccuracyRadius)
	return p
}

// PatrolRoute is an ordered list of waypoints.
type PatrolRoute struct {
	ID        int64
	Name      string
	Waypoints []RouteWaypoint
}

// WeaponSpec describes a weapon carried by a spawned agent.
type WeaponSpec struct {
	Name         string
	Range        float64
	ShotDuration time.Duration
	Magazine     int // 0 means unlimited
	ReloadTime   time.Duration
}

// AgentSpawn places one agent of a template in the world.
type AgentSpawn struct {
	ID         int64
	TemplateID int32
	RouteID    int64 // 0 when the agent has no route
	Position   Vec3
	Weapons    []WeaponSpec
}
