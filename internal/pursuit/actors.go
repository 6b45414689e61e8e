package pursuit

import (
	"time"

	"github.com/udisondev/pursuit/internal/clock"
	"github.com/udisondev/pursuit/internal/model"
)

// Navigator is the low-level navigation agent (path following, steering).
type Navigator interface {
	Position() model.Vec3
	SetDestination(dest model.Vec3)
	Destination() model.Vec3
	RemainingDistance() float64
	PathPending() bool
	SetSpeed(speed float64)
	Speed() float64
	DesiredVelocity() model.Vec3
}

// Body is the animation layer.
type Body interface {
	Move(velocity model.Vec3)
	Attack(duration time.Duration)
	Dead()
	IsDead() bool
	IsReadyForAction() bool
}

// Weapon is the firing mechanism of the active weapon.
type Weapon interface {
	Range() float64
	ShotDuration() time.Duration
	TryShoot() bool
	Activate()
}

// Reloader is implemented by weapons with a magazine.
type Reloader interface {
	NeedsReload() bool
	// Reload starts reloading and returns how long it takes.
	Reload() time.Duration
}

// TargetValidator confirms a live target anchor still belongs to the same target.
type TargetValidator interface {
	IsTargetValid(anchor *model.Marker) bool
}

// Scheduler schedules one-shot continuations on the agent's frame clock.
type Scheduler interface {
	After(delay time.Duration, fn func()) clock.TaskID
	Cancel(id clock.TaskID)
}

// Perception is the aggregator side of the perception handshake.
type Perception interface {
	State() model.DataState
	MarkProcessed() bool
	Candidates() []*model.PathPoint
	SuspicionDetected() bool
	DirectDetected() bool
	AttackDistance() float64
	SetAttackDistance(d float64)
	IsDead() bool
}
