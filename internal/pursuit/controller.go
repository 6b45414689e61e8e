// Package pursuit implements the per-agent pursuit state machine: it merges
// perception candidates into direct and suspicion containers and decides,
// every frame, where the agent moves and what it does on arrival.
package pursuit

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/pursuit/internal/ai"
	"github.com/udisondev/pursuit/internal/clock"
	"github.com/udisondev/pursuit/internal/model"
	"github.com/udisondev/pursuit/internal/path"
)

// fallbackStopDelay is the dwell time of the point created for an agent without a patrol route.
const fallbackStopDelay = time.Second

// Config holds controller tuning.
type Config struct {
	// PathUpdateDelay throttles destination refreshes of a moving target.
	PathUpdateDelay time.Duration
	// TargetUltimate keeps the current target even when a better one shows up.
	TargetUltimate bool
	// BodyRadius is the arrival tolerance of demoted suspicion points.
	BodyRadius float64
	// DemotedTransferDelay is the dwell time at a demoted suspicion point.
	DemotedTransferDelay time.Duration
}

// Deps are the collaborators a controller drives.
type Deps struct {
	Perception Perception
	Navigator  Navigator
	Body       Body
	Weapons    []Weapon
	Validator  TargetValidator
	Scheduler  Scheduler
	Markers    *model.MarkerPool
	// Patrol is the agent's route; nil or empty gets a single stop point at the spawn position.
	Patrol *path.Container
}

type continuation int

const (
	resumePatrol continuation = iota
	resumeSuspicion
	resumeDirect
)

// Controller owns the patrol, direct and suspicion containers, the shared
// cursor into whichever of them is active, and the pursuit state.
type Controller struct {
	id  uint32
	cfg Config

	perception Perception
	nav        Navigator
	body       Body
	weapons    []Weapon
	weaponIdx  int
	validator  TargetValidator
	sched      Scheduler
	markers    *model.MarkerPool

	patrol    *path.Container
	direct    *path.Container
	suspicion *path.Container
	cursor    int

	state           model.PursuitState
	active          bool
	reselect        bool
	sincePathUpdate time.Duration
	pending         map[clock.TaskID]continuation
}

// New creates an inactive controller in StateFollowingPath.
func New(id uint32, cfg Config, deps Deps) *Controller {
	patrol := deps.Patrol
	if patrol == nil {
		patrol = path.NewSequential()
	}
	if patrol.Len() == 0 {
		p := model.NewOwnedPathPoint(deps.Markers, deps.Navigator.Position())
		p.Kind = model.KindPatrolFollowing
		p.Action = model.ActionStop
		p.TransferDelay = fallbackStopDelay
		patrol.Add(p)
	}

	return &Controller{
		id:         id,
		cfg:        cfg,
		perception: deps.Perception,
		nav:        deps.Navigator,
		body:       deps.Body,
		weapons:    deps.Weapons,
		validator:  deps.Validator,
		sched:      deps.Scheduler,
		markers:    deps.Markers,
		patrol:     patrol,
		direct:     path.NewPriority(),
		suspicion:  path.NewPriority(),
		cursor:     -1,
		state:      model.StateFollowingPath,
		pending:    make(map[clock.TaskID]continuation),
	}
}

// ID returns the agent ID.
func (c *Controller) ID() uint32 { return c.id }

// State returns current pursuit state.
func (c *Controller) State() model.PursuitState { return c.state }

// Active reports whether the controller runs.
func (c *Controller) Active() bool { return c.active }

// Cursor returns the index of the current destination in the active container.
func (c *Controller) Cursor() int { return c.cursor }

// Patrol returns the patrol route container.
func (c *Controller) Patrol() *path.Container { return c.patrol }

// Direct returns the direct target container.
func (c *Controller) Direct() *path.Container { return c.direct }

// Suspicion returns the suspicion target container.
func (c *Controller) Suspicion() *path.Container { return c.suspicion }

// PendingContinuations returns number of scheduled arrival continuations.
func (c *Controller) PendingContinuations() int { return len(c.pending) }

// AttackDistance returns the active weapon's range.
func (c *Controller) AttackDistance() float64 {
	if w := c.weapon(); w != nil {
		return w.Range()
	}
	return 0
}

// SwitchWeapon makes weapon i active.
func (c *Controller) SwitchWeapon(i int) error {
	if i < 0 || i >= len(c.weapons) {
		return fmt.Errorf("weapon index %d out of range [0, %d)", i, len(c.weapons))
	}
	c.weaponIdx = i
	c.weapons[i].Activate()
	return nil
}

// Activate starts the controller from a clean cursor on the closest patrol point.
func (c *Controller) Activate() {
	if c.active {
		return
	}
	c.active = true
	if c.state == model.StateDead {
		return
	}

	if w := c.weapon(); w != nil {
		w.Activate()
	}

	c.cursor = -1
	c.reselect = false
	c.setState(model.StateFollowingPath)
	if dest, ok := c.patrol.ClosestPoint(c.nav.Position(), &c.cursor); ok {
		c.updatePath(dest, true)
		c.nav.SetSpeed(c.patrol.At(c.cursor).MovementSpeed)
	}
}

// Deactivate stops the controller, cancels pending continuations and drops
// pursuit targets.
func (c *Controller) Deactivate() {
	if !c.active {
		return
	}
	c.active = false
	c.cancelPending()
	c.direct.Clear()
	c.suspicion.Clear()
	c.reselect = false
	c.nav.SetSpeed(0)
}

// Update is the per-frame decision step.
func (c *Controller) Update(dt time.Duration) {
	if !c.active {
		return
	}
	if c.perception.IsDead() {
		c.die()
		return
	}

	c.sincePathUpdate += dt
	c.perception.SetAttackDistance(c.AttackDistance())

	if c.reselect {
		c.reselectTarget()
	}

	if c.perception.State() == model.DataProcessed {
		switch {
		case c.state.IsPatrolling():
			c.checkTargets()
		case c.state == model.StateFollowingSuspicion:
			c.checkSuspicion()
		case c.state == model.StateFollowingTarget:
			c.checkTarget()
		case c.state == model.StateAttacking, c.state == model.StateReloading, c.state == model.StateDead:
			return
		}
	}

	if c.state != model.StateAttacking && c.state != model.StateReloading {
		c.updateVelocity()
		c.checkNearness()
	}
}

// IsTargetValid reports whether the agent chases a target that still exists.
func (c *Controller) IsTargetValid() bool {
	if c.state != model.StateFollowingTarget {
		return false
	}
	p := c.direct.At(c.cursor)
	if p == nil {
		return false
	}
	return c.validator.IsTargetValid(p.Anchor)
}

// checkTargets runs in patrol states: any target interrupts the route.
func (c *Controller) checkTargets() {
	switch {
	case c.direct.Len() != 0:
		c.cancelPendingOf(resumePatrol)
		c.follow(c.direct, model.StateFollowingTarget)
	case c.suspicion.Len() != 0:
		c.cancelPendingOf(resumePatrol)
		c.follow(c.suspicion, model.StateFollowingSuspicion)
	}
}

// checkSuspicion runs while investigating.
func (c *Controller) checkSuspicion() {
	switch {
	case c.direct.Len() != 0:
		c.follow(c.direct, model.StateFollowingTarget)
	case c.suspicion.Len() == 0:
		c.returnToPatrol()
	case !c.cfg.TargetUltimate && c.suspicion.Len() > 1:
		c.follow(c.suspicion, model.StateFollowingSuspicion)
	}
}

// checkTarget runs while chasing.
func (c *Controller) checkTarget() {
	switch {
	case c.direct.Len() == 0:
		c.selectClosestTarget()
	case !c.cfg.TargetUltimate && c.direct.Len() > 1:
		c.follow(c.direct, model.StateFollowingTarget)
	default:
		p := c.direct.At(c.cursor)
		if p == nil {
			c.follow(c.direct, model.StateFollowingTarget)
			return
		}
		// targets move: refresh, throttled
		c.updatePath(p.Position(), false)
	}
}

func (c *Controller) reselectTarget() {
	switch c.state {
	case model.StateFollowingTarget, model.StateFollowingSuspicion:
		c.reselect = false
		c.selectClosestTarget()
	}
}

// selectClosestTarget prefers direct targets, then suspicion, then the route.
func (c *Controller) selectClosestTarget() {
	switch {
	case c.direct.Len() != 0:
		c.follow(c.direct, model.StateFollowingTarget)
	case c.suspicion.Len() != 0:
		c.follow(c.suspicion, model.StateFollowingSuspicion)
	default:
		c.returnToPatrol()
	}
}

func (c *Controller) follow(targets *path.Container, state model.PursuitState) {
	dest, ok := targets.SelectDestination(c.nav.Position(), &c.cursor)
	if !ok {
		return
	}
	c.updatePath(dest, true)
	c.setState(state)
}

func (c *Controller) returnToPatrol() {
	dest, ok := c.patrol.ClosestPoint(c.nav.Position(), &c.cursor)
	if !ok {
		return
	}
	c.updatePath(dest, true)
	c.setState(model.StateReturningPath)
}

// updatePath sets a new destination; non-immediate updates are throttled by PathUpdateDelay.
func (c *Controller) updatePath(dest model.Vec3, immediate bool) {
	if !immediate && c.sincePathUpdate < c.cfg.PathUpdateDelay {
		return
	}
	c.nav.SetDestination(dest)
	c.sincePathUpdate = 0
}

// activeContainer returns the container the cursor points into.
func (c *Controller) activeContainer() *path.Container {
	switch c.state {
	case model.StateFollowingPath, model.StateReturningPath:
		return c.patrol
	case model.StateFollowingSuspicion:
		return c.suspicion
	case model.StateFollowingTarget:
		return c.direct
	default:
		return nil
	}
}

func (c *Controller) updateVelocity() {
	speed := 0.0
	if targets := c.activeContainer(); targets != nil {
		if p := targets.At(c.cursor); p != nil && c.nav.RemainingDistance() > p.AccuracyRadius {
			speed = targets.ApproachSpeed(p.MovementSpeed, c.nav.Position())
		}
	}

	c.nav.SetSpeed(speed)
	c.body.Move(c.nav.DesiredVelocity())
}

func (c *Controller) die() {
	if c.state != model.StateDead {
		from := c.state
		c.cancelPending()
		c.nav.SetSpeed(0)
		c.state = model.StateDead
		slog.Info("agent died", "agentID", c.id, "state", from)
	}
	if !c.body.IsDead() {
		c.body.Dead()
	}
}

func (c *Controller) weapon() Weapon {
	if c.weaponIdx < 0 || c.weaponIdx >= len(c.weapons) {
		return nil
	}
	return c.weapons[c.weaponIdx]
}

func (c *Controller) setState(state model.PursuitState) {
	if c.state == state {
		return
	}
	if ai.IsDebugEnabled() {
		slog.Debug("pursuit state changed",
			"agentID", c.id,
			"from", c.state,
			"to", state,
			"cursor", c.cursor)
	}
	c.state = state
}
