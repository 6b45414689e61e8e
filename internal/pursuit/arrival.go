package pursuit

import (
	"log/slog"
	"time"

	"github.com/udisondev/pursuit/internal/ai"
	"github.com/udisondev/pursuit/internal/clock"
	"github.com/udisondev/pursuit/internal/model"
)

// checkNearness fires the arrival action once the navigator settled on a
// path and the agent is inside the point's tolerance.
func (c *Controller) checkNearness() {
	// a fresh destination reports stale remaining distance until its path is computed
	if c.nav.PathPending() {
		return
	}

	remaining := c.nav.RemainingDistance()
	switch c.state {
	case model.StateFollowingPath, model.StateReturningPath:
		if p := c.patrol.At(c.cursor); p != nil && remaining <= p.AccuracyRadius {
			c.onPatrolArrival(p)
		}
	case model.StateFollowingSuspicion:
		if p := c.suspicion.At(c.cursor); p != nil && remaining <= p.AccuracyRadius {
			c.onSuspicionArrival(p)
		}
	case model.StateFollowingTarget:
		if p := c.direct.At(c.cursor); p != nil && remaining <= c.AttackDistance() {
			c.onDirectArrival(p)
		}
	}
}

func (c *Controller) onPatrolArrival(p *model.PathPoint) {
	switch p.Action {
	case model.ActionContinuePath:
		c.resumePatrolNext()
	case model.ActionStop:
		next := c.resumePatrolClosest
		if c.state == model.StateFollowingPath {
			next = c.resumePatrolNext
		}
		c.stop()
		c.schedule(resumePatrol, p.TransferDelay, next)
	}
}

func (c *Controller) onSuspicionArrival(p *model.PathPoint) {
	switch p.Action {
	case model.ActionStop:
		c.stop()
		// re-arriving at the point while waiting keeps the running dwell
		if !c.hasPending(resumeSuspicion) {
			c.schedule(resumeSuspicion, p.TransferDelay, c.resumeSuspicion)
		}
	default:
		c.resumeSuspicion()
	}
}

func (c *Controller) onDirectArrival(p *model.PathPoint) {
	switch p.Action {
	case model.ActionStop:
		c.stop()
		if !c.hasPending(resumeDirect) {
			c.schedule(resumeDirect, p.TransferDelay, c.resumeDirect)
		}
	case model.ActionAttack:
		c.attack()
	default:
		c.resumeDirect()
	}
}

// attack fires the active weapon when the body is ready and the target is
// still valid, or reloads an empty magazine. Otherwise the target is
// re-evaluated in the same frame.
func (c *Controller) attack() {
	c.nav.SetSpeed(0)

	w := c.weapon()
	if w == nil {
		c.resumeDirect()
		return
	}

	if r, ok := w.(Reloader); ok && r.NeedsReload() {
		c.setState(model.StateReloading)
		c.schedule(resumeDirect, r.Reload(), c.resumeDirect)
		return
	}

	if !c.body.IsReadyForAction() || !c.IsTargetValid() || !w.TryShoot() {
		c.resumeDirect()
		return
	}

	d := w.ShotDuration()
	c.setState(model.StateAttacking)
	c.body.Attack(d)
	c.schedule(resumeDirect, d, c.resumeDirect)
}

func (c *Controller) stop() {
	c.nav.SetSpeed(0)
	c.setState(model.StateWaiting)
}

// resumePatrolNext continues the route with the next point.
func (c *Controller) resumePatrolNext() {
	switch c.state {
	case model.StateWaiting, model.StateFollowingPath, model.StateReturningPath:
	default:
		return
	}
	if dest, ok := c.patrol.SelectDestination(c.nav.Position(), &c.cursor); ok {
		c.updatePath(dest, true)
	}
	c.setState(model.StateFollowingPath)
}

// resumePatrolClosest rejoins the route at its closest point.
func (c *Controller) resumePatrolClosest() {
	switch c.state {
	case model.StateWaiting, model.StateFollowingPath, model.StateReturningPath:
	default:
		return
	}
	if dest, ok := c.patrol.ClosestPoint(c.nav.Position(), &c.cursor); ok {
		c.updatePath(dest, true)
	}
	c.setState(model.StateFollowingPath)
}

// resumeSuspicion ends an investigation and lets the next frame pick a target.
func (c *Controller) resumeSuspicion() {
	switch c.state {
	case model.StateWaiting, model.StateFollowingSuspicion:
	default:
		return
	}
	c.cancelPendingOf(resumeSuspicion)
	c.suspicion.Clear()
	c.cursor = -1
	c.reselect = true
	c.setState(model.StateFollowingSuspicion)
}

// resumeDirect re-evaluates targets after a stop, shot or reload.
func (c *Controller) resumeDirect() {
	switch c.state {
	case model.StateWaiting, model.StateAttacking, model.StateReloading, model.StateFollowingTarget:
	default:
		return
	}
	c.selectClosestTarget()
}

// schedule runs fn after delay unless the controller was deactivated or died meanwhile.
func (c *Controller) schedule(kind continuation, delay time.Duration, fn func()) {
	var id clock.TaskID
	id = c.sched.After(delay, func() {
		delete(c.pending, id)
		if !c.active || c.state == model.StateDead {
			return
		}
		fn()
	})
	c.pending[id] = kind

	if ai.IsDebugEnabled() {
		slog.Debug("continuation scheduled",
			"agentID", c.id,
			"delay", delay,
			"state", c.state)
	}
}

func (c *Controller) cancelPending() {
	for id := range c.pending {
		c.sched.Cancel(id)
		delete(c.pending, id)
	}
}

// cancelPendingOf drops continuations of one kind, so a stale patrol resume
// cannot fire after the agent left the route.
func (c *Controller) cancelPendingOf(kind continuation) {
	for id, k := range c.pending {
		if k == kind {
			c.sched.Cancel(id)
			delete(c.pending, id)
		}
	}
}

func (c *Controller) hasPending(kind continuation) bool {
	for _, k := range c.pending {
		if k == kind {
			return true
		}
	}
	return false
}
