package pursuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/pursuit/internal/model"
)

const frame = 100 * time.Millisecond

func TestController_StopArrivalWaitsThenContinues(t *testing.T) {
	a := model.NewVec3(0, 0, 0)
	b := model.NewVec3(10, 0, 0)
	h := newHarness([]*model.PathPoint{
		patrolPoint(a, model.ActionStop, 2*time.Second),
		patrolPoint(b, model.ActionContinuePath, 0),
	})
	h.nav.pos = a

	h.ctrl.Activate()
	require.Equal(t, model.StateFollowingPath, h.ctrl.State())
	require.Equal(t, 0, h.ctrl.Cursor())

	h.frame(frame)
	assert.Equal(t, model.StateWaiting, h.ctrl.State())
	assert.Zero(t, h.nav.speed)
	assert.Equal(t, 1, h.ctrl.PendingContinuations())

	// dwell is not over yet
	h.sched.Advance(time.Second)
	assert.Equal(t, model.StateWaiting, h.ctrl.State())

	h.sched.Advance(time.Second)
	assert.Equal(t, model.StateFollowingPath, h.ctrl.State())
	assert.Equal(t, 1, h.ctrl.Cursor())
	assert.Equal(t, b, h.nav.dest)
	assert.Zero(t, h.ctrl.PendingContinuations())
}

func TestController_PatrolArrivalWithinAccuracyRadius(t *testing.T) {
	route := []*model.PathPoint{
		patrolPoint(model.NewVec3(0, 0, 0), model.ActionContinuePath, 0),
		patrolPoint(model.NewVec3(10, 0, 0), model.ActionContinuePath, 0),
		patrolPoint(model.NewVec3(20, 0, 0), model.ActionContinuePath, 0),
	}
	h := newHarness(route)
	h.nav.pos = model.NewVec3(9.7, 0, 0)

	h.ctrl.Activate()
	require.Equal(t, 1, h.ctrl.Cursor())

	h.frame(frame)
	assert.Equal(t, model.StateFollowingPath, h.ctrl.State())
	assert.Equal(t, 2, h.ctrl.Cursor())
	assert.Equal(t, model.NewVec3(20, 0, 0), h.nav.dest)

	// far from the point nothing happens
	h.frame(frame)
	assert.Equal(t, 2, h.ctrl.Cursor())
	assert.Equal(t, 2.0, h.nav.speed)
}

func TestController_PathPendingDefersArrival(t *testing.T) {
	h := newHarness([]*model.PathPoint{
		patrolPoint(model.NewVec3(0, 0, 0), model.ActionStop, time.Second),
	})
	h.ctrl.Activate()
	h.nav.pending = true

	h.frame(frame)
	assert.Equal(t, model.StateFollowingPath, h.ctrl.State())

	h.nav.pending = false
	h.frame(frame)
	assert.Equal(t, model.StateWaiting, h.ctrl.State())
}

func TestController_SuspicionCandidateStartsInvestigation(t *testing.T) {
	h := newHarness([]*model.PathPoint{
		patrolPoint(model.NewVec3(0, 0, 0), model.ActionContinuePath, 0),
		patrolPoint(model.NewVec3(10, 0, 0), model.ActionContinuePath, 0),
	})
	h.ctrl.Activate()

	noise := model.NewVec3(5, 0, 5)
	h.percept.publish(suspicionCandidate(h.markers, noise, 5))
	h.ctrl.MergeTick()
	require.Equal(t, model.DataProcessed, h.percept.state)
	require.Equal(t, 1, h.ctrl.Suspicion().Len())

	h.frame(frame)
	assert.Equal(t, model.StateFollowingSuspicion, h.ctrl.State())
	assert.Equal(t, noise, h.nav.dest)
	assert.Equal(t, 0, h.ctrl.Cursor())
}

func TestController_DirectTargetHighestPriorityWins(t *testing.T) {
	h := newHarness(nil)
	h.ctrl.Activate()

	near := h.markers.Spawn(model.NewVec3(3, 0, 0))
	far := h.markers.Spawn(model.NewVec3(30, 0, 0))
	h.percept.publish(directCandidate(near, 3), directCandidate(far, 7))
	h.ctrl.MergeTick()

	h.frame(frame)
	require.Equal(t, model.StateFollowingTarget, h.ctrl.State())
	assert.Same(t, far, h.ctrl.Direct().At(h.ctrl.Cursor()).Anchor)
	assert.Equal(t, far.Position(), h.nav.dest)
}

func TestController_FailedShotDoesNotAttack(t *testing.T) {
	h := newHarness(nil)
	h.weapon.fire = false
	h.ctrl.Activate()

	target := h.markers.Spawn(model.NewVec3(1, 0, 0))
	h.percept.publish(directCandidate(target, 1))
	h.ctrl.MergeTick()

	h.frame(frame)
	assert.Equal(t, 1, h.weapon.tries)
	assert.Empty(t, h.body.attacks)
	assert.Equal(t, model.StateFollowingTarget, h.ctrl.State())
	assert.Zero(t, h.ctrl.PendingContinuations())
}

func TestController_AttackThenReevaluate(t *testing.T) {
	h := newHarness(nil)
	h.ctrl.Activate()

	target := h.markers.Spawn(model.NewVec3(1, 0, 0))
	h.percept.publish(directCandidate(target, 1))
	h.ctrl.MergeTick()

	h.ctrl.Update(frame)
	require.Equal(t, model.StateAttacking, h.ctrl.State())
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, h.body.attacks)

	// attacking freezes decisions
	h.ctrl.Update(frame)
	assert.Equal(t, model.StateAttacking, h.ctrl.State())
	assert.Equal(t, 1, h.weapon.tries)

	h.sched.Advance(500 * time.Millisecond)
	assert.Equal(t, model.StateFollowingTarget, h.ctrl.State())
}

func TestController_NotReadyOrInvalidTargetSkipsShot(t *testing.T) {
	tests := []struct {
		name  string
		busy  bool
		valid bool
	}{
		{name: "body busy", busy: true, valid: true},
		{name: "target invalid", busy: false, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(nil, func(_ *Config, d *Deps) {
				d.Validator = fakeValidator{valid: tt.valid}
			})
			h.body.busy = tt.busy
			h.ctrl.Activate()

			target := h.markers.Spawn(model.NewVec3(1, 0, 0))
			h.percept.publish(directCandidate(target, 1))
			h.ctrl.MergeTick()

			h.frame(frame)
			assert.Zero(t, h.weapon.tries)
			assert.Equal(t, model.StateFollowingTarget, h.ctrl.State())
		})
	}
}

func TestController_ReloadsEmptyMagazine(t *testing.T) {
	mag := &fakeMagazine{
		fakeWeapon: fakeWeapon{rng: 2, shot: 300 * time.Millisecond, fire: true},
		empty:      true,
		reload:     time.Second,
	}
	h := newHarness(nil, func(_ *Config, d *Deps) {
		d.Weapons = []Weapon{mag}
	})
	h.ctrl.Activate()

	target := h.markers.Spawn(model.NewVec3(1, 0, 0))
	h.percept.publish(directCandidate(target, 1))
	h.ctrl.MergeTick()

	h.ctrl.Update(frame)
	require.Equal(t, model.StateReloading, h.ctrl.State())
	assert.Equal(t, 1, mag.reloads)
	assert.Zero(t, mag.tries)

	h.sched.Advance(time.Second)
	assert.Equal(t, model.StateFollowingTarget, h.ctrl.State())

	h.ctrl.Update(frame)
	assert.Equal(t, model.StateAttacking, h.ctrl.State())
}

func TestController_LostTargetBecomesSingleSuspicion(t *testing.T) {
	h := newHarness(nil)
	h.ctrl.Activate()

	target := h.markers.Spawn(model.NewVec3(10, 0, 0))
	other := h.markers.Spawn(model.NewVec3(-10, 0, 0))
	h.percept.publish(directCandidate(target, 5), directCandidate(other, 1))
	h.ctrl.MergeTick()
	h.frame(frame)
	require.Equal(t, model.StateFollowingTarget, h.ctrl.State())
	require.Same(t, target, h.ctrl.Direct().At(h.ctrl.Cursor()).Anchor)

	target.SetPosition(model.NewVec3(12, 0, 0))
	live := h.markers.Live()

	h.percept.publish()
	h.ctrl.MergeTick()

	assert.Equal(t, model.StateFollowingSuspicion, h.ctrl.State())
	assert.Zero(t, h.ctrl.Direct().Len())
	require.Equal(t, 1, h.ctrl.Suspicion().Len())

	p := h.ctrl.Suspicion().At(h.ctrl.Cursor())
	require.NotNil(t, p)
	assert.Equal(t, model.KindSuspicion, p.Kind)
	assert.Equal(t, model.ActionStop, p.Action)
	assert.True(t, p.Owned)
	assert.NotSame(t, target, p.Anchor)
	assert.Equal(t, model.NewVec3(12, 0, 0), p.Position())
	assert.Equal(t, 0.5, p.AccuracyRadius)
	assert.Equal(t, time.Second, p.TransferDelay)
	assert.Equal(t, live+1, h.markers.Live())

	// the live target keeps moving, the memory does not
	target.SetPosition(model.NewVec3(20, 0, 0))
	assert.Equal(t, model.NewVec3(12, 0, 0), p.Position())

	h.frame(frame)
	assert.Equal(t, model.StateFollowingSuspicion, h.ctrl.State())
	assert.Equal(t, model.NewVec3(12, 0, 0), h.nav.dest)
}

func TestController_LostSecondaryTargetIsDemoted(t *testing.T) {
	h := newHarness(nil)
	h.ctrl.Activate()

	a := h.markers.Spawn(model.NewVec3(10, 0, 0))
	b := h.markers.Spawn(model.NewVec3(-10, 0, 0))
	h.percept.publish(directCandidate(a, 1), directCandidate(b, 5))
	h.ctrl.MergeTick()
	h.frame(frame)
	require.Same(t, b, h.ctrl.Direct().At(h.ctrl.Cursor()).Anchor)
	require.Equal(t, 1, h.ctrl.Cursor())

	// a leaves sight, b stays: cursor shifts with the removal
	h.percept.publish(directCandidate(b, 5))
	h.ctrl.MergeTick()

	assert.Equal(t, model.StateFollowingTarget, h.ctrl.State())
	require.Equal(t, 1, h.ctrl.Direct().Len())
	assert.Equal(t, 0, h.ctrl.Cursor())
	assert.Same(t, b, h.ctrl.Direct().At(h.ctrl.Cursor()).Anchor)
	require.Equal(t, 1, h.ctrl.Suspicion().Len())
	assert.Equal(t, a.Position(), h.ctrl.Suspicion().At(0).Position())
}

func TestController_MergeTickSkipsDuplicates(t *testing.T) {
	h := newHarness(nil)
	h.ctrl.Activate()

	target := h.markers.Spawn(model.NewVec3(10, 0, 0))
	h.percept.publish(directCandidate(target, 1))
	h.ctrl.MergeTick()
	h.percept.publish(directCandidate(target, 1))
	h.ctrl.MergeTick()

	assert.Equal(t, 1, h.ctrl.Direct().Len())
}

func TestController_MergeTickRequiresTransferred(t *testing.T) {
	h := newHarness(nil)
	h.ctrl.Activate()

	h.percept.candidates = []*model.PathPoint{
		suspicionCandidate(h.markers, model.NewVec3(1, 0, 1), 1),
	}
	h.percept.suspicion = true
	h.percept.state = model.DataUpdated
	h.ctrl.MergeTick()

	assert.Zero(t, h.ctrl.Suspicion().Len())
	assert.Equal(t, model.DataUpdated, h.percept.state)
}

func TestController_UpdateSkipsTargetChecksUntilProcessed(t *testing.T) {
	h := newHarness([]*model.PathPoint{
		patrolPoint(model.NewVec3(50, 0, 0), model.ActionContinuePath, 0),
	})
	h.ctrl.Activate()

	h.ctrl.Suspicion().Add(suspicionCandidate(h.markers, model.NewVec3(1, 0, 1), 1))
	h.percept.state = model.DataUpdated

	h.frame(frame)
	assert.Equal(t, model.StateFollowingPath, h.ctrl.State())

	h.percept.state = model.DataProcessed
	h.frame(frame)
	assert.Equal(t, model.StateFollowingSuspicion, h.ctrl.State())
}

func TestController_SuspicionStopThenReturnToPatrol(t *testing.T) {
	start := model.NewVec3(0, 0, 0)
	h := newHarness([]*model.PathPoint{
		patrolPoint(start, model.ActionContinuePath, 0),
		patrolPoint(model.NewVec3(40, 0, 0), model.ActionContinuePath, 0),
	})
	h.nav.pos = model.NewVec3(0, 0, 5)
	h.ctrl.Activate()

	noise := model.NewVec3(0, 0, 5.5)
	h.percept.publish(suspicionCandidate(h.markers, noise, 1))
	h.ctrl.MergeTick()

	h.frame(frame)
	require.Equal(t, model.StateWaiting, h.ctrl.State())
	require.Equal(t, 1, h.ctrl.PendingContinuations())

	h.sched.Advance(2 * time.Second)
	// investigation over, the next frame reselects
	assert.Zero(t, h.ctrl.Suspicion().Len())

	h.ctrl.Update(frame)
	assert.Equal(t, model.StateReturningPath, h.ctrl.State())
	assert.Equal(t, start, h.nav.dest)
}

func TestController_SuspicionDwellFrameByFrame(t *testing.T) {
	start := model.NewVec3(0, 0, 0)
	h := newHarness([]*model.PathPoint{
		patrolPoint(start, model.ActionContinuePath, 0),
		patrolPoint(model.NewVec3(40, 0, 0), model.ActionContinuePath, 0),
	})
	h.nav.pos = model.NewVec3(0, 0, 5)
	h.ctrl.Activate()

	h.percept.publish(suspicionCandidate(h.markers, model.NewVec3(0, 0, 5.5), 1))
	h.ctrl.MergeTick()

	// 2s dwell at 100ms frames: the agent keeps re-arriving but waits once
	for i := range 19 {
		h.frame(frame)
		require.Equal(t, model.StateWaiting, h.ctrl.State(), "frame %d", i+1)
		require.Equal(t, 1, h.ctrl.PendingContinuations(), "frame %d", i+1)
		require.Equal(t, 1, h.sched.Pending(), "frame %d", i+1)
	}

	h.frame(frame)
	assert.Zero(t, h.ctrl.Suspicion().Len())
	assert.Zero(t, h.ctrl.PendingContinuations())

	h.frame(frame)
	assert.Equal(t, model.StateReturningPath, h.ctrl.State())
	assert.Equal(t, start, h.nav.dest)
}

func TestController_NewSuspicionBatchRestartsDwell(t *testing.T) {
	h := newHarness([]*model.PathPoint{
		patrolPoint(model.NewVec3(0, 0, 0), model.ActionContinuePath, 0),
	})
	h.nav.pos = model.NewVec3(0, 0, 5)
	h.ctrl.Activate()

	h.percept.publish(suspicionCandidate(h.markers, model.NewVec3(0, 0, 5.5), 1))
	h.ctrl.MergeTick()
	for range 5 {
		h.frame(frame)
	}
	require.Equal(t, model.StateWaiting, h.ctrl.State())
	require.Equal(t, 1, h.ctrl.PendingContinuations())

	far := model.NewVec3(30, 0, 30)
	h.percept.publish(suspicionCandidate(h.markers, far, 1))
	h.ctrl.MergeTick()
	assert.Zero(t, h.ctrl.PendingContinuations())
	assert.Zero(t, h.sched.Pending())

	// well past the old dwell, the new investigation is still running
	for range 30 {
		h.frame(frame)
	}
	assert.Equal(t, model.StateFollowingSuspicion, h.ctrl.State())
	assert.Equal(t, 1, h.ctrl.Suspicion().Len())
	assert.Equal(t, far, h.nav.dest)
}

func TestController_DirectStopDwellScheduledOnce(t *testing.T) {
	h := newHarness(nil)
	h.ctrl.Activate()

	target := h.markers.Spawn(model.NewVec3(1, 0, 0))
	p := directCandidate(target, 1)
	p.Action = model.ActionStop
	p.TransferDelay = time.Second
	h.percept.publish(p)
	h.ctrl.MergeTick()

	for range 5 {
		h.frame(frame)
		require.Equal(t, model.StateWaiting, h.ctrl.State())
		require.Equal(t, 1, h.ctrl.PendingContinuations())
	}
}

func TestController_DeadAgentIgnoresBatch(t *testing.T) {
	h := newHarness(nil)
	h.ctrl.Activate()
	h.percept.dead = true
	h.frame(frame)
	require.Equal(t, model.StateDead, h.ctrl.State())

	h.percept.publish(suspicionCandidate(h.markers, model.NewVec3(3, 0, 3), 1))
	h.ctrl.MergeTick()

	assert.Zero(t, h.ctrl.Suspicion().Len())
	assert.Equal(t, model.DataTransferred, h.percept.state)
}

func TestController_TargetCancelsPatrolDwell(t *testing.T) {
	h := newHarness([]*model.PathPoint{
		patrolPoint(model.NewVec3(0, 0, 0), model.ActionStop, 5*time.Second),
		patrolPoint(model.NewVec3(10, 0, 0), model.ActionContinuePath, 0),
	})
	h.ctrl.Activate()
	h.frame(frame)
	require.Equal(t, model.StateWaiting, h.ctrl.State())
	require.Equal(t, 1, h.ctrl.PendingContinuations())

	target := h.markers.Spawn(model.NewVec3(20, 0, 0))
	h.percept.publish(directCandidate(target, 1))
	h.ctrl.MergeTick()
	h.frame(frame)

	assert.Equal(t, model.StateFollowingTarget, h.ctrl.State())
	assert.Zero(t, h.ctrl.PendingContinuations())
	assert.Zero(t, h.sched.Pending())
}

func TestController_PathUpdateThrottle(t *testing.T) {
	h := newHarness(nil)
	h.ctrl.Activate()

	target := h.markers.Spawn(model.NewVec3(20, 0, 0))
	h.percept.publish(directCandidate(target, 1))
	h.ctrl.MergeTick()
	h.frame(frame)
	require.Equal(t, model.StateFollowingTarget, h.ctrl.State())
	sets := h.nav.destSets

	target.SetPosition(model.NewVec3(25, 0, 0))
	h.frame(frame)
	assert.Equal(t, sets, h.nav.destSets)
	assert.Equal(t, model.NewVec3(20, 0, 0), h.nav.dest)

	for range 10 {
		h.frame(frame)
	}
	assert.Equal(t, model.NewVec3(25, 0, 0), h.nav.dest)
}

func TestController_DeathStopsEverything(t *testing.T) {
	h := newHarness([]*model.PathPoint{
		patrolPoint(model.NewVec3(0, 0, 0), model.ActionStop, 5*time.Second),
	})
	h.ctrl.Activate()
	h.frame(frame)
	require.Equal(t, 1, h.ctrl.PendingContinuations())

	h.percept.dead = true
	h.frame(frame)
	h.frame(frame)

	assert.Equal(t, model.StateDead, h.ctrl.State())
	assert.Equal(t, 1, h.body.deaths)
	assert.Zero(t, h.ctrl.PendingContinuations())
	assert.Zero(t, h.sched.Pending())
	assert.Zero(t, h.nav.speed)
}

func TestController_DeactivateDropsTargets(t *testing.T) {
	h := newHarness(nil)
	h.ctrl.Activate()

	h.percept.publish(suspicionCandidate(h.markers, model.NewVec3(0.2, 0, 0), 1))
	h.ctrl.MergeTick()
	h.frame(frame)
	require.Equal(t, 1, h.ctrl.PendingContinuations())
	live := h.markers.Live()

	h.ctrl.Deactivate()
	assert.False(t, h.ctrl.Active())
	assert.Zero(t, h.ctrl.Suspicion().Len())
	assert.Zero(t, h.ctrl.PendingContinuations())
	assert.Equal(t, live-1, h.markers.Live())

	// inactive controllers ignore frames and batches
	h.frame(frame)
	h.percept.publish(suspicionCandidate(h.markers, model.NewVec3(1, 0, 0), 1))
	h.ctrl.MergeTick()
	assert.Zero(t, h.ctrl.Suspicion().Len())

	h.ctrl.Activate()
	assert.Equal(t, model.StateFollowingPath, h.ctrl.State())
	assert.Equal(t, 0, h.ctrl.Cursor())
}

func TestController_EmptyPatrolGetsStopPoint(t *testing.T) {
	h := newHarness(nil)
	h.nav.pos = model.NewVec3(3, 0, 4)

	require.Equal(t, 1, h.ctrl.Patrol().Len())
	p := h.ctrl.Patrol().At(0)
	assert.Equal(t, model.ActionStop, p.Action)
	assert.Equal(t, time.Second, p.TransferDelay)
	assert.True(t, p.Owned)
}

func TestController_SwitchWeapon(t *testing.T) {
	second := &fakeWeapon{rng: 15}
	h := newHarness(nil, func(_ *Config, d *Deps) {
		d.Weapons = append(d.Weapons, second)
	})

	require.NoError(t, h.ctrl.SwitchWeapon(1))
	assert.Equal(t, 1, second.activated)
	assert.Equal(t, 15.0, h.ctrl.AttackDistance())

	h.ctrl.Activate()
	h.frame(frame)
	assert.Equal(t, 15.0, h.percept.attackDist)

	assert.Error(t, h.ctrl.SwitchWeapon(2))
	assert.Error(t, h.ctrl.SwitchWeapon(-1))
}
