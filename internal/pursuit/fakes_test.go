package pursuit

import (
	"time"

	"github.com/udisondev/pursuit/internal/clock"
	"github.com/udisondev/pursuit/internal/model"
	"github.com/udisondev/pursuit/internal/path"
)

type fakeNav struct {
	pos, dest model.Vec3
	pending   bool
	speed     float64
	destSets  int
}

func (n *fakeNav) Position() model.Vec3           { return n.pos }
func (n *fakeNav) Destination() model.Vec3        { return n.dest }
func (n *fakeNav) RemainingDistance() float64     { return n.pos.Distance(n.dest) }
func (n *fakeNav) PathPending() bool              { return n.pending }
func (n *fakeNav) SetSpeed(speed float64)         { n.speed = speed }
func (n *fakeNav) Speed() float64                 { return n.speed }
func (n *fakeNav) SetDestination(dest model.Vec3) { n.dest = dest; n.destSets++ }

func (n *fakeNav) DesiredVelocity() model.Vec3 {
	return n.dest.Sub(n.pos).Normalized().Scale(n.speed)
}

type fakeBody struct {
	attacks  []time.Duration
	deaths   int
	busy     bool
	lastMove model.Vec3
}

func (b *fakeBody) Move(v model.Vec3)      { b.lastMove = v }
func (b *fakeBody) Attack(d time.Duration) { b.attacks = append(b.attacks, d) }
func (b *fakeBody) Dead()                  { b.deaths++ }
func (b *fakeBody) IsDead() bool           { return b.deaths > 0 }
func (b *fakeBody) IsReadyForAction() bool { return !b.busy }

type fakeWeapon struct {
	rng       float64
	shot      time.Duration
	fire      bool
	tries     int
	activated int
}

func (w *fakeWeapon) Range() float64              { return w.rng }
func (w *fakeWeapon) ShotDuration() time.Duration { return w.shot }
func (w *fakeWeapon) Activate()                   { w.activated++ }

func (w *fakeWeapon) TryShoot() bool {
	w.tries++
	return w.fire
}

type fakeMagazine struct {
	fakeWeapon
	empty   bool
	reload  time.Duration
	reloads int
}

func (m *fakeMagazine) NeedsReload() bool { return m.empty }

func (m *fakeMagazine) Reload() time.Duration {
	m.reloads++
	m.empty = false
	return m.reload
}

type fakeValidator struct{ valid bool }

func (v fakeValidator) IsTargetValid(*model.Marker) bool { return v.valid }

type fakePerception struct {
	state      model.DataState
	candidates []*model.PathPoint
	suspicion  bool
	direct     bool
	attackDist float64
	dead       bool
}

func (p *fakePerception) State() model.DataState         { return p.state }
func (p *fakePerception) Candidates() []*model.PathPoint { return p.candidates }
func (p *fakePerception) SuspicionDetected() bool        { return p.suspicion }
func (p *fakePerception) DirectDetected() bool           { return p.direct }
func (p *fakePerception) AttackDistance() float64        { return p.attackDist }
func (p *fakePerception) SetAttackDistance(d float64)    { p.attackDist = d }
func (p *fakePerception) IsDead() bool                   { return p.dead }

func (p *fakePerception) MarkProcessed() bool {
	if p.state != model.DataTransferred {
		return false
	}
	p.state = model.DataProcessed
	return true
}

// publish hands a candidate batch over the way the aggregator does.
func (p *fakePerception) publish(candidates ...*model.PathPoint) {
	p.candidates = candidates
	p.suspicion, p.direct = false, false
	for _, c := range candidates {
		switch c.Kind {
		case model.KindSuspicion:
			p.suspicion = true
		case model.KindDirectTarget:
			p.direct = true
		}
	}
	p.state = model.DataTransferred
}

type harness struct {
	ctrl    *Controller
	nav     *fakeNav
	body    *fakeBody
	weapon  *fakeWeapon
	percept *fakePerception
	sched   *clock.Scheduler
	markers *model.MarkerPool
}

type harnessOption func(*Config, *Deps)

func newHarness(route []*model.PathPoint, opts ...harnessOption) *harness {
	h := &harness{
		nav:     &fakeNav{},
		body:    &fakeBody{},
		weapon:  &fakeWeapon{rng: 2, shot: 500 * time.Millisecond, fire: true},
		percept: &fakePerception{state: model.DataProcessed},
		sched:   clock.NewScheduler(),
		markers: model.NewMarkerPool(),
	}

	patrol := path.NewSequential()
	for _, p := range route {
		patrol.Add(p)
	}

	cfg := Config{
		PathUpdateDelay:      time.Second,
		BodyRadius:           0.5,
		DemotedTransferDelay: time.Second,
	}
	deps := Deps{
		Perception: h.percept,
		Navigator:  h.nav,
		Body:       h.body,
		Weapons:    []Weapon{h.weapon},
		Validator:  fakeValidator{valid: true},
		Scheduler:  h.sched,
		Markers:    h.markers,
		Patrol:     patrol,
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}

	h.ctrl = New(1, cfg, deps)
	return h
}

// frame runs one decision step and then the agent's clock, like the agent does.
func (h *harness) frame(dt time.Duration) {
	h.ctrl.Update(dt)
	h.sched.Advance(dt)
}

func patrolPoint(pos model.Vec3, action model.PointAction, delay time.Duration) *model.PathPoint {
	p := model.NewFixedPathPoint(pos)
	p.Kind = model.KindPatrolFollowing
	p.Action = action
	p.MovementSpeed = 2
	p.TransferDelay = delay
	p.SetAccuracyRadius(0.5)
	return p
}

func directCandidate(anchor *model.Marker, priority int32) *model.PathPoint {
	p := model.NewPathPoint(anchor)
	p.Kind = model.KindDirectTarget
	p.Action = model.ActionAttack
	p.Priority = priority
	p.MovementSpeed = 4
	p.SetAccuracyRadius(2)
	return p
}

func suspicionCandidate(pool *model.MarkerPool, pos model.Vec3, priority int32) *model.PathPoint {
	p := model.NewOwnedPathPoint(pool, pos)
	p.Kind = model.KindSuspicion
	p.Action = model.ActionStop
	p.Priority = priority
	p.MovementSpeed = 3
	p.TransferDelay = 2 * time.Second
	p.SetAccuracyRadius(1)
	return p
}
