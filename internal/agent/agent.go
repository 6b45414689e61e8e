// Package agent wires one pursuing NPC: its observation areas, the
// perception aggregator, the pursuit controller, its cooperative clock and
// the physical actors, behind the ai.Controller interface.
package agent

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/pursuit/internal/actor"
	"github.com/udisondev/pursuit/internal/clock"
	"github.com/udisondev/pursuit/internal/config"
	"github.com/udisondev/pursuit/internal/model"
	"github.com/udisondev/pursuit/internal/path"
	"github.com/udisondev/pursuit/internal/perception"
	"github.com/udisondev/pursuit/internal/pursuit"
	"github.com/udisondev/pursuit/internal/sensor"
	"github.com/udisondev/pursuit/internal/world"
)

// defaultShotDuration is used by the fallback weapon of an unarmed agent.
const defaultShotDuration = 500 * time.Millisecond

// Spec describes an agent to build.
type Spec struct {
	ID       uint32
	Position model.Vec3
	Template model.AgentTemplate
	// Route is the patrol route, nil for a guard standing at Position.
	Route   *model.PatrolRoute
	Weapons []model.WeaponSpec
}

// Agent is a frame-ticked pursuing NPC.
type Agent struct {
	id     uint32
	tuning config.Agent

	registry *world.Registry
	markers  *model.MarkerPool
	body     *world.Target

	nav     *actor.Navigator
	anim    *actor.Body
	weapons []*actor.Weapon

	sensors    []sensor.Sensor
	aggregator *perception.Aggregator
	controller *pursuit.Controller
	sched      *clock.Scheduler

	started bool
}

// New builds an agent and adds its body to the registry as a detectable target.
func New(spec Spec, tuning config.Agent, registry *world.Registry, markers *model.MarkerPool) (*Agent, error) {
	tpl := spec.Template
	attackDistance := orDefault(tpl.AttackDistance, tuning.AttackDistance)
	bodyRadius := orDefault(tpl.BodyRadius, tuning.BodyRadius)
	speed := orDefault(tpl.MovementSpeed, tuning.MovementSpeed)

	body := world.NewTarget(markers, spec.ID, spec.Position, []world.TracingArea{
		{Layer: tuning.Layer, State: model.HitEnabled},
	})
	if err := registry.AddTarget(body); err != nil {
		markers.Destroy(body.Anchor())
		return nil, fmt.Errorf("adding body of agent %d: %w", spec.ID, err)
	}

	a := &Agent{
		id:       spec.ID,
		tuning:   tuning,
		registry: registry,
		markers:  markers,
		body:     body,
		nav:      actor.NewNavigator(spec.Position, body.Anchor()),
		anim:     actor.NewBody(),
		sched:    clock.NewScheduler(),
	}

	for _, area := range tpl.Areas {
		a.sensors = append(a.sensors, sensor.NewSonar(sensor.SonarConfig{
			ID:         area.ID,
			Type:       area.Type,
			Priority:   area.Priority,
			ChaseSpeed: area.ChaseSpeed,
			Radius:     area.Radius,
			Angle:      area.Angle,
			Yaw:        area.Yaw,
			Offset:     area.Offset,
			TargetMask: area.TargetMask,
		}, a.nav))
	}

	weaponSpecs := spec.Weapons
	if len(weaponSpecs) == 0 {
		weaponSpecs = []model.WeaponSpec{{Name: "melee", Range: attackDistance, ShotDuration: defaultShotDuration}}
	}
	weapons := make([]pursuit.Weapon, 0, len(weaponSpecs))
	for _, ws := range weaponSpecs {
		w := actor.NewWeapon(ws)
		a.weapons = append(a.weapons, w)
		weapons = append(weapons, w)
	}

	a.aggregator = perception.New(spec.ID, registry, markers, a.sensors, perception.Config{
		SuspicionWait:  tuning.SuspicionWait,
		AccuracyRadius: tuning.AccuracyRadius,
		MovementSpeed:  speed,
		AttackDistance: attackDistance,
		Layer:          tuning.Layer,
	})

	patrol := path.NewSequential()
	if spec.Route != nil {
		for _, w := range spec.Route.Waypoints {
			p := w.PathPoint()
			if p.MovementSpeed == 0 {
				p.MovementSpeed = speed
			}
			patrol.Add(p)
		}
	}

	a.controller = pursuit.New(spec.ID, pursuit.Config{
		PathUpdateDelay:      tuning.PathUpdateDelay,
		TargetUltimate:       tpl.TargetUltimate,
		BodyRadius:           bodyRadius,
		DemotedTransferDelay: tuning.DemotedTransferDelay,
	}, pursuit.Deps{
		Perception: a.aggregator,
		Navigator:  a.nav,
		Body:       a.anim,
		Weapons:    weapons,
		Validator:  registry,
		Scheduler:  a.sched,
		Markers:    markers,
		Patrol:     patrol,
	})

	return a, nil
}

// ID returns agent ID.
func (a *Agent) ID() uint32 { return a.id }

// State returns current pursuit state.
func (a *Agent) State() model.PursuitState { return a.controller.State() }

// Controller returns the pursuit controller.
func (a *Agent) Controller() *pursuit.Controller { return a.controller }

// Aggregator returns the perception aggregator.
func (a *Agent) Aggregator() *perception.Aggregator { return a.aggregator }

// Navigator returns the agent's navigator.
func (a *Agent) Navigator() *actor.Navigator { return a.nav }

// Body returns the agent's animation body.
func (a *Agent) Body() *actor.Body { return a.anim }

// Weapons returns the agent's weapons.
func (a *Agent) Weapons() []*actor.Weapon { return a.weapons }

// Sensors returns the agent's observation areas.
func (a *Agent) Sensors() []sensor.Sensor { return a.sensors }

// Start activates the controller and schedules the three perception stages.
func (a *Agent) Start() {
	if a.started {
		return
	}
	a.started = true

	a.sched.Every(a.tuning.SweepPeriod, a.sweep)
	a.sched.Every(a.tuning.AggregatePeriod, a.aggregator.Tick)
	a.sched.Every(a.tuning.MergePeriod, a.controller.MergeTick)
	a.controller.Activate()

	slog.Info("agent started",
		"agentID", a.id,
		"position", a.nav.Position(),
		"sensors", len(a.sensors),
		"route", a.controller.Patrol().Len())
}

// Stop cancels every task and releases the agent's affection state.
func (a *Agent) Stop() {
	if !a.started {
		return
	}
	a.started = false

	a.sched.CancelAll()
	a.registry.ClearMasks(a.id)
	a.aggregator.Reset()
	a.controller.Deactivate()

	slog.Info("agent stopped", "agentID", a.id, "state", a.controller.State())
}

// Tick runs the decision step, then the agent's clock, then the actors.
func (a *Agent) Tick(dt time.Duration) {
	if !a.started {
		return
	}
	a.controller.Update(dt)
	a.sched.Advance(dt)

	a.nav.Step(dt.Seconds())
	a.anim.Step(dt)
	for _, w := range a.weapons {
		w.Step(dt)
	}
}

// Kill marks the agent dead and moves its body to the dead layer, so other
// agents stop detecting it.
func (a *Agent) Kill() {
	if a.aggregator.IsDead() {
		return
	}
	a.aggregator.Kill(a.tuning.DeadLayer)
	a.body.SetLayer(a.tuning.DeadLayer)
	slog.Info("agent killed", "agentID", a.id, "layer", a.tuning.DeadLayer)
}

// Close removes the agent's body from the registry and destroys its anchor
// and patrol markers. The agent must be stopped first.
func (a *Agent) Close() {
	a.controller.Patrol().Clear()
	a.registry.RemoveTarget(a.id)
	a.markers.Destroy(a.body.Anchor())
}

// sweep runs every observation area and hands the refreshed masks to the aggregator.
func (a *Agent) sweep() {
	if !a.registry.IsActive() {
		return
	}
	for _, s := range a.sensors {
		sensor.Sweep(a.id, s, a.registry)
	}
	a.aggregator.MarkUpdated()
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
