// Package perception drains affection masks into typed candidate path
// points and owns the perception handshake state.
package perception

import (
	"log/slog"
	"time"

	"github.com/udisondev/pursuit/internal/ai"
	"github.com/udisondev/pursuit/internal/model"
	"github.com/udisondev/pursuit/internal/sensor"
)

// Source is the registry view the aggregator reads from.
type Source interface {
	// Affections returns every mask written for observerID.
	Affections(observerID uint32) []model.AffectionMask
	// Anchor returns the marker agents follow for subjectID.
	Anchor(subjectID uint32) (*model.Marker, bool)
}

// Config holds aggregator tuning.
type Config struct {
	// SuspicionWait is how long the agent holds at a suspicion point.
	SuspicionWait time.Duration
	// AccuracyRadius is the arrival tolerance of suspicion candidates.
	AccuracyRadius float64
	// MovementSpeed is used when the area has no chase speed.
	MovementSpeed float64
	// AttackDistance is the initial attack distance (refreshed from the active weapon).
	AttackDistance float64
	// Layer is the agent's own layer while alive.
	Layer int
}

// Aggregator converts affection masks into "possible targets" once per tick.
//
// Handshake writers: the detection sweep calls MarkUpdated, Tick advances
// Updated -> Transferred, the pursuit controller calls MarkProcessed.
type Aggregator struct {
	observerID uint32
	source     Source
	pool       *model.MarkerPool
	areas      []sensor.Sensor
	cfg        Config

	state      model.DataState
	candidates []*model.PathPoint

	suspicionDetected bool
	directDetected    bool
	attackDistance    float64

	dead  bool
	layer int
}

// New creates an aggregator for observerID over the given observation areas.
func New(observerID uint32, source Source, pool *model.MarkerPool, areas []sensor.Sensor, cfg Config) *Aggregator {
	return &Aggregator{
		observerID:     observerID,
		source:         source,
		pool:           pool,
		areas:          areas,
		cfg:            cfg,
		attackDistance: cfg.AttackDistance,
		layer:          cfg.Layer,
	}
}

// ObserverID returns the agent ID masks are written for.
func (a *Aggregator) ObserverID() uint32 { return a.observerID }

// Areas returns the observation areas.
func (a *Aggregator) Areas() []sensor.Sensor { return a.areas }

// State returns the handshake state.
func (a *Aggregator) State() model.DataState { return a.state }

// Candidates returns possible targets published by the last successful tick.
func (a *Aggregator) Candidates() []*model.PathPoint { return a.candidates }

// SuspicionDetected reports whether the last tick published a suspicion candidate.
func (a *Aggregator) SuspicionDetected() bool { return a.suspicionDetected }

// DirectDetected reports whether the last tick published a direct candidate.
func (a *Aggregator) DirectDetected() bool { return a.directDetected }

// AttackDistance returns the current attack distance.
func (a *Aggregator) AttackDistance() float64 { return a.attackDistance }

// SetAttackDistance updates the attack distance (active weapon range).
func (a *Aggregator) SetAttackDistance(d float64) { a.attackDistance = max(d, 0) }

// IsDead reports whether the agent died.
func (a *Aggregator) IsDead() bool { return a.dead }

// Layer returns the agent's current layer.
func (a *Aggregator) Layer() int { return a.layer }

// Kill marks the agent dead and moves it to deadLayer.
func (a *Aggregator) Kill(deadLayer int) {
	if a.dead {
		return
	}
	a.dead = true
	a.layer = deadLayer
	if ai.IsDebugEnabled() {
		slog.Debug("agent died", "observerID", a.observerID, "layer", deadLayer)
	}
}

// MarkUpdated is the detection sweep's write: Unknown/Processed -> Updated.
// Returns false (and changes nothing) from any other state.
func (a *Aggregator) MarkUpdated() bool {
	return a.advance(model.DataUnknown, model.DataProcessed)
}

// MarkProcessed is the pursuit controller's write: Transferred -> Processed.
func (a *Aggregator) MarkProcessed() bool {
	return a.advance(model.DataTransferred)
}

// Reset drops candidates and restarts the handshake. Used on deactivation.
func (a *Aggregator) Reset() {
	a.dropCandidates()
	a.suspicionDetected = false
	a.directDetected = false
	a.state = model.DataUnknown
}

// Tick drains affection masks into candidates and advances Updated -> Transferred.
// Skipped entirely when the agent is dead, there is no affection data or the
// masks were not refreshed since the last merge.
func (a *Aggregator) Tick() {
	if a.dead || a.state != model.DataUpdated {
		return
	}
	affections := a.source.Affections(a.observerID)
	if len(affections) == 0 {
		return
	}

	a.dropCandidates()
	a.suspicionDetected = false
	a.directDetected = false

	for _, aff := range affections {
		if !aff.Affected() {
			continue
		}
		anchor, ok := a.source.Anchor(aff.SubjectID)
		if !ok {
			continue
		}

		candidate := model.NewPathPoint(anchor)
		candidate.MovementSpeed = a.cfg.MovementSpeed
		candidate.SetAccuracyRadius(a.cfg.AccuracyRadius)

		for _, area := range a.areas {
			if area.ID() != aff.AreaID {
				continue
			}
			a.shape(candidate, area)
			break
		}
		a.candidates = append(a.candidates, candidate)
	}

	a.state = model.DataTransferred

	if ai.IsDebugEnabled() {
		slog.Debug("perception transferred",
			"observerID", a.observerID,
			"candidates", len(a.candidates),
			"direct", a.directDetected,
			"suspicion", a.suspicionDetected)
	}
}

// shape derives kind, action and priority from the area that detected the candidate.
func (a *Aggregator) shape(p *model.PathPoint, area sensor.Sensor) {
	p.Kind = area.Type().PointKind()
	p.Action = area.Type().PointAction()
	p.Priority = area.Priority()
	if speed := area.ChaseSpeed(); speed > 0 {
		p.MovementSpeed = speed
	}

	if p.Kind == model.KindSuspicion {
		// memory of where the target was, not a live reference
		p.Detach(a.pool)
		p.TransferDelay = a.cfg.SuspicionWait
		a.suspicionDetected = true
		return
	}

	p.SetAccuracyRadius(a.attackDistance)
	a.directDetected = true
}

// dropCandidates releases markers of candidates no container adopted.
func (a *Aggregator) dropCandidates() {
	for i, p := range a.candidates {
		if !p.Claimed() {
			p.Release()
		}
		a.candidates[i] = nil
	}
	a.candidates = a.candidates[:0]
}

func (a *Aggregator) advance(from ...model.DataState) bool {
	for _, s := range from {
		if a.state == s {
			a.state = s.Next()
			return true
		}
	}
	return false
}
