package sensor

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/udisondev/pursuit/internal/model"
	"github.com/udisondev/pursuit/internal/world"
)

// fullCircle is the cone angle that disables the angular test.
const fullCircle = 360.0

// SonarConfig describes a circle (Angle 360) or cone observation area.
type SonarConfig struct {
	ID         uint32
	Type       model.ObservationType
	Priority   int32
	ChaseSpeed float64

	Radius     float64
	Angle      float64    // degrees, full cone width
	Yaw        float64    // degrees, rotation of the cone around the socket's up axis
	Offset     model.Vec3 // relative to socket position
	TargetMask uint32     // bit per layer
}

// Sonar is the radial/cone sensor.
type Sonar struct {
	cfg    SonarConfig
	socket Socket
	active bool
}

// NewSonar creates an active sonar attached to socket.
func NewSonar(cfg SonarConfig, socket Socket) *Sonar {
	if cfg.Angle <= 0 || cfg.Angle > fullCircle {
		cfg.Angle = fullCircle
	}
	return &Sonar{cfg: cfg, socket: socket, active: true}
}

// ID returns area identifier.
func (s *Sonar) ID() uint32 { return s.cfg.ID }

// Type returns observation type.
func (s *Sonar) Type() model.ObservationType { return s.cfg.Type }

// Priority returns candidate priority.
func (s *Sonar) Priority() int32 { return s.cfg.Priority }

// ChaseSpeed returns candidate movement speed.
func (s *Sonar) ChaseSpeed() float64 { return s.cfg.ChaseSpeed }

// Active reports whether the sonar detects anything.
func (s *Sonar) Active() bool { return s.active }

// SetActive enables or disables the sonar.
func (s *Sonar) SetActive(active bool) { s.active = active }

// Config returns sonar configuration.
func (s *Sonar) Config() SonarConfig { return s.cfg }

// TestContainment implements Sensor.
func (s *Sonar) TestContainment(areas []world.TracingArea, mask *bitset.BitSet) bool {
	origin := s.socket.Position().Add(s.cfg.Offset)
	forward := s.socket.Forward().RotateYaw(s.cfg.Yaw)
	radiusSq := s.cfg.Radius * s.cfg.Radius

	affected := false
	for i, a := range areas {
		if a.State == model.HitDisabled || a.State == model.HitUnknown {
			continue
		}
		if !inLayerMask(a.Layer, s.cfg.TargetMask) {
			continue
		}

		toArea := a.Position.Sub(origin)
		if toArea.DistanceSquared(model.Vec3{}) > radiusSq {
			continue
		}
		if s.cfg.Angle != fullCircle && model.AngleXZ(toArea, forward) > s.cfg.Angle/2 {
			continue
		}

		affected = true
		mask.Set(uint(i))
	}
	return affected
}

func inLayerMask(layer int, mask uint32) bool {
	if layer < 0 || layer > 31 {
		return false
	}
	return mask&(1<<uint(layer)) != 0
}
