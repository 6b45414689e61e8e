package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/pursuit/internal/model"
)

// Simulation holds all configuration for the headless pursuit simulation.
type Simulation struct {
	LogLevel string `yaml:"log_level"`
	// FrameRate is the number of frames per second.
	FrameRate int `yaml:"frame_rate"`

	Database  DatabaseConfig `yaml:"database"`
	DebugFeed DebugFeed      `yaml:"debug_feed"`
	Agent     Agent          `yaml:"agent"`

	// Targets are seeded into the registry at startup.
	Targets []Target `yaml:"targets"`

	// Templates, Routes and Spawns are used when the database is disabled.
	Templates []Template `yaml:"templates"`
	Routes    []Route    `yaml:"routes"`
	Spawns    []Spawn    `yaml:"spawns"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Enabled loads templates, routes and spawns from PostgreSQL.
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DebugFeed configures the websocket feed of agent snapshots.
type DebugFeed struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
	// PublishEvery broadcasts a snapshot every N frames.
	PublishEvery int `yaml:"publish_every"`
}

// Addr returns host:port the feed listens on.
func (f DebugFeed) Addr() string {
	return fmt.Sprintf("%s:%d", f.BindAddress, f.Port)
}

// Agent holds timings and defaults shared by every agent.
type Agent struct {
	// Periods of the three perception stages.
	SweepPeriod     time.Duration `yaml:"sweep_period"`
	AggregatePeriod time.Duration `yaml:"aggregate_period"`
	MergePeriod     time.Duration `yaml:"merge_period"`

	PathUpdateDelay      time.Duration `yaml:"path_update_delay"`
	SuspicionWait        time.Duration `yaml:"suspicion_wait"`
	DemotedTransferDelay time.Duration `yaml:"demoted_transfer_delay"`

	// Candidate defaults when the detecting area sets nothing.
	AccuracyRadius float64 `yaml:"accuracy_radius"`
	MovementSpeed  float64 `yaml:"movement_speed"`

	AttackDistance float64 `yaml:"attack_distance"`
	BodyRadius     float64 `yaml:"body_radius"`
	TargetUltimate bool    `yaml:"target_ultimate"`

	// Layer is the agent's own registry layer, DeadLayer replaces it on death.
	Layer     int `yaml:"layer"`
	DeadLayer int `yaml:"dead_layer"`
}

// Vec3 is a YAML friendly 3D point.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Vec converts to model.Vec3.
func (v Vec3) Vec() model.Vec3 {
	return model.NewVec3(v.X, v.Y, v.Z)
}

// Target is a detectable subject. It walks its waypoints in a loop when Speed > 0.
type Target struct {
	SubjectID uint32  `yaml:"subject_id"`
	Position  Vec3    `yaml:"position"`
	Layer     int     `yaml:"layer"`
	Speed     float64 `yaml:"speed"`
	Waypoints []Vec3  `yaml:"waypoints"`
	// Areas are tracing area offsets from the position, one area at the origin when empty.
	Areas []Vec3 `yaml:"areas"`
}

// Template mirrors model.AgentTemplate.
type Template struct {
	ID             int32   `yaml:"id"`
	Name           string  `yaml:"name"`
	AttackDistance float64 `yaml:"attack_distance"`
	BodyRadius     float64 `yaml:"body_radius"`
	MovementSpeed  float64 `yaml:"movement_speed"`
	TargetUltimate bool    `yaml:"target_ultimate"`
	Areas          []Area  `yaml:"areas"`
}

// Area mirrors model.AreaSpec.
type Area struct {
	ID         uint32  `yaml:"id"`
	Type       string  `yaml:"type"`
	Priority   int32   `yaml:"priority"`
	Radius     float64 `yaml:"radius"`
	Angle      float64 `yaml:"angle"`
	Yaw        float64 `yaml:"yaw"`
	Offset     Vec3    `yaml:"offset"`
	TargetMask uint32  `yaml:"target_mask"`
	ChaseSpeed float64 `yaml:"chase_speed"`
}

// Route mirrors model.PatrolRoute.
type Route struct {
	ID        int64      `yaml:"id"`
	Name      string     `yaml:"name"`
	Waypoints []Waypoint `yaml:"waypoints"`
}

// Waypoint mirrors model.RouteWaypoint.
type Waypoint struct {
	Position       Vec3          `yaml:"position"`
	Action         string        `yaml:"action"`
	Priority       int32         `yaml:"priority"`
	AccuracyRadius float64       `yaml:"accuracy_radius"`
	MovementSpeed  float64       `yaml:"movement_speed"`
	TransferDelay  time.Duration `yaml:"transfer_delay"`
}

// Spawn mirrors model.AgentSpawn.
type Spawn struct {
	ID         int64    `yaml:"id"`
	TemplateID int32    `yaml:"template_id"`
	RouteID    int64    `yaml:"route_id"`
	Position   Vec3     `yaml:"position"`
	Weapons    []Weapon `yaml:"weapons"`
}

// Weapon mirrors model.WeaponSpec.
type Weapon struct {
	Name         string        `yaml:"name"`
	Range        float64       `yaml:"range"`
	ShotDuration time.Duration `yaml:"shot_duration"`
	Magazine     int           `yaml:"magazine"`
	ReloadTime   time.Duration `yaml:"reload_time"`
}

// DefaultAgent returns agent defaults.
func DefaultAgent() Agent {
	return Agent{
		SweepPeriod:          200 * time.Millisecond,
		AggregatePeriod:      100 * time.Millisecond,
		MergePeriod:          100 * time.Millisecond,
		PathUpdateDelay:      100 * time.Millisecond,
		SuspicionWait:        2 * time.Second,
		DemotedTransferDelay: time.Second,
		AccuracyRadius:       1.0,
		MovementSpeed:        3.5,
		AttackDistance:       1.0,
		BodyRadius:           0.5,
		TargetUltimate:       true,
		Layer:                8,
		DeadLayer:            9,
	}
}

// DefaultSimulation returns Simulation config with sensible defaults.
func DefaultSimulation() Simulation {
	return Simulation{
		LogLevel:  "info",
		FrameRate: 30,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "pursuit",
			Password: "pursuit",
			DBName:   "pursuit",
			SSLMode:  "disable",
		},
		DebugFeed: DebugFeed{
			BindAddress:  "127.0.0.1",
			Port:         7780,
			PublishEvery: 3,
		},
		Agent: DefaultAgent(),
	}
}

// LoadSimulation loads simulation config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSimulation(path string) (Simulation, error) {
	cfg := DefaultSimulation()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values the simulation cannot run with.
func (s Simulation) Validate() error {
	if s.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %d", s.FrameRate)
	}
	a := s.Agent
	for name, d := range map[string]time.Duration{
		"sweep_period":     a.SweepPeriod,
		"aggregate_period": a.AggregatePeriod,
		"merge_period":     a.MergePeriod,
	} {
		if d <= 0 {
			return fmt.Errorf("agent.%s must be positive, got %s", name, d)
		}
	}
	if a.Layer == a.DeadLayer {
		return fmt.Errorf("agent.dead_layer must differ from agent.layer (%d)", a.Layer)
	}
	if s.DebugFeed.Enabled && s.DebugFeed.PublishEvery <= 0 {
		return fmt.Errorf("debug_feed.publish_every must be positive, got %d", s.DebugFeed.PublishEvery)
	}

	seen := make(map[uint32]bool, len(s.Targets))
	for _, t := range s.Targets {
		if seen[t.SubjectID] {
			return fmt.Errorf("duplicate target subject_id %d", t.SubjectID)
		}
		seen[t.SubjectID] = true
	}

	if _, err := s.AgentTemplates(); err != nil {
		return err
	}
	if _, err := s.PatrolRoutes(); err != nil {
		return err
	}
	return nil
}

// AgentTemplates converts configured templates.
func (s Simulation) AgentTemplates() ([]model.AgentTemplate, error) {
	out := make([]model.AgentTemplate, 0, len(s.Templates))
	for _, t := range s.Templates {
		tpl := model.AgentTemplate{
			ID:             t.ID,
			Name:           t.Name,
			AttackDistance: t.AttackDistance,
			BodyRadius:     t.BodyRadius,
			MovementSpeed:  t.MovementSpeed,
			TargetUltimate: t.TargetUltimate,
		}
		for _, a := range t.Areas {
			typ, err := model.ParseObservationType(a.Type)
			if err != nil {
				return nil, fmt.Errorf("template %d area %d: %w", t.ID, a.ID, err)
			}
			tpl.Areas = append(tpl.Areas, model.AreaSpec{
				ID:         a.ID,
				Type:       typ,
				Priority:   a.Priority,
				Radius:     a.Radius,
				Angle:      a.Angle,
				Yaw:        a.Yaw,
				Offset:     a.Offset.Vec(),
				TargetMask: a.TargetMask,
				ChaseSpeed: a.ChaseSpeed,
			})
		}
		out = append(out, tpl)
	}
	return out, nil
}

// PatrolRoutes converts configured routes. Waypoints are numbered in order.
func (s Simulation) PatrolRoutes() ([]model.PatrolRoute, error) {
	out := make([]model.PatrolRoute, 0, len(s.Routes))
	for _, r := range s.Routes {
		route := model.PatrolRoute{ID: r.ID, Name: r.Name}
		for i, w := range r.Waypoints {
			action := model.ActionContinuePath
			if w.Action != "" {
				var err error
				if action, err = model.ParsePointAction(w.Action); err != nil {
					return nil, fmt.Errorf("route %d waypoint %d: %w", r.ID, i, err)
				}
			}
			route.Waypoints = append(route.Waypoints, model.RouteWaypoint{
				Seq:            int32(i),
				Position:       w.Position.Vec(),
				Action:         action,
				Priority:       w.Priority,
				AccuracyRadius: w.AccuracyRadius,
				MovementSpeed:  w.MovementSpeed,
				TransferDelay:  w.TransferDelay,
			})
		}
		out = append(out, route)
	}
	return out, nil
}

// AgentSpawns converts configured spawns.
func (s Simulation) AgentSpawns() []model.AgentSpawn {
	out := make([]model.AgentSpawn, 0, len(s.Spawns))
	for _, sp := range s.Spawns {
		spawn := model.AgentSpawn{
			ID:         sp.ID,
			TemplateID: sp.TemplateID,
			RouteID:    sp.RouteID,
			Position:   sp.Position.Vec(),
		}
		for _, w := range sp.Weapons {
			spawn.Weapons = append(spawn.Weapons, model.WeaponSpec{
				Name:         w.Name,
				Range:        w.Range,
				ShotDuration: w.ShotDuration,
				Magazine:     w.Magazine,
				ReloadTime:   w.ReloadTime,
			})
		}
		out = append(out, spawn)
	}
	return out
}
