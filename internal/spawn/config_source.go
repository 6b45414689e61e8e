package spawn

import (
	"context"
	"fmt"

	"github.com/udisondev/pursuit/internal/config"
	"github.com/udisondev/pursuit/internal/model"
)

// ConfigSource serves templates, areas, routes and spawns from the YAML
// configuration. It backs the Manager when the database is disabled.
type ConfigSource struct {
	templates map[int32]model.AgentTemplate
	routes    map[int64]model.PatrolRoute
	spawns    []model.AgentSpawn
}

// NewConfigSource converts the configured templates, routes and spawns.
func NewConfigSource(sim config.Simulation) (*ConfigSource, error) {
	templates, err := sim.AgentTemplates()
	if err != nil {
		return nil, fmt.Errorf("converting templates: %w", err)
	}
	routes, err := sim.PatrolRoutes()
	if err != nil {
		return nil, fmt.Errorf("converting routes: %w", err)
	}

	s := &ConfigSource{
		templates: make(map[int32]model.AgentTemplate, len(templates)),
		routes:    make(map[int64]model.PatrolRoute, len(routes)),
		spawns:    sim.AgentSpawns(),
	}
	for _, t := range templates {
		s.templates[t.ID] = t
	}
	for _, r := range routes {
		s.routes[r.ID] = r
	}
	return s, nil
}

// Repositories returns s in every repository role.
func (s *ConfigSource) Repositories() Repositories {
	return Repositories{Templates: s, Areas: s, Routes: s, Spawns: s}
}

// LoadTemplate returns a copy of the configured template without areas.
func (s *ConfigSource) LoadTemplate(_ context.Context, templateID int32) (*model.AgentTemplate, error) {
	t, ok := s.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("agent template %d not found in config", templateID)
	}
	t.Areas = nil
	return &t, nil
}

// LoadByTemplate returns the template's areas.
func (s *ConfigSource) LoadByTemplate(_ context.Context, templateID int32) ([]model.AreaSpec, error) {
	t, ok := s.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("agent template %d not found in config", templateID)
	}
	return append([]model.AreaSpec(nil), t.Areas...), nil
}

// LoadRoute returns a configured patrol route.
func (s *ConfigSource) LoadRoute(_ context.Context, routeID int64) (*model.PatrolRoute, error) {
	r, ok := s.routes[routeID]
	if !ok {
		return nil, fmt.Errorf("patrol route %d not found in config", routeID)
	}
	r.Waypoints = append([]model.RouteWaypoint(nil), r.Waypoints...)
	return &r, nil
}

// LoadAll returns every configured spawn.
func (s *ConfigSource) LoadAll(_ context.Context) ([]*model.AgentSpawn, error) {
	out := make([]*model.AgentSpawn, 0, len(s.spawns))
	for i := range s.spawns {
		sp := s.spawns[i]
		out = append(out, &sp)
	}
	return out, nil
}
