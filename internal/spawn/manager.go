// Package spawn builds pursuing agents from stored spawns and registers them
// with the tick manager.
package spawn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/udisondev/pursuit/internal/agent"
	"github.com/udisondev/pursuit/internal/ai"
	"github.com/udisondev/pursuit/internal/config"
	"github.com/udisondev/pursuit/internal/model"
	"github.com/udisondev/pursuit/internal/world"
)

// firstAgentID is the first objectID handed to agents. Lower IDs are left to
// static targets seeded from configuration.
const firstAgentID = 100000

// TemplateRepository loads agent templates.
type TemplateRepository interface {
	LoadTemplate(ctx context.Context, templateID int32) (*model.AgentTemplate, error)
}

// AreaRepository loads observation areas of a template.
type AreaRepository interface {
	LoadByTemplate(ctx context.Context, templateID int32) ([]model.AreaSpec, error)
}

// RouteRepository loads patrol routes.
type RouteRepository interface {
	LoadRoute(ctx context.Context, routeID int64) (*model.PatrolRoute, error)
}

// SpawnRepository loads spawns.
type SpawnRepository interface {
	LoadAll(ctx context.Context) ([]*model.AgentSpawn, error)
}

// Repositories groups the sources a Manager reads from.
type Repositories struct {
	Templates TemplateRepository
	Areas     AreaRepository
	Routes    RouteRepository
	Spawns    SpawnRepository
}

// Manager manages agent spawns.
type Manager struct {
	repos     Repositories
	registry  *world.Registry
	markers   *model.MarkerPool
	tuning    config.Agent
	aiManager *ai.TickManager

	mu        sync.Mutex
	spawns    []*model.AgentSpawn
	templates map[int32]*model.AgentTemplate // templateID → template with areas
	agents    map[uint32]*agent.Agent        // objectID → agent
	order     []uint32

	objectIDCounter atomic.Uint32
}

// NewManager creates new spawn manager.
func NewManager(
	repos Repositories,
	registry *world.Registry,
	markers *model.MarkerPool,
	tuning config.Agent,
	aiManager *ai.TickManager,
) *Manager {
	mgr := &Manager{
		repos:     repos,
		registry:  registry,
		markers:   markers,
		tuning:    tuning,
		aiManager: aiManager,
		templates: make(map[int32]*model.AgentTemplate),
		agents:    make(map[uint32]*agent.Agent),
	}
	mgr.objectIDCounter.Store(firstAgentID)
	return mgr
}

// LoadSpawns loads all spawns from the spawn repository.
func (m *Manager) LoadSpawns(ctx context.Context) error {
	spawns, err := m.repos.Spawns.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading spawns: %w", err)
	}

	m.mu.Lock()
	m.spawns = spawns
	m.mu.Unlock()

	slog.Info("spawns loaded", "count", len(spawns))
	return nil
}

// SpawnCount returns number of loaded spawns.
func (m *Manager) SpawnCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.spawns)
}

// DoSpawn builds the agent of spawn and registers it with the tick manager,
// which starts it.
func (m *Manager) DoSpawn(ctx context.Context, spawn *model.AgentSpawn) (*agent.Agent, error) {
	tpl, err := m.template(ctx, spawn.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("spawn %d: %w", spawn.ID, err)
	}

	var route *model.PatrolRoute
	if spawn.RouteID != 0 {
		route, err = m.repos.Routes.LoadRoute(ctx, spawn.RouteID)
		if err != nil {
			return nil, fmt.Errorf("loading route %d for spawn %d: %w", spawn.RouteID, spawn.ID, err)
		}
	}

	objectID := m.objectIDCounter.Add(1)
	a, err := agent.New(agent.Spec{
		ID:       objectID,
		Position: spawn.Position,
		Template: *tpl,
		Route:    route,
		Weapons:  spawn.Weapons,
	}, m.tuning, m.registry, m.markers)
	if err != nil {
		return nil, fmt.Errorf("building agent for spawn %d: %w", spawn.ID, err)
	}

	// Register takes the frame lock; m.mu is never held around it because
	// frame hooks read Agents.
	m.aiManager.Register(objectID, a)

	m.mu.Lock()
	m.agents[objectID] = a
	m.order = append(m.order, objectID)
	m.mu.Unlock()

	slog.Info("agent spawned",
		"objectID", objectID,
		"name", tpl.Name,
		"templateID", tpl.ID,
		"spawnID", spawn.ID,
		"routeID", spawn.RouteID,
		"position", spawn.Position)

	return a, nil
}

// Despawn stops the agent and removes its body from the registry.
func (m *Manager) Despawn(objectID uint32) {
	m.mu.Lock()
	a, ok := m.agents[objectID]
	if ok {
		delete(m.agents, objectID)
		m.order = slices.DeleteFunc(m.order, func(id uint32) bool { return id == objectID })
	}
	m.mu.Unlock()

	if !ok {
		slog.Warn("despawning unknown agent", "objectID", objectID)
		return
	}

	m.aiManager.Unregister(objectID)
	a.Close()

	slog.Info("agent despawned", "objectID", objectID, "state", a.State())
}

// SpawnAll spawns one agent per loaded spawn. A failed spawn is logged and
// the rest still spawn; the joined errors are returned.
func (m *Manager) SpawnAll(ctx context.Context) error {
	m.mu.Lock()
	spawns := slices.Clone(m.spawns)
	m.mu.Unlock()

	var errs []error
	count := 0
	for _, spawn := range spawns {
		if _, err := m.DoSpawn(ctx, spawn); err != nil {
			slog.Error("failed to spawn agent",
				"spawnID", spawn.ID,
				"templateID", spawn.TemplateID,
				"error", err)
			errs = append(errs, err)
			continue
		}
		count++
	}

	if len(errs) > 0 {
		slog.Warn("SpawnAll completed with errors", "spawned", count, "failed", len(errs))
		return fmt.Errorf("spawning all agents: %w", errors.Join(errs...))
	}

	slog.Info("all agents spawned", "count", count)
	return nil
}

// DespawnAll despawns every agent.
func (m *Manager) DespawnAll() {
	m.mu.Lock()
	ids := slices.Clone(m.order)
	m.mu.Unlock()

	for _, id := range ids {
		m.Despawn(id)
	}
}

// Agent returns spawned agent by objectID.
func (m *Manager) Agent(objectID uint32) (*agent.Agent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[objectID]
	return a, ok
}

// Agents returns spawned agents in spawn order.
func (m *Manager) Agents() []*agent.Agent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*agent.Agent, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.agents[id])
	}
	return out
}

// AgentCount returns number of spawned agents.
func (m *Manager) AgentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.agents)
}

// template loads a template and its areas once per templateID.
func (m *Manager) template(ctx context.Context, templateID int32) (*model.AgentTemplate, error) {
	m.mu.Lock()
	tpl, ok := m.templates[templateID]
	m.mu.Unlock()
	if ok {
		return tpl, nil
	}

	tpl, err := m.repos.Templates.LoadTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("loading template %d: %w", templateID, err)
	}
	areas, err := m.repos.Areas.LoadByTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("loading areas of template %d: %w", templateID, err)
	}
	tpl.Areas = areas

	m.mu.Lock()
	m.templates[templateID] = tpl
	m.mu.Unlock()
	return tpl, nil
}
