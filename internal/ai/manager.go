package ai

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultFrameRate is used when the manager is created with a non-positive rate.
const DefaultFrameRate = 30

// FrameHook runs on the tick goroutine after every frame. Hooks run under the
// frame lock and must not call back into the manager.
type FrameHook func(frame uint64, dt time.Duration)

// TickManager drives all registered agents with a fixed-rate frame tick.
//
// Register, Unregister and frames are serialized by mu, so an agent is never
// stopped in the middle of its frame.
type TickManager struct {
	mu          sync.Mutex
	controllers map[uint32]Controller // objectID → controller
	order       []uint32              // registration order, ticks are deterministic
	hooks       []FrameHook

	frameRate int
	frame     uint64
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once

	controllerCount atomic.Int32 // cached count of controllers (O(1) access)
}

// NewTickManager creates new tick manager running frameRate frames per second.
func NewTickManager(frameRate int) *TickManager {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	return &TickManager{
		controllers: make(map[uint32]Controller),
		frameRate:   frameRate,
		stopCh:      make(chan struct{}),
	}
}

// FrameDuration returns the fixed frame length.
func (m *TickManager) FrameDuration() time.Duration {
	return time.Second / time.Duration(m.frameRate)
}

// AddFrameHook registers fn to run after every frame.
func (m *TickManager) AddFrameHook(fn FrameHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, fn)
}

// Register registers and starts controller. An existing controller with the
// same objectID is stopped and replaced.
func (m *TickManager) Register(objectID uint32, controller Controller) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.controllers[objectID]; ok {
		old.Stop()
	} else {
		m.order = append(m.order, objectID)
		m.controllerCount.Add(1)
	}
	m.controllers[objectID] = controller
	controller.Start()

	slog.Debug("AI controller registered",
		"objectID", objectID,
		"state", controller.State())
}

// Unregister stops and removes controller.
func (m *TickManager) Unregister(objectID uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	controller, ok := m.controllers[objectID]
	if !ok {
		return
	}
	delete(m.controllers, objectID)
	m.order = slices.DeleteFunc(m.order, func(id uint32) bool { return id == objectID })
	m.controllerCount.Add(-1)

	controller.Stop()

	slog.Debug("AI controller unregistered", "objectID", objectID)
}

// Start runs the frame loop (blocks until context is canceled or Stop is called).
func (m *TickManager) Start(ctx context.Context) error {
	dt := m.FrameDuration()
	m.ticker = time.NewTicker(dt)
	defer m.ticker.Stop()

	slog.Info("AI tick manager started", "frameRate", m.frameRate, "frame", dt)

	for {
		select {
		case <-ctx.Done():
			slog.Info("AI tick manager stopping")
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("AI tick manager stopped")
			return nil

		case <-m.ticker.C:
			m.TickAll(dt)
		}
	}
}

// Stop stops the frame loop. Safe to call more than once.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// TickAll advances every registered controller by dt, then runs frame hooks.
func (m *TickManager) TickAll(dt time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.order {
		m.controllers[id].Tick(dt)
	}
	m.frame++

	for _, hook := range m.hooks {
		hook(m.frame, dt)
	}

	if len(m.order) > 0 && IsDebugEnabled() && m.frame%uint64(m.frameRate) == 0 {
		slog.Debug("AI frame completed", "frame", m.frame, "controllers", len(m.order))
	}
}

// Count returns number of registered controllers (O(1) cached count)
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// GetController returns controller for objectID
func (m *TickManager) GetController(objectID uint32) (Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	controller, ok := m.controllers[objectID]
	if !ok {
		return nil, fmt.Errorf("controller not found for objectID %d", objectID)
	}
	return controller, nil
}

// Each calls fn for every controller in registration order, under the frame lock.
func (m *TickManager) Each(fn func(objectID uint32, c Controller)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		fn(id, m.controllers[id])
	}
}
