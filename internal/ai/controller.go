package ai

import (
	"time"

	"github.com/udisondev/pursuit/internal/model"
)

// Controller represents a frame-ticked NPC agent
type Controller interface {
	// Start activates the agent and its periodic tasks
	Start()

	// Stop deactivates the agent, cancelling its periodic tasks synchronously
	Stop()

	// State returns current pursuit state
	State() model.PursuitState

	// Tick advances the agent by one frame of length dt
	Tick(dt time.Duration)
}
