package actor

import (
	"time"

	"github.com/udisondev/pursuit/internal/model"
)

// Body is the animation layer: it tracks movement, attack animation and death.
type Body struct {
	velocity model.Vec3
	busy     time.Duration
	attacks  int
	dead     bool
}

// NewBody creates an idle body.
func NewBody() *Body {
	return &Body{}
}

// Move sets the movement animation velocity.
func (b *Body) Move(velocity model.Vec3) { b.velocity = velocity }

// Velocity returns last movement velocity.
func (b *Body) Velocity() model.Vec3 { return b.velocity }

// Attack plays the attack animation for duration.
func (b *Body) Attack(duration time.Duration) {
	b.attacks++
	b.busy = max(duration, 0)
}

// Attacks returns number of attack animations played.
func (b *Body) Attacks() int { return b.attacks }

// Dead plays the death animation.
func (b *Body) Dead() {
	b.dead = true
	b.velocity = model.Vec3{}
	b.busy = 0
}

// IsDead reports whether the death animation was played.
func (b *Body) IsDead() bool { return b.dead }

// IsReadyForAction reports whether the body can start an attack.
func (b *Body) IsReadyForAction() bool { return !b.dead && b.busy == 0 }

// Step advances animation timers.
func (b *Body) Step(dt time.Duration) {
	b.busy = max(b.busy-dt, 0)
}
