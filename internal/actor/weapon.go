package actor

import (
	"log/slog"
	"time"

	"github.com/udisondev/pursuit/internal/ai"
	"github.com/udisondev/pursuit/internal/model"
)

// Weapon fires while its cooldown is over and the magazine is not empty.
type Weapon struct {
	cfg      model.WeaponSpec
	ammo     int
	cooldown time.Duration
	shots    int
}

// NewWeapon creates a weapon with a full magazine.
func NewWeapon(cfg model.WeaponSpec) *Weapon {
	return &Weapon{cfg: cfg, ammo: cfg.Magazine}
}

// Name returns weapon name.
func (w *Weapon) Name() string { return w.cfg.Name }

// Range returns attack distance.
func (w *Weapon) Range() float64 { return w.cfg.Range }

// ShotDuration returns how long a shot keeps the agent busy.
func (w *Weapon) ShotDuration() time.Duration { return w.cfg.ShotDuration }

// Ammo returns shots left in the magazine.
func (w *Weapon) Ammo() int { return w.ammo }

// Shots returns number of fired shots.
func (w *Weapon) Shots() int { return w.shots }

// Activate readies the weapon after a switch.
func (w *Weapon) Activate() {
	w.cooldown = 0
	if ai.IsDebugEnabled() {
		slog.Debug("weapon activated", "weapon", w.cfg.Name, "ammo", w.ammo)
	}
}

// TryShoot fires once. Returns false during cooldown or with an empty magazine.
func (w *Weapon) TryShoot() bool {
	if w.cooldown > 0 || w.NeedsReload() {
		return false
	}
	if w.cfg.Magazine > 0 {
		w.ammo--
	}
	w.shots++
	w.cooldown = w.cfg.ShotDuration
	return true
}

// NeedsReload reports whether the magazine is empty.
func (w *Weapon) NeedsReload() bool {
	return w.cfg.Magazine > 0 && w.ammo == 0
}

// Reload refills the magazine and returns the reload time.
func (w *Weapon) Reload() time.Duration {
	w.ammo = w.cfg.Magazine
	w.cooldown = 0
	return w.cfg.ReloadTime
}

// Step advances the shot cooldown.
func (w *Weapon) Step(dt time.Duration) {
	w.cooldown = max(w.cooldown-dt, 0)
}
