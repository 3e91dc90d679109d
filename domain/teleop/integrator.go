package teleop

import "time"

// VelocityIntegrator coalesces bursts of key repeats into position
// adjustments. Every adjustment key press records a timestamp,
// selection or not; on each tick the deltas of presses still inside the
// debounce window are applied to the selected group and the whole press
// map is dropped, stale entries included. Holding a key therefore moves
// the joint at roughly one delta per tick instead of one per keyboard
// repeat event.
type VelocityIntegrator struct {
	window  time.Duration
	pressed map[rune]time.Time
}

// NewVelocityIntegrator creates an integrator with the given debounce
// window.
func NewVelocityIntegrator(window time.Duration) *VelocityIntegrator {
	return &VelocityIntegrator{
		window:  window,
		pressed: make(map[rune]time.Time),
	}
}

// RecordPress stores the press time for key, overwriting any earlier
// press of the same key that has not been consumed yet.
func (v *VelocityIntegrator) RecordPress(key rune, now time.Time) {
	v.pressed[key] = now
}

// Tick applies every fresh press to the selected group and reports
// whether any position actually changed. With nothing recorded it is a
// pure no-op; otherwise the press map is consumed in full, whether the
// entries were fresh, expired, or had no selection to act on.
func (v *VelocityIntegrator) Tick(now time.Time, sel Selection, pos *PositionState) bool {
	if len(v.pressed) == 0 {
		return false
	}
	dirty := false
	for key, pressedAt := range v.pressed {
		if now.Sub(pressedAt) >= v.window {
			continue
		}
		delta, ok := movementBindings[key]
		if !ok {
			continue
		}
		if pos.Apply(sel, delta) {
			dirty = true
		}
	}
	clear(v.pressed)
	return dirty
}
