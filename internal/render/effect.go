package render

import (
	"context"
	"sync"
	"time"
)

// Effect is a visual extension driven by the overlay's frame clock (for
// example a particle flow along a segment path). Implementations are plain
// structs registered with an EffectDriver; no host framework type is
// extended.
type Effect interface {
	// OnAttach is called once when the effect is registered.
	OnAttach(overlay Overlay)
	// OnDetach is called once when the effect is unregistered.
	OnDetach()
	// OnFrame advances the effect by dt.
	OnFrame(dt time.Duration)
}

// EffectDriver ticks registered effects at a fixed interval.
type EffectDriver struct {
	overlay  Overlay
	interval time.Duration

	mu      sync.Mutex
	effects []Effect
}

// NewEffectDriver creates a driver ticking at the given interval
// (default 50ms).
func NewEffectDriver(overlay Overlay, interval time.Duration) *EffectDriver {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &EffectDriver{overlay: overlay, interval: interval}
}

// Attach registers an effect and calls its OnAttach hook.
func (d *EffectDriver) Attach(e Effect) {
	d.mu.Lock()
	d.effects = append(d.effects, e)
	d.mu.Unlock()
	e.OnAttach(d.overlay)
}

// Detach unregisters an effect and calls its OnDetach hook.
func (d *EffectDriver) Detach(e Effect) {
	d.mu.Lock()
	for i, registered := range d.effects {
		if registered == e {
			d.effects = append(d.effects[:i], d.effects[i+1:]...)
			break
		}
	}
	d.mu.Unlock()
	e.OnDetach()
}

// Run ticks effects until the context is canceled.
func (d *EffectDriver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now

			d.mu.Lock()
			effects := make([]Effect, len(d.effects))
			copy(effects, d.effects)
			d.mu.Unlock()

			for _, e := range effects {
				e.OnFrame(dt)
			}
		}
	}
}
