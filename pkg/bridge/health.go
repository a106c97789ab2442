package bridge

import (
	"time"
)

// EventKind classifies bridge notifications.
type EventKind int

const (
	EventError EventKind = iota
	EventDisabled
	EventRecovered
	EventPerformance
)

func (k EventKind) String() string {
	switch k {
	case EventError:
		return "error"
	case EventDisabled:
		return "disabled"
	case EventRecovered:
		return "recovered"
	case EventPerformance:
		return "performance"
	}
	return "unknown"
}

// Event is delivered to subscribers on the tick goroutine. Observers must
// not block.
type Event struct {
	Kind        EventKind
	Direction   Direction
	Err         error
	Consecutive int
	FPS         float64
}

// Subscribe registers fn for every future event.
func (b *Bridge) Subscribe(fn func(Event)) {
	b.mu.Lock()
	b.observers = append(b.observers, fn)
	b.mu.Unlock()
}

func (b *Bridge) emit(e Event) {
	b.mu.Lock()
	obs := b.observers
	b.mu.Unlock()
	for _, fn := range obs {
		fn(e)
	}
}

// Health returns a copy of the current failure state.
func (b *Bridge) Health() Health {
	b.healthMu.Lock()
	defer b.healthMu.Unlock()
	return Health{
		ConsecutiveAudioToVisual: b.consecutive[AudioToVisual],
		ConsecutiveVisualToAudio: b.consecutive[VisualToAudio],
		TotalErrors:              b.totalErrors,
		AudioToVisualDisabled:    b.disabled[AudioToVisual],
		VisualToAudioDisabled:    b.disabled[VisualToAudio],
		Ticks:                    b.ticks,
		FPS:                      b.fps,
	}
}

// ResetHealth clears counters and re-enables both directions.
func (b *Bridge) ResetHealth() {
	b.healthMu.Lock()
	b.consecutive = [numDirections]int{}
	b.disabled = [numDirections]bool{}
	b.totalErrors = 0
	b.healthMu.Unlock()
}

func (b *Bridge) isDisabled(d Direction) bool {
	b.healthMu.Lock()
	defer b.healthMu.Unlock()
	return b.disabled[d]
}

func (b *Bridge) fail(d Direction, err error) {
	b.healthMu.Lock()
	b.consecutive[d]++
	b.totalErrors++
	n := b.consecutive[d]
	disable := n >= b.cfg.ErrorThreshold
	if disable {
		b.disabled[d] = true
	}
	b.healthMu.Unlock()

	if n == 1 {
		b.logger.Error("bridge tick failed", "direction", d, "err", err, "tick", b.Health().Ticks)
	} else {
		b.logger.Warn("bridge tick failed again", "direction", d, "consecutive", n)
	}
	b.emit(Event{Kind: EventError, Direction: d, Err: err, Consecutive: n})
	if disable {
		b.logger.Error("bridge direction disabled", "direction", d, "consecutive", n)
		b.emit(Event{Kind: EventDisabled, Direction: d, Err: err, Consecutive: n})
	}
}

func (b *Bridge) succeed(d Direction) {
	b.healthMu.Lock()
	n := b.consecutive[d]
	b.consecutive[d] = 0
	b.healthMu.Unlock()
	if n > 0 {
		b.logger.Info("bridge direction recovered", "direction", d, "after", n)
		b.emit(Event{Kind: EventRecovered, Direction: d, Consecutive: n})
	}
}

// measure counts the tick and updates FPS once per second of clock time.
func (b *Bridge) measure() {
	now := b.clock()
	b.healthMu.Lock()
	b.ticks++
	b.healthMu.Unlock()

	if b.fpsStart.IsZero() {
		b.fpsStart = now
		b.fpsTicks = 0
		return
	}
	b.fpsTicks++
	elapsed := now.Sub(b.fpsStart)
	if elapsed < time.Second {
		return
	}
	fps := float64(b.fpsTicks) / elapsed.Seconds()
	b.fpsStart = now
	b.fpsTicks = 0

	b.healthMu.Lock()
	b.fps = fps
	b.healthMu.Unlock()

	if fps < b.cfg.MinFPS {
		b.logger.Warn("bridge running slow", "fps", fps, "min", b.cfg.MinFPS)
		b.emit(Event{Kind: EventPerformance, FPS: fps})
	}
}
