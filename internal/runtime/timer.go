package runtime

import (
	"sync"
	"time"
)

// RestTimer is the single countdown primitive between sets. One tick per
// second while running; pausable, resumable, skippable. Starting a timer
// cancels any previous countdown, so at most one tick loop exists per timer.
//
// Skip and natural expiry converge on the same "rest ended" signal (onDone),
// so callers need one code path, not two.
type RestTimer struct {
	mu        sync.Mutex
	interval  time.Duration
	remaining int
	paused    bool
	running   bool
	cancel    chan struct{}

	onTick func(remaining int)
	onDone func()
}

// NewRestTimer creates a timer ticking once per second. Either callback may
// be nil. Callbacks are invoked without the timer lock held.
func NewRestTimer(onTick func(remaining int), onDone func()) *RestTimer {
	return &RestTimer{
		interval: time.Second,
		onTick:   onTick,
		onDone:   onDone,
	}
}

// SetInterval overrides the tick interval. Tests use this to avoid
// second-long sleeps; production code leaves the default.
func (t *RestTimer) SetInterval(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interval = d
}

// Start begins a countdown of the given seconds, cancelling any countdown
// already running. A non-positive duration fires the rest-ended signal
// immediately (asynchronously, like a tick would).
func (t *RestTimer) Start(seconds int) {
	t.mu.Lock()
	t.cancelLocked()
	t.remaining = seconds
	t.paused = false

	if seconds <= 0 {
		t.remaining = 0
		t.mu.Unlock()
		go t.fireDone()
		return
	}

	t.running = true
	cancel := make(chan struct{})
	t.cancel = cancel
	interval := t.interval
	t.mu.Unlock()

	go t.loop(cancel, interval)
}

func (t *RestTimer) loop(cancel chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.paused {
				t.mu.Unlock()
				continue
			}
			t.remaining--
			remaining := t.remaining
			done := remaining <= 0
			if done {
				t.remaining = 0
				t.running = false
				t.cancel = nil
			}
			t.mu.Unlock()

			if t.onTick != nil {
				t.onTick(remaining)
			}
			if done {
				t.fireDone()
				return
			}
		}
	}
}

// Pause freezes the countdown; ticks are ignored until Resume.
func (t *RestTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.paused = true
	}
}

// Resume continues a paused countdown.
func (t *RestTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = false
}

// Skip forces the countdown to zero and fires the same rest-ended signal a
// natural expiry would.
func (t *RestTimer) Skip() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.cancelLocked()
	t.remaining = 0
	t.mu.Unlock()

	t.fireDone()
}

// Stop cancels the countdown without firing the rest-ended signal. Used when
// the client switches exercises or navigates away mid-rest.
func (t *RestTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.remaining = 0
}

// Remaining returns the seconds left on the countdown.
func (t *RestTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Running reports whether a countdown is active (paused counts as running).
func (t *RestTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Paused reports whether the countdown is frozen.
func (t *RestTimer) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// cancelLocked stops the current tick loop. Caller holds t.mu.
func (t *RestTimer) cancelLocked() {
	if t.cancel != nil {
		close(t.cancel)
		t.cancel = nil
	}
	t.running = false
	t.paused = false
}

func (t *RestTimer) fireDone() {
	if t.onDone != nil {
		t.onDone()
	}
}
