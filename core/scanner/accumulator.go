// Package scanner decodes RFID hardware input from a raw keystroke
// stream. Card readers type the code as digits followed by Enter, fast
// enough that a quiet period means the burst is over.
package scanner

import (
	"sync"
	"time"
)

// State of the accumulator.
type State int

const (
	Idle State = iota
	Accumulating
	Committed
)

// Accumulator is a finite-state keystroke accumulator: digits build up
// the buffer, any non-digit or a quiet timeout silently resets it, and
// Enter commits only when the buffer holds exactly the expected code
// length. Deviations never error; they reset.
type Accumulator struct {
	codeLen int
	quiet   time.Duration
	onScan  func(code string)

	mu    sync.Mutex
	state State
	buf   []rune
	timer *time.Timer
}

func New(codeLen int, quiet time.Duration, onScan func(code string)) *Accumulator {
	return &Accumulator{
		codeLen: codeLen,
		quiet:   quiet,
		onScan:  onScan,
	}
}

// Key feeds one keystroke into the accumulator. The scan callback
// fires synchronously on commit.
func (a *Accumulator) Key(r rune) {
	a.mu.Lock()

	switch {
	case r == '\n' || r == '\r':
		if a.state == Accumulating && len(a.buf) == a.codeLen {
			code := string(a.buf)
			a.reset()
			a.state = Committed
			a.mu.Unlock()
			a.onScan(code)
			return
		}
		a.reset()
	case r >= '0' && r <= '9':
		a.buf = append(a.buf, r)
		a.state = Accumulating
		a.rearm()
	default:
		a.reset()
	}
	a.mu.Unlock()
}

// State returns the current state. Committed persists until the next
// keystroke arrives.
func (a *Accumulator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Stop cancels the pending quiet-timeout; call it when the scan screen
// unmounts so no timer outlives the accumulator.
func (a *Accumulator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
}

// rearm schedules the cancellable delayed transition back to Idle.
func (a *Accumulator) rearm() {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.quiet, a.timeout)
}

func (a *Accumulator) timeout() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
}

func (a *Accumulator) reset() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.buf = a.buf[:0]
	a.state = Idle
}
