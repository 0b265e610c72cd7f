// Package timer implements the DIV/TIMA/TMA/TAC divider chain described in
// spec §4.4, grounded directly on original_source/src/timer.rs's
// div_counter/timer_counter split.
package timer

import "github.com/pixeldivider/dmgcore/internal/interrupt"

const divCounterMax = 64

var tacPeriod = [4]int{256, 4, 16, 64}

// Requester raises an interrupt bit (spec §4.3's IF side).
type Requester func(bit int)

// Timer drives DIV and TIMA off the machine-cycle clock. It does not own
// the DIV/TIMA/TMA/TAC register bytes — those live in the bus's I/O region,
// per spec §3, since other components read/write them directly — it only
// owns the two countdown timers that decide when those bytes change.
type Timer struct {
	divCounter   int
	timerCounter int
	req          Requester
}

// New constructs a Timer that raises the timer interrupt through req.
func New(req Requester) *Timer {
	return &Timer{req: req}
}

// ResetDiv restarts the divider countdown. Called by the bus when a write
// to FF04 resets the DIV register byte to 0 (spec §4.1).
func (t *Timer) ResetDiv() {
	t.divCounter = divCounterMax
}

// Tick advances the divider chain by one machine cycle. div and tima are
// pointers into the bus's register bytes; tac and tma are read-only inputs
// for this tick. New DIV and TIMA values are written back through the
// pointers; nothing is returned.
func (t *Timer) Tick(div, tima *byte, tma, tac byte) {
	if t.divCounter == 0 {
		*div++
		t.divCounter = divCounterMax
	}
	t.divCounter--

	if tac&0x04 == 0 {
		return
	}
	if t.timerCounter == 0 {
		overflowed := *tima == 0xFF
		*tima++
		if overflowed {
			*tima = tma
			if t.req != nil {
				t.req(interrupt.Timer)
			}
		}
		t.timerCounter = tacPeriod[tac&0x03]
		return
	}
	t.timerCounter--
}
