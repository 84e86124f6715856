package checkout

import (
	"sync/atomic"
	"time"
)

const (
	countdownRunning int32 = iota
	countdownFired
	countdownStopped
)

// Countdown counts down in ticks and then fires once. Stop before firing
// guarantees the fire callback never runs.
type Countdown struct {
	remaining atomic.Int32
	state     atomic.Int32
	stop      chan struct{}
	done      chan struct{}
}

// StartCountdown starts a countdown of total split into ticks of length tick.
// onTick receives the ticks left after each tick that does not end the
// countdown; onFire runs once when it ends. Both run on the countdown's own
// goroutine.
func StartCountdown(total, tick time.Duration, onTick func(remaining int), onFire func()) *Countdown {
	if tick <= 0 {
		tick = time.Second
	}
	steps := int(total / tick)
	if total%tick != 0 {
		steps++
	}
	if steps < 1 {
		steps = 1
	}

	c := &Countdown{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	c.remaining.Store(int32(steps))

	go c.run(tick, onTick, onFire)
	return c
}

func (c *Countdown) run(tick time.Duration, onTick func(int), onFire func()) {
	defer close(c.done)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			left := c.remaining.Add(-1)
			if left > 0 {
				if onTick != nil && c.state.Load() == countdownRunning {
					onTick(int(left))
				}
				continue
			}
			if c.state.CompareAndSwap(countdownRunning, countdownFired) && onFire != nil {
				onFire()
			}
			return
		}
	}
}

// Stop cancels the countdown. It returns false if the countdown already
// fired or was already stopped.
func (c *Countdown) Stop() bool {
	if !c.state.CompareAndSwap(countdownRunning, countdownStopped) {
		return false
	}
	close(c.stop)
	return true
}

// Remaining returns the number of ticks left.
func (c *Countdown) Remaining() int {
	return int(c.remaining.Load())
}

// Fired reports whether the countdown reached zero.
func (c *Countdown) Fired() bool {
	return c.state.Load() == countdownFired
}

// Done is closed once the countdown goroutine has exited, after onFire
// returns if it ran.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
