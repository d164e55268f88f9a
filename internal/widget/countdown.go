package widget

import (
	"fmt"

	"github.com/rs/zerolog"

	"quiz-client/internal/domain"
	"quiz-client/internal/event"
	"quiz-client/internal/ui"
)

// TimerState is the countdown lifecycle.
type TimerState int

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerStopped
)

func (s TimerState) String() string {
	switch s {
	case TimerRunning:
		return "running"
	case TimerStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// Countdown is the per-question timer. It never schedules itself: the event
// loop calls Tick once per second.
type Countdown struct {
	bus    *event.Bus
	region *ui.Region
	logger zerolog.Logger

	state       TimerState
	duration    int
	remaining   int
	accumulated int
}

// NewCountdown subscribes the timer to QuestionSet and StopTimer.
func NewCountdown(bus *event.Bus, region *ui.Region, logger zerolog.Logger) *Countdown {
	c := &Countdown{
		bus:    bus,
		region: region,
		logger: logger.With().Str("component", "countdown").Logger(),
	}
	event.On(bus, func(e event.QuestionSet) { c.Start(e.Duration) })
	event.On(bus, func(event.StopTimer) { c.Stop() })
	return c
}

// Start restarts the countdown from seconds. Non-positive input falls back to
// the default limit. Time consumed by a still-running countdown is kept.
func (c *Countdown) Start(seconds int) {
	if seconds <= 0 {
		c.logger.Warn().Int("seconds", seconds).Int("default", domain.DefaultLimitSeconds).Msg("invalid timer duration, using default")
		seconds = domain.DefaultLimitSeconds
	}
	c.Stop()
	c.duration = seconds
	c.remaining = seconds
	c.state = TimerRunning
	c.render()
}

// Tick advances the countdown by one second. Reaching zero stops the timer
// and emits TimeExhausted with the accumulated total.
func (c *Countdown) Tick() {
	if c.state != TimerRunning {
		return
	}
	c.remaining--
	c.render()
	if c.remaining > 0 {
		return
	}
	c.Stop()
	c.bus.Emit(event.TimeExhausted{Accumulated: c.accumulated})
}

// Stop halts the countdown and folds the consumed seconds into the total.
// Calling it while not running does nothing.
func (c *Countdown) Stop() {
	if c.state != TimerRunning {
		return
	}
	c.accumulated += c.duration - c.remaining
	c.state = TimerStopped
}

// Reset clears remaining and accumulated time and returns to idle.
func (c *Countdown) Reset() {
	c.state = TimerIdle
	c.duration = 0
	c.remaining = 0
	c.accumulated = 0
	c.render()
}

// Elapsed is the accumulated number of seconds across stopped runs.
func (c *Countdown) Elapsed() int { return c.accumulated }

// Remaining is the number of seconds left in the current run.
func (c *Countdown) Remaining() int { return c.remaining }

func (c *Countdown) State() TimerState { return c.state }

func (c *Countdown) render() {
	c.region.Set(fmt.Sprintf("[ %2ds left ]", c.remaining))
}
