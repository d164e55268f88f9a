package widget

import (
	"bytes"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-client/internal/domain"
	"quiz-client/internal/event"
	"quiz-client/internal/ui"
)

func newTestCountdown(t *testing.T) (*Countdown, *event.Bus, *[]event.TimeExhausted) {
	t.Helper()
	bus := event.NewBus()
	screen := ui.NewScreen(io.Discard, false)
	c := NewCountdown(bus, screen.Region(ui.RegionTimer), zerolog.Nop())
	var exhausted []event.TimeExhausted
	event.On(bus, func(e event.TimeExhausted) { exhausted = append(exhausted, e) })
	return c, bus, &exhausted
}

func TestCountdownRunsToCompletion(t *testing.T) {
	for _, d := range []int{1, 3, 10, 45} {
		c, _, exhausted := newTestCountdown(t)
		c.Start(d)
		for i := 0; i < d+5; i++ {
			c.Tick()
		}
		assert.Equal(t, d, c.Elapsed(), "duration %d", d)
		assert.Equal(t, TimerStopped, c.State())
		require.Len(t, *exhausted, 1)
		assert.Equal(t, d, (*exhausted)[0].Accumulated)
	}
}

func TestCountdownInvalidDurationUsesDefault(t *testing.T) {
	for _, input := range []int{0, -5} {
		var buf bytes.Buffer
		bus := event.NewBus()
		screen := ui.NewScreen(io.Discard, false)
		c := NewCountdown(bus, screen.Region(ui.RegionTimer), zerolog.New(&buf))

		c.Start(input)
		assert.Equal(t, domain.DefaultLimitSeconds, c.Remaining())
		assert.Contains(t, buf.String(), "invalid timer duration")

		for i := 0; i < domain.DefaultLimitSeconds; i++ {
			c.Tick()
		}
		assert.Equal(t, domain.DefaultLimitSeconds, c.Elapsed())
	}
}

func TestCountdownStopFoldsAndIsIdempotent(t *testing.T) {
	c, _, exhausted := newTestCountdown(t)
	c.Start(10)
	c.Tick()
	c.Tick()
	c.Tick()
	c.Stop()
	c.Stop()
	assert.Equal(t, 3, c.Elapsed())
	assert.Equal(t, 7, c.Remaining())

	c.Tick()
	assert.Equal(t, 7, c.Remaining(), "stopped timer must not tick")

	c.Start(5)
	c.Tick()
	c.Tick()
	c.Stop()
	assert.Equal(t, 5, c.Elapsed())
	assert.Empty(t, *exhausted)
}

func TestCountdownRestartWhileRunningKeepsConsumedTime(t *testing.T) {
	c, _, _ := newTestCountdown(t)
	c.Start(10)
	c.Tick()
	c.Tick()
	c.Start(8)
	assert.Equal(t, 2, c.Elapsed())
	assert.Equal(t, 8, c.Remaining())
}

func TestCountdownResetReturnsToIdle(t *testing.T) {
	bus := event.NewBus()
	screen := ui.NewScreen(io.Discard, false)
	region := screen.Region(ui.RegionTimer)
	c := NewCountdown(bus, region, zerolog.Nop())

	c.Start(10)
	c.Tick()
	c.Stop()
	c.Reset()

	assert.Equal(t, TimerIdle, c.State())
	assert.Zero(t, c.Elapsed())
	assert.Zero(t, c.Remaining())
	assert.Equal(t, "[  0s left ]", region.Text())
}

func TestCountdownFollowsBusSignals(t *testing.T) {
	c, bus, _ := newTestCountdown(t)
	bus.Emit(event.QuestionSet{Question: domain.Question{Prompt: "q"}, Duration: 4})
	assert.Equal(t, TimerRunning, c.State())
	assert.Equal(t, 4, c.Remaining())

	c.Tick()
	bus.Emit(event.StopTimer{})
	assert.Equal(t, TimerStopped, c.State())
	assert.Equal(t, 1, c.Elapsed())
}
