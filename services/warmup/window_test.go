package warmup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsSendWindowOpen(t *testing.T) {
	cfg := defaultTestConfig()

	// Monday 2026-01-05
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 1, 3, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsSendWindowOpen(monday.Add(9*time.Hour), cfg), "window opens at 09:00")
	assert.True(t, IsSendWindowOpen(monday.Add(12*time.Hour+30*time.Minute), cfg))
	assert.False(t, IsSendWindowOpen(monday.Add(8*time.Hour+59*time.Minute), cfg), "before window")
	assert.False(t, IsSendWindowOpen(monday.Add(17*time.Hour), cfg), "window closes at 17:00")
	assert.False(t, IsSendWindowOpen(saturday, cfg), "weekend skip enabled")
}

func TestIsSendWindowOpenWeekendAllowed(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.SkipWeekends = false

	saturday := time.Date(2026, 1, 3, 12, 0, 0, 0, time.UTC)
	assert.True(t, IsSendWindowOpen(saturday, cfg))
}

func TestIsSendWindowOpenBadClockFallsBack(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.SendWindowStart = "not-a-clock"
	cfg.SendWindowEnd = "25:99"

	monday := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	assert.True(t, IsSendWindowOpen(monday, cfg))
}
