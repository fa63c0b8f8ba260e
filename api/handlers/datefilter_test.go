package handlers_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/likertlabs/pulse/api/handlers"
	"github.com/stretchr/testify/assert"
)

// pinClock fixes the handler clock at 2024-03-15 noon UTC for the test.
func pinClock(t *testing.T) {
	t.Helper()
	fake := clockwork.NewFakeClockAt(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	prev := handlers.SetClock(fake)
	t.Cleanup(func() { handlers.SetClock(prev) })
}

func TestResolveDateFilter_Today(t *testing.T) {
	pinClock(t)

	rng, ok := handlers.ResolveDateFilter("today", "", "")

	assert.True(t, ok)
	assert.Equal(t, handlers.DateRange{From: "2024-03-15", To: "2024-03-15"}, rng)
}

func TestResolveDateFilter_Last7Days(t *testing.T) {
	pinClock(t)

	// 7 calendar days inclusive of today, not 8
	want := handlers.DateRange{From: "2024-03-09", To: "2024-03-15"}

	rng, ok := handlers.ResolveDateFilter("last7days", "", "")
	assert.True(t, ok)
	assert.Equal(t, want, rng)

	rng, ok = handlers.ResolveDateFilter("last7", "", "")
	assert.True(t, ok)
	assert.Equal(t, want, rng)
}

func TestResolveDateFilter_Custom(t *testing.T) {
	rng, ok := handlers.ResolveDateFilter("custom", "2024-01-01", "2024-02-01")
	assert.True(t, ok)
	assert.Equal(t, handlers.DateRange{From: "2024-01-01", To: "2024-02-01"}, rng)
}

func TestResolveDateFilter_CustomSingleSided(t *testing.T) {
	rng, ok := handlers.ResolveDateFilter("custom", "2024-01-01", "")
	assert.True(t, ok)
	assert.Equal(t, handlers.DateRange{From: "2024-01-01"}, rng)

	rng, ok = handlers.ResolveDateFilter("custom", "", "2024-02-01")
	assert.True(t, ok)
	assert.Equal(t, handlers.DateRange{To: "2024-02-01"}, rng)
}

func TestResolveDateFilter_CustomEmptyIsInactive(t *testing.T) {
	_, ok := handlers.ResolveDateFilter("custom", "", "")
	assert.False(t, ok)
}

func TestResolveDateFilter_AllAndUnknownAreInactive(t *testing.T) {
	for _, filter := range []string{"all", "", "yesterday", "garbage"} {
		_, ok := handlers.ResolveDateFilter(filter, "2024-01-01", "2024-02-01")
		assert.False(t, ok, "filter %q should be inactive", filter)
	}
}
