package handlers

import (
	"github.com/jonboulle/clockwork"
)

const dateLayout = "2006-01-02"

// clock supplies the server's notion of "today" for named date filters
// and the serverDate response field. Tests pin it with SetClock.
var clock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the handler clock (for testing). Returns the
// previous clock so callers can restore it.
func SetClock(c clockwork.Clock) clockwork.Clock {
	prev := clock
	clock = c
	return prev
}

// serverDate returns the server's current UTC date as yyyy-mm-dd.
func serverDate() string {
	return clock.Now().UTC().Format(dateLayout)
}

// DateRange is a resolved inclusive date window. An empty side means
// unbounded on that side.
type DateRange struct {
	From string
	To   string
}

// ResolveDateFilter maps a named date-filter token to a concrete range
// using the server clock, so "today" and "last 7 days" mean the same
// thing for every client regardless of its time zone. Last 7 days is
// [today-6d, today], 7 calendar days inclusive. Returns ok=false when
// no date constraint applies ("all", empty, or unrecognized tokens,
// and "custom" with neither bound supplied).
func ResolveDateFilter(filter, from, to string) (DateRange, bool) {
	switch filter {
	case "today":
		d := serverDate()
		return DateRange{From: d, To: d}, true
	case "last7", "last7days":
		now := clock.Now().UTC()
		return DateRange{
			From: now.AddDate(0, 0, -6).Format(dateLayout),
			To:   now.Format(dateLayout),
		}, true
	case "custom":
		if from == "" && to == "" {
			return DateRange{}, false
		}
		return DateRange{From: from, To: to}, true
	default:
		return DateRange{}, false
	}
}
