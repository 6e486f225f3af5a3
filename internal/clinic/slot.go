package clinic

import (
	"strings"
	"time"
)

// VisitDuration is the fixed length of every auto-booked appointment.
const VisitDuration = 30 * time.Minute

const defaultStartHour = 8

// ResolveSlot turns a preferred date plus a human-entered window string such
// as "08:00 - 08:30" into a concrete interval. Only the start of the window
// is honored; the end is always start plus VisitDuration. A malformed or
// empty window silently defaults the start to 08:00 on the given date, so a
// formatting quirk never fails a booking.
func ResolveSlot(date time.Time, window string) (start, end time.Time) {
	start = time.Date(date.Year(), date.Month(), date.Day(), defaultStartHour, 0, 0, 0, date.Location())

	if t, ok := parseWindowStart(window); ok {
		start = time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
	}

	return start, start.Add(VisitDuration)
}

func parseWindowStart(window string) (time.Time, bool) {
	first := strings.TrimSpace(strings.SplitN(window, "-", 2)[0])
	if first == "" {
		return time.Time{}, false
	}

	t, err := time.Parse("15:04", first)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
