package prayer

import (
	"fmt"
	"time"
)

// Prayer is a named time on a given day.
type Prayer struct {
	Name string
	At   time.Time
}

// Ordered returns the timings in the order they occur during the day.
// Entries that do not parse as HH:MM are skipped.
func (t Timings) Ordered(day time.Time) []Prayer {
	named := []struct{ name, hhmm string }{
		{"Fajr", t.Fajr},
		{"Sunrise", t.Sunrise},
		{"Dhuhr", t.Dhuhr},
		{"Asr", t.Asr},
		{"Maghrib", t.Maghrib},
		{"Isha", t.Isha},
	}
	y, m, d := day.Date()
	out := make([]Prayer, 0, len(named))
	for _, n := range named {
		var hh, mm int
		// The API sometimes appends a timezone, e.g. "05:12 (EET)".
		if _, err := fmt.Sscanf(n.hhmm, "%d:%d", &hh, &mm); err != nil {
			continue
		}
		out = append(out, Prayer{Name: n.name, At: time.Date(y, m, d, hh, mm, 0, 0, day.Location())})
	}
	return out
}

// NextPrayer returns the first prayer strictly after now. Once Isha has
// passed it returns tomorrow's Fajr, estimated from today's time.
func NextPrayer(t Timings, now time.Time) (Prayer, bool) {
	ordered := t.Ordered(now)
	for _, p := range ordered {
		if p.At.After(now) {
			return p, true
		}
	}
	for _, p := range ordered {
		if p.Name == "Fajr" {
			return Prayer{Name: "Fajr (Tomorrow)", At: p.At.AddDate(0, 0, 1)}, true
		}
	}
	return Prayer{}, false
}
