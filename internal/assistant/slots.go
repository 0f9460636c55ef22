package assistant

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// slotTimes is the fixed time-of-day set slots are drawn from.
var slotTimes = []string{"9:00 AM", "10:30 AM", "1:00 PM", "2:30 PM", "4:00 PM"}

// Slot is one offered appointment opening.
type Slot struct {
	Day  time.Time
	Time string
}

// weeklySlots generates availability for the upcoming work week: for each
// day Monday through Friday after now, a small random subset of slotTimes,
// deduplicated per day/time pair and sorted by weekday then time of day.
func weeklySlots(now time.Time, rng *rand.Rand) []Slot {
	monday := nextMonday(now)
	slots := make([]Slot, 0, 3*5)
	for d := 0; d < 5; d++ {
		day := monday.AddDate(0, 0, d)
		// Selection sampling over the fixed set: exactly 1..3 distinct
		// times per day, emitted in time-of-day order.
		want := 1 + rng.Intn(3)
		picked := 0
		for i, t := range slotTimes {
			if rng.Intn(len(slotTimes)-i) < want-picked {
				slots = append(slots, Slot{Day: day, Time: t})
				picked++
			}
		}
	}
	return slots
}

// nextMonday returns the first Monday strictly after the given instant,
// at midnight UTC.
func nextMonday(now time.Time) time.Time {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(time.Monday) - int(day.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return day.AddDate(0, 0, offset)
}

// formatSlots renders slots as one line per opening, e.g.
// "- Monday, Jan 2: 9:00 AM".
func formatSlots(slots []Slot) string {
	var b strings.Builder
	for _, s := range slots {
		fmt.Fprintf(&b, "\n- %s, %s: %s", s.Day.Weekday(), s.Day.Format("Jan 2"), s.Time)
	}
	return b.String()
}

// wantsScheduling applies the keyword heuristic deciding whether to inject
// the slot list into the system prompt.
func wantsScheduling(message, currentStep string) bool {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "schedul") ||
		strings.Contains(lower, "appointment") ||
		strings.Contains(lower, "book") {
		return true
	}
	return strings.Contains(strings.ToLower(currentStep), "scheduling")
}
