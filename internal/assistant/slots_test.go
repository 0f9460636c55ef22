package assistant

import (
	"math/rand"
	"strings"
	"testing"
	"time"
)

func TestWeeklySlotsCoversUpcomingWorkWeek(t *testing.T) {
	// A Wednesday; the upcoming work week starts the following Monday.
	now := time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(1))

	slots := weeklySlots(now, rng)

	monday := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	friday := monday.AddDate(0, 0, 4)
	perDay := map[time.Time]int{}
	seen := map[string]struct{}{}
	lastDay := monday
	for _, s := range slots {
		if s.Day.Before(monday) || s.Day.After(friday) {
			t.Fatalf("slot %v outside Monday-Friday window", s.Day)
		}
		if s.Day.Weekday() == time.Saturday || s.Day.Weekday() == time.Sunday {
			t.Fatalf("weekend slot %v", s.Day)
		}
		if s.Day.Before(lastDay) {
			t.Fatal("slots not sorted by weekday")
		}
		lastDay = s.Day
		key := s.Day.Format("2006-01-02") + "|" + s.Time
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate slot %s", key)
		}
		seen[key] = struct{}{}
		perDay[s.Day]++
	}
	if len(perDay) != 5 {
		t.Fatalf("slots span %d days, want 5", len(perDay))
	}
	for day, n := range perDay {
		if n < 1 || n > 3 {
			t.Fatalf("day %v has %d slots, want 1..3", day, n)
		}
	}
}

func TestNextMondayStrictlyAfterNow(t *testing.T) {
	tests := []struct {
		now  string
		want string
	}{
		{"2026-03-02", "2026-03-09"}, // Monday rolls to next week
		{"2026-03-04", "2026-03-09"}, // Wednesday
		{"2026-03-08", "2026-03-09"}, // Sunday
	}
	for _, tc := range tests {
		now, _ := time.Parse("2006-01-02", tc.now)
		got := nextMonday(now)
		if got.Format("2006-01-02") != tc.want {
			t.Fatalf("nextMonday(%s) = %s, want %s", tc.now, got.Format("2006-01-02"), tc.want)
		}
		if got.Weekday() != time.Monday {
			t.Fatalf("nextMonday(%s) fell on %s", tc.now, got.Weekday())
		}
	}
}

func TestFormatSlots(t *testing.T) {
	day := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	out := formatSlots([]Slot{{Day: day, Time: "9:00 AM"}})
	if !strings.Contains(out, "Monday, Mar 9: 9:00 AM") {
		t.Fatalf("unexpected format: %q", out)
	}
}
