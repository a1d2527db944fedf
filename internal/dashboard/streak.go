package dashboard

import (
	"slices"
	"time"
)

// NextStreakMilestone returns the next streak milestone above current.
func NextStreakMilestone(current int) int {
	for _, m := range []int{5, 10, 15, 20} {
		if m > current {
			return m
		}
	}
	// Beyond 20, every 5.
	return ((current / 5) + 1) * 5
}

// CurrentStreak counts consecutive UTC days with at least one quiz. The
// run must end today or yesterday, otherwise the streak is 0.
func CurrentStreak(taken []time.Time, now time.Time) int {
	if len(taken) == 0 {
		return 0
	}

	days := make([]time.Time, 0, len(taken))
	for _, t := range taken {
		days = append(days, utcDay(t))
	}
	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })
	days = slices.Compact(days)

	today := utcDay(now)
	if gap := today.Sub(days[0]); gap > 24*time.Hour || gap < 0 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) != 24*time.Hour {
			break
		}
		streak++
	}
	return streak
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
