package gamification

import (
	"math"
	"time"
)

const (
	// streakBonusPerDay is the linear per-day streak bonus.
	streakBonusPerDay = 5
	// streakBonusCap caps the daily streak bonus.
	streakBonusCap = 25
)

// StreakResult is the outcome of evaluating one day of activity.
type StreakResult struct {
	NewStreak      int
	Bonus          int
	AlreadyCounted bool
}

// EvaluateStreak computes the streak state for an activity happening today.
// last is the previously recorded activity date (nil when none). Rules, in
// order: a repeat on the same calendar day keeps the streak and earns no
// bonus; a gap of exactly one day extends the streak and earns
// min(newStreak*5, 25) bonus points; anything else, including a backward
// clock, resets the streak to 1 with no bonus.
func EvaluateStreak(last *time.Time, today time.Time, currentStreak int) StreakResult {
	if last != nil {
		diff := daysBetween(*last, today)
		if diff == 0 {
			return StreakResult{NewStreak: currentStreak, AlreadyCounted: true}
		}
		if diff == 1 {
			newStreak := currentStreak + 1
			bonus := newStreak * streakBonusPerDay
			if bonus > streakBonusCap {
				bonus = streakBonusCap
			}
			return StreakResult{NewStreak: newStreak, Bonus: bonus}
		}
	}
	return StreakResult{NewStreak: 1}
}

// daysBetween returns the whole calendar days from a to b, comparing dates
// truncated to midnight rather than 24h spans so activity at 23:59 and 00:01
// counts as consecutive days.
func daysBetween(a, b time.Time) int {
	a = truncateToDay(a)
	b = truncateToDay(b)
	// Rounding absorbs the 23h/25h days around DST transitions.
	return int(math.Round(b.Sub(a).Hours() / 24))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
