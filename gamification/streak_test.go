package gamification

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestEvaluateStreakFirstActivity(t *testing.T) {
	got := EvaluateStreak(nil, date(2024, 3, 1, 10), 0)
	want := StreakResult{NewStreak: 1}
	if got != want {
		t.Errorf("first activity = %+v, want %+v", got, want)
	}
}

func TestEvaluateStreakSameDayIdempotent(t *testing.T) {
	today := date(2024, 3, 1, 10)
	last := date(2024, 3, 1, 8)

	first := EvaluateStreak(&last, today, 3)
	second := EvaluateStreak(&last, today, 3)

	want := StreakResult{NewStreak: 3, AlreadyCounted: true}
	if first != want || second != want {
		t.Errorf("same-day re-entry: first=%+v second=%+v, want %+v", first, second, want)
	}
}

func TestEvaluateStreakConsecutiveDay(t *testing.T) {
	yesterday := date(2024, 3, 1, 22)
	today := date(2024, 3, 2, 9)

	got := EvaluateStreak(&yesterday, today, 4)
	want := StreakResult{NewStreak: 5, Bonus: 25}
	if got != want {
		t.Errorf("consecutive day = %+v, want %+v", got, want)
	}
}

func TestEvaluateStreakBonusBelowCap(t *testing.T) {
	yesterday := date(2024, 3, 1, 12)
	today := date(2024, 3, 2, 12)

	got := EvaluateStreak(&yesterday, today, 1)
	if got.NewStreak != 2 || got.Bonus != 10 {
		t.Errorf("streak 1 -> 2 = %+v, want NewStreak=2 Bonus=10", got)
	}
}

func TestEvaluateStreakGapResets(t *testing.T) {
	last := date(2024, 3, 1, 12)
	today := date(2024, 3, 6, 12) // five days later

	got := EvaluateStreak(&last, today, 10)
	want := StreakResult{NewStreak: 1}
	if got != want {
		t.Errorf("gap reset = %+v, want %+v", got, want)
	}
}

func TestEvaluateStreakBackwardClockResets(t *testing.T) {
	last := date(2024, 3, 5, 12)
	today := date(2024, 3, 3, 12)

	got := EvaluateStreak(&last, today, 7)
	want := StreakResult{NewStreak: 1}
	if got != want {
		t.Errorf("backward clock = %+v, want %+v", got, want)
	}
}

func TestEvaluateStreakMidnightBoundary(t *testing.T) {
	// 23:59 and 00:01 the next day are consecutive calendar days even though
	// only two minutes elapsed.
	last := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	today := time.Date(2024, 3, 2, 0, 1, 0, 0, time.UTC)

	got := EvaluateStreak(&last, today, 2)
	if got.NewStreak != 3 || got.AlreadyCounted {
		t.Errorf("midnight boundary = %+v, want NewStreak=3", got)
	}
}
