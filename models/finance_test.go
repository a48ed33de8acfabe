package models

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestSummarizeByMonth(t *testing.T) {
	entries := []FinanceEntry{
		{Kind: FinanceIncome, AmountCents: 5000, OccurredAt: day(2024, 3, 2)},
		{Kind: FinanceExpense, AmountCents: 1200, OccurredAt: day(2024, 3, 15)},
		{Kind: FinanceIncome, AmountCents: 3000, OccurredAt: day(2024, 3, 28)},
		{Kind: FinanceExpense, AmountCents: 700, OccurredAt: day(2024, 1, 5)},
		{Kind: "refund", AmountCents: 999, OccurredAt: day(2024, 3, 9)},
	}

	got := SummarizeByMonth(entries)
	want := []MonthlySummary{
		{Month: "2024-01", IncomeCents: 0, ExpenseCents: 700, NetCents: -700},
		{Month: "2024-03", IncomeCents: 8000, ExpenseCents: 1200, NetCents: 6800},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d months, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("month %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSummarizeByMonthEmpty(t *testing.T) {
	if got := SummarizeByMonth(nil); len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}
