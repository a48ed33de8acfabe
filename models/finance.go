package models

import (
	"sort"
	"time"
)

// Finance entry kinds.
const (
	FinanceIncome  = "income"
	FinanceExpense = "expense"
)

// FinanceEntry records money moving in or out. Amounts are positive cents;
// Kind carries the direction.
type FinanceEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Kind        string    `gorm:"size:16;not null;index" json:"kind"`
	Source      string    `gorm:"size:128" json:"source"`
	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	OccurredAt  time.Time `gorm:"index;not null" json:"occurred_at"`
	Note        string    `gorm:"size:512" json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

// MonthlySummary aggregates finance entries for one calendar month.
type MonthlySummary struct {
	Month        string `json:"month"` // YYYY-MM
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
	NetCents     int64  `json:"net_cents"`
}

// SummarizeByMonth groups entries by calendar month and totals income,
// expense and net per month, ordered chronologically. Unknown kinds are
// ignored.
func SummarizeByMonth(entries []FinanceEntry) []MonthlySummary {
	byMonth := map[string]*MonthlySummary{}
	for _, e := range entries {
		key := e.OccurredAt.Format("2006-01")
		s, ok := byMonth[key]
		if !ok {
			s = &MonthlySummary{Month: key}
			byMonth[key] = s
		}
		switch e.Kind {
		case FinanceIncome:
			s.IncomeCents += e.AmountCents
		case FinanceExpense:
			s.ExpenseCents += e.AmountCents
		}
	}

	out := make([]MonthlySummary, 0, len(byMonth))
	for _, s := range byMonth {
		s.NetCents = s.IncomeCents - s.ExpenseCents
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
