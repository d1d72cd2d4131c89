package core

import "time"

// Projection bounds; requests outside the range are clamped, not rejected.
const (
	MinProjectionMonths = 1
	MaxProjectionMonths = 36
)

type (
	// ProjectionItem is one projected calendar month.
	ProjectionItem struct {
		Year             int
		Month            time.Month
		Income           Money
		Expense          Money
		Net              Money
		ProjectedBalance Money
	}

	// Projection is a forward cash-flow estimate. Nothing behind it is
	// persisted; it is recomputed from current balances and active rules.
	Projection struct {
		StartBalance Money
		Items        []ProjectionItem
	}
)

// Project expands active recurring rules into a months-long cash-flow
// estimate starting at the given month. The monthly income and expense totals
// are flat sums over the active rules and held constant across the window; no
// per-month day clamping applies here, only materialization does that.
func Project(startBalance Money, rules []RecurringRule, months, startYear int, startMonth time.Month) Projection {
	if months < MinProjectionMonths {
		months = MinProjectionMonths
	}
	if months > MaxProjectionMonths {
		months = MaxProjectionMonths
	}

	var income, expense int64
	for _, r := range rules {
		if !r.Active {
			continue
		}
		switch r.Type {
		case Income:
			income += r.Amount.Cents
		case Expense:
			expense += r.Amount.Cents
		}
	}
	net := income - expense

	p := Projection{
		StartBalance: startBalance,
		Items:        make([]ProjectionItem, 0, months),
	}
	running := startBalance.Cents
	cursor := time.Date(startYear, startMonth, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		running += net
		p.Items = append(p.Items, ProjectionItem{
			Year:             cursor.Year(),
			Month:            cursor.Month(),
			Income:           Money{Cents: income},
			Expense:          Money{Cents: expense},
			Net:              Money{Cents: net},
			ProjectedBalance: Money{Cents: running},
		})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return p
}
