package core

import (
	"testing"
	"time"
)

func projectionRules() []RecurringRule {
	return []RecurringRule{
		{Description: "salary", Amount: Money{Cents: 300000}, Type: Income, Active: true, AccountID: 1, DayOfMonth: 5},
		{Description: "rent", Amount: Money{Cents: 120000}, Type: Expense, Active: true, AccountID: 1, DayOfMonth: 1},
		{Description: "gym", Amount: Money{Cents: 5000}, Type: Expense, Active: true, AccountID: 1, DayOfMonth: 10},
		{Description: "old insurance", Amount: Money{Cents: 99999}, Type: Expense, Active: false, AccountID: 1, DayOfMonth: 1},
	}
}

func TestProjectMonotonicUnderConstantRules(t *testing.T) {
	p := Project(Money{Cents: 100000}, projectionRules(), 6, 2025, time.May)

	if len(p.Items) != 6 {
		t.Fatalf("expected 6 items, got %d", len(p.Items))
	}
	if p.StartBalance.Cents != 100000 {
		t.Errorf("start balance = %d, want 100000", p.StartBalance.Cents)
	}

	wantNet := int64(300000 - 120000 - 5000)
	prev := p.StartBalance.Cents
	for i, item := range p.Items {
		if item.Income.Cents != 300000 || item.Expense.Cents != 125000 {
			t.Errorf("item %d totals = %d/%d, want 300000/125000", i, item.Income.Cents, item.Expense.Cents)
		}
		if item.Net.Cents != wantNet {
			t.Errorf("item %d net = %d, want %d", i, item.Net.Cents, wantNet)
		}
		if item.ProjectedBalance.Cents != prev+wantNet {
			t.Errorf("item %d balance = %d, want %d", i, item.ProjectedBalance.Cents, prev+wantNet)
		}
		prev = item.ProjectedBalance.Cents
	}
}

func TestProjectMonthSequence(t *testing.T) {
	p := Project(Money{}, projectionRules(), 3, 2025, time.December)

	wants := []struct {
		year  int
		month time.Month
	}{
		{2025, time.December},
		{2026, time.January},
		{2026, time.February},
	}
	for i, want := range wants {
		if p.Items[i].Year != want.year || p.Items[i].Month != want.month {
			t.Errorf("item %d = %d-%v, want %d-%v", i, p.Items[i].Year, p.Items[i].Month, want.year, want.month)
		}
	}
}

func TestProjectClampsMonths(t *testing.T) {
	if got := len(Project(Money{}, nil, 0, 2025, time.May).Items); got != MinProjectionMonths {
		t.Errorf("months=0 produced %d items, want %d", got, MinProjectionMonths)
	}
	if got := len(Project(Money{}, nil, 120, 2025, time.May).Items); got != MaxProjectionMonths {
		t.Errorf("months=120 produced %d items, want %d", got, MaxProjectionMonths)
	}
}

func TestProjectIgnoresInactiveRules(t *testing.T) {
	rules := []RecurringRule{
		{Description: "inactive", Amount: Money{Cents: 5000}, Type: Income, Active: false},
	}
	p := Project(Money{Cents: 1000}, rules, 2, 2025, time.May)
	for i, item := range p.Items {
		if item.Income.Cents != 0 || item.Expense.Cents != 0 {
			t.Errorf("item %d should have zero totals, got %d/%d", i, item.Income.Cents, item.Expense.Cents)
		}
		if item.ProjectedBalance.Cents != 1000 {
			t.Errorf("item %d balance drifted to %d", i, item.ProjectedBalance.Cents)
		}
	}
}
