package services

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestRecurringService_Generate_Idempotent(t *testing.T) {
	repo := newTestRepo(t)
	recurring := NewRecurringService(repo)
	ctx := context.Background()

	account := seedAccount(t, repo, core.Account{InitialBalance: core.Money{Cents: 100_000}})
	category := seedCategory(t, repo, "housing", core.Expense)

	_, err := repo.Queries().CreateRecurringRule(ctx, core.RecurringRule{
		UserID:      testUserID,
		AccountID:   account.ID,
		CategoryID:  category.ID,
		Description: "rent",
		Amount:      core.Money{Cents: 90_000},
		Type:        core.Expense,
		DayOfMonth:  1,
		Active:      true,
	})
	if err != nil {
		t.Fatalf("CreateRecurringRule() error = %v", err)
	}

	first, err := recurring.Generate(ctx, testUserID, 2025, time.June)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if first.Created != 1 || first.Skipped != 0 {
		t.Errorf("first run = %+v, want 1 created", first)
	}

	second, err := recurring.Generate(ctx, testUserID, 2025, time.June)
	if err != nil {
		t.Fatalf("Generate() second run error = %v", err)
	}
	if second.Created != 0 || second.Skipped != 1 {
		t.Errorf("second run = %+v, want 1 skipped", second)
	}

	txs, err := repo.Queries().ListTransactions(ctx, testUserID)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txs))
	}
	if txs[0].Paid {
		t.Error("materialized transaction must be unpaid")
	}
	if got := txs[0].Date; got.Year() != 2025 || got.Month() != time.June || got.Day() != 1 {
		t.Errorf("materialized date = %v, want 2025-06-01", got)
	}

	// delta applied exactly once
	if got := accountBalance(t, repo, account.ID); got != 10_000 {
		t.Errorf("balance = %d, want 10000", got)
	}
}

func TestRecurringService_Generate_SkipsExistingMatch(t *testing.T) {
	repo := newTestRepo(t)
	recurring := NewRecurringService(repo)
	ctx := context.Background()

	account := seedAccount(t, repo, core.Account{InitialBalance: core.Money{Cents: 100_000}})
	category := seedCategory(t, repo, "housing", core.Expense)

	if _, err := repo.Queries().CreateRecurringRule(ctx, core.RecurringRule{
		UserID:      testUserID,
		AccountID:   account.ID,
		CategoryID:  category.ID,
		Description: "rent",
		Amount:      core.Money{Cents: 90_000},
		Type:        core.Expense,
		DayOfMonth:  1,
		Active:      true,
	}); err != nil {
		t.Fatalf("CreateRecurringRule() error = %v", err)
	}

	// A matching row already in the month, as left behind by a concurrent
	// materialization that committed between our listing and our insert.
	if _, err := repo.Queries().InsertTransaction(ctx, core.Transaction{
		UserID:      testUserID,
		AccountID:   account.ID,
		CategoryID:  category.ID,
		Description: "rent",
		Amount:      core.Money{Cents: 90_000},
		Date:        dateUTC(2025, time.June, 1),
		Type:        core.Expense,
	}); err != nil {
		t.Fatalf("InsertTransaction() error = %v", err)
	}

	result, err := recurring.Generate(ctx, testUserID, 2025, time.June)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Created != 0 || result.Skipped != 1 {
		t.Errorf("result = %+v, want 1 skipped", result)
	}

	txs, err := repo.Queries().ListTransactions(ctx, testUserID)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("transactions = %d, want 1 (no duplicate materialization)", len(txs))
	}
}

func TestRecurringService_Generate_ClampsDay(t *testing.T) {
	repo := newTestRepo(t)
	recurring := NewRecurringService(repo)
	ctx := context.Background()

	account := seedAccount(t, repo, core.Account{})
	if _, err := repo.Queries().CreateRecurringRule(ctx, core.RecurringRule{
		UserID:      testUserID,
		AccountID:   account.ID,
		Description: "end of month sweep",
		Amount:      core.Money{Cents: 5_000},
		Type:        core.Expense,
		DayOfMonth:  31,
		Active:      true,
	}); err != nil {
		t.Fatalf("CreateRecurringRule() error = %v", err)
	}

	if _, err := recurring.Generate(ctx, testUserID, 2025, time.February); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	txs, err := repo.Queries().ListTransactions(ctx, testUserID)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txs))
	}
	if got := txs[0].Date.Day(); got != 28 {
		t.Errorf("day = %d, want 28", got)
	}
}

func TestRecurringService_Generate_SkipsInactive(t *testing.T) {
	repo := newTestRepo(t)
	recurring := NewRecurringService(repo)
	ctx := context.Background()

	account := seedAccount(t, repo, core.Account{})
	if _, err := repo.Queries().CreateRecurringRule(ctx, core.RecurringRule{
		UserID:      testUserID,
		AccountID:   account.ID,
		Description: "paused subscription",
		Amount:      core.Money{Cents: 1_500},
		Type:        core.Expense,
		DayOfMonth:  5,
		Active:      false,
	}); err != nil {
		t.Fatalf("CreateRecurringRule() error = %v", err)
	}

	result, err := recurring.Generate(ctx, testUserID, 2025, time.June)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Created != 0 {
		t.Errorf("created = %d, want 0", result.Created)
	}
}

func TestRecurringService_Projection(t *testing.T) {
	repo := newTestRepo(t)
	recurring := NewRecurringService(repo)
	ctx := context.Background()

	cash := seedAccount(t, repo, core.Account{Name: "cash", InitialBalance: core.Money{Cents: 100_000}})
	seedAccount(t, repo, core.Account{Name: "card", IsCreditCard: true, InitialBalance: core.Money{Cents: -50_000}})

	rules := []core.RecurringRule{
		{UserID: testUserID, AccountID: cash.ID, Description: "salary", Amount: core.Money{Cents: 200_000}, Type: core.Income, DayOfMonth: 1, Active: true},
		{UserID: testUserID, AccountID: cash.ID, Description: "rent", Amount: core.Money{Cents: 80_000}, Type: core.Expense, DayOfMonth: 3, Active: true},
	}
	for _, r := range rules {
		if _, err := repo.Queries().CreateRecurringRule(ctx, r); err != nil {
			t.Fatalf("CreateRecurringRule() error = %v", err)
		}
	}

	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	p, err := recurring.Projection(ctx, testUserID, 3, now)
	if err != nil {
		t.Fatalf("Projection() error = %v", err)
	}

	// credit card debt stays out of the starting balance
	if p.StartBalance.Cents != 100_000 {
		t.Errorf("start balance = %d, want 100000 (cash only)", p.StartBalance.Cents)
	}
	if len(p.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(p.Items))
	}
	if got := p.Items[0].ProjectedBalance.Cents; got != 220_000 {
		t.Errorf("first month balance = %d, want 220000", got)
	}
	if got := p.Items[2].ProjectedBalance.Cents; got != 460_000 {
		t.Errorf("third month balance = %d, want 460000", got)
	}
}
