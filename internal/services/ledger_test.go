package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestLedgerService_CreateTransaction_MovesBalance(t *testing.T) {
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo, nil)
	ctx := context.Background()

	account := seedAccount(t, repo, core.Account{InitialBalance: core.Money{Cents: 100_000}})

	tests := []struct {
		name        string
		amount      int64
		txType      core.TransactionType
		wantBalance int64
	}{
		{"expense decreases balance", 2_500, core.Expense, 97_500},
		{"income increases balance", 10_000, core.Income, 107_500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.CreateTransaction(ctx, testUserID, core.InstallmentPlan{
				Description: tt.name,
				Amount:      core.Money{Cents: tt.amount},
				Count:       1,
				Type:        tt.txType,
				AccountID:   account.ID,
				Date:        dateUTC(2025, 3, 10),
			})
			if err != nil {
				t.Fatalf("CreateTransaction() error = %v", err)
			}
			if got := accountBalance(t, repo, account.ID); got != tt.wantBalance {
				t.Errorf("balance = %d, want %d", got, tt.wantBalance)
			}
		})
	}
}

func TestLedgerService_CreateTransaction_Installments(t *testing.T) {
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo, nil)
	ctx := context.Background()

	card := seedAccount(t, repo, core.Account{
		Name:         "credit card",
		IsCreditCard: true,
		ClosingDay:   25,
		DueDay:       5,
	})

	inserted, err := ledger.CreateTransaction(ctx, testUserID, core.InstallmentPlan{
		Description: "new laptop",
		Amount:      core.Money{Cents: 30_000},
		Count:       3,
		Type:        core.Expense,
		AccountID:   card.ID,
		Date:        dateUTC(2025, 5, 10),
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if len(inserted) != 3 {
		t.Fatalf("inserted %d transactions, want 3", len(inserted))
	}

	group := inserted[0].InstallmentID
	if group == "" {
		t.Fatal("installment group id is empty")
	}
	for i, tx := range inserted {
		if tx.InstallmentID != group {
			t.Errorf("transaction %d group = %q, want %q", i, tx.InstallmentID, group)
		}
		if !strings.HasSuffix(tx.Description, "(1/3)") && i == 0 {
			t.Errorf("first description = %q, want (1/3) suffix", tx.Description)
		}
	}

	// card debt grows by the full purchase
	if got := accountBalance(t, repo, card.ID); got != -90_000 {
		t.Errorf("card balance = %d, want -90000", got)
	}
}

func TestLedgerService_UpdateTransaction_AcrossAccounts(t *testing.T) {
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo, nil)
	ctx := context.Background()

	first := seedAccount(t, repo, core.Account{Name: "first", InitialBalance: core.Money{Cents: 50_000}})
	second := seedAccount(t, repo, core.Account{Name: "second", InitialBalance: core.Money{Cents: 50_000}})

	inserted, err := ledger.CreateTransaction(ctx, testUserID, core.InstallmentPlan{
		Description: "groceries",
		Amount:      core.Money{Cents: 4_000},
		Count:       1,
		Type:        core.Expense,
		AccountID:   first.ID,
		Date:        dateUTC(2025, 3, 10),
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	updated := inserted[0]
	updated.AccountID = second.ID
	updated.Amount = core.Money{Cents: 6_000}
	if _, err := ledger.UpdateTransaction(ctx, updated); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}

	if got := accountBalance(t, repo, first.ID); got != 50_000 {
		t.Errorf("old account balance = %d, want 50000 (delta reversed)", got)
	}
	if got := accountBalance(t, repo, second.ID); got != 44_000 {
		t.Errorf("new account balance = %d, want 44000", got)
	}
}

func TestLedgerService_DeleteTransaction_ReversesDelta(t *testing.T) {
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo, nil)
	ctx := context.Background()

	account := seedAccount(t, repo, core.Account{InitialBalance: core.Money{Cents: 20_000}})

	inserted, err := ledger.CreateTransaction(ctx, testUserID, core.InstallmentPlan{
		Description: "dinner",
		Amount:      core.Money{Cents: 3_500},
		Count:       1,
		Type:        core.Expense,
		AccountID:   account.ID,
		Date:        dateUTC(2025, 3, 10),
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	if err := ledger.DeleteTransaction(ctx, testUserID, inserted[0].ID, false); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if got := accountBalance(t, repo, account.ID); got != 20_000 {
		t.Errorf("balance = %d, want 20000", got)
	}
}

func TestLedgerService_DeleteTransaction_Group(t *testing.T) {
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo, nil)
	ctx := context.Background()

	account := seedAccount(t, repo, core.Account{})

	inserted, err := ledger.CreateTransaction(ctx, testUserID, core.InstallmentPlan{
		Description: "sofa",
		Amount:      core.Money{Cents: 25_000},
		Count:       4,
		Type:        core.Expense,
		AccountID:   account.ID,
		Date:        dateUTC(2025, 3, 10),
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	if err := ledger.DeleteTransaction(ctx, testUserID, inserted[2].ID, true); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	remaining, err := repo.Queries().ListTransactions(ctx, testUserID)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("remaining transactions = %d, want 0", len(remaining))
	}
	if got := accountBalance(t, repo, account.ID); got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}
}

func TestLedgerService_Transfer(t *testing.T) {
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo, nil)
	ctx := context.Background()

	from := seedAccount(t, repo, core.Account{Name: "from", InitialBalance: core.Money{Cents: 80_000}})
	to := seedAccount(t, repo, core.Account{Name: "to", InitialBalance: core.Money{Cents: 10_000}})

	inserted, err := ledger.Transfer(ctx, testUserID, from.ID, to.ID,
		core.Money{Cents: 30_000}, dateUTC(2025, 4, 1), "savings top-up")
	if err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if len(inserted) != 2 {
		t.Fatalf("inserted %d transactions, want 2", len(inserted))
	}
	if inserted[0].Type != core.Expense || inserted[1].Type != core.Income {
		t.Errorf("transfer legs = %s/%s, want expense/income", inserted[0].Type, inserted[1].Type)
	}
	if !inserted[0].Paid || !inserted[1].Paid {
		t.Error("transfer legs must be paid")
	}

	if got := accountBalance(t, repo, from.ID); got != 50_000 {
		t.Errorf("source balance = %d, want 50000", got)
	}
	if got := accountBalance(t, repo, to.ID); got != 40_000 {
		t.Errorf("destination balance = %d, want 40000", got)
	}
}

func TestLedgerService_Transfer_SameAccount(t *testing.T) {
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo, nil)

	account := seedAccount(t, repo, core.Account{})

	_, err := ledger.Transfer(context.Background(), testUserID, account.ID, account.ID,
		core.Money{Cents: 1_000}, dateUTC(2025, 4, 1), "")
	if !errors.Is(err, core.ErrSameAccount) {
		t.Errorf("Transfer() error = %v, want ErrSameAccount", err)
	}
}

func TestLedgerService_AdjustBalance(t *testing.T) {
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo, nil)
	ctx := context.Background()

	account := seedAccount(t, repo, core.Account{InitialBalance: core.Money{Cents: 10_000}})

	t.Run("target above current creates income", func(t *testing.T) {
		tx, err := ledger.AdjustBalance(ctx, testUserID, account.ID, 15_000)
		if err != nil {
			t.Fatalf("AdjustBalance() error = %v", err)
		}
		if tx == nil {
			t.Fatal("AdjustBalance() returned no transaction")
		}
		if tx.Type != core.Income || tx.Amount.Cents != 5_000 {
			t.Errorf("adjustment = %s %d, want income 5000", tx.Type, tx.Amount.Cents)
		}
		if !tx.Paid {
			t.Error("adjustment must be paid")
		}
		if got := accountBalance(t, repo, account.ID); got != 15_000 {
			t.Errorf("balance = %d, want 15000", got)
		}
	})

	t.Run("target below current creates expense", func(t *testing.T) {
		tx, err := ledger.AdjustBalance(ctx, testUserID, account.ID, 12_000)
		if err != nil {
			t.Fatalf("AdjustBalance() error = %v", err)
		}
		if tx.Type != core.Expense || tx.Amount.Cents != 3_000 {
			t.Errorf("adjustment = %s %d, want expense 3000", tx.Type, tx.Amount.Cents)
		}
		if got := accountBalance(t, repo, account.ID); got != 12_000 {
			t.Errorf("balance = %d, want 12000", got)
		}
	})

	t.Run("target equal to current is a no-op", func(t *testing.T) {
		before, err := repo.Queries().ListTransactions(ctx, testUserID)
		if err != nil {
			t.Fatalf("ListTransactions() error = %v", err)
		}
		tx, err := ledger.AdjustBalance(ctx, testUserID, account.ID, 12_000)
		if err != nil {
			t.Fatalf("AdjustBalance() error = %v", err)
		}
		if tx != nil {
			t.Errorf("AdjustBalance() = %+v, want nil", tx)
		}
		after, err := repo.Queries().ListTransactions(ctx, testUserID)
		if err != nil {
			t.Fatalf("ListTransactions() error = %v", err)
		}
		if len(after) != len(before) {
			t.Errorf("transaction count changed %d -> %d", len(before), len(after))
		}
	})
}

func TestLedgerService_CreateTransaction_UnknownAccount(t *testing.T) {
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo, nil)

	_, err := ledger.CreateTransaction(context.Background(), testUserID, core.InstallmentPlan{
		Description: "ghost",
		Amount:      core.Money{Cents: 100},
		Count:       1,
		Type:        core.Expense,
		AccountID:   999,
		Date:        dateUTC(2025, 3, 10),
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("CreateTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestLedgerService_BalanceInvariant(t *testing.T) {
	repo := newTestRepo(t)
	ledger := NewLedgerService(repo, nil)
	ctx := context.Background()

	account := seedAccount(t, repo, core.Account{InitialBalance: core.Money{Cents: 42_000}})

	plans := []core.InstallmentPlan{
		{Description: "salary", Amount: core.Money{Cents: 250_000}, Count: 1, Type: core.Income, AccountID: account.ID, Date: dateUTC(2025, 3, 1)},
		{Description: "rent", Amount: core.Money{Cents: 90_000}, Count: 1, Type: core.Expense, AccountID: account.ID, Date: dateUTC(2025, 3, 2)},
		{Description: "phone", Amount: core.Money{Cents: 6_000}, Count: 2, Type: core.Expense, AccountID: account.ID, Date: dateUTC(2025, 3, 3)},
	}
	for _, p := range plans {
		if _, err := ledger.CreateTransaction(ctx, testUserID, p); err != nil {
			t.Fatalf("CreateTransaction(%q) error = %v", p.Description, err)
		}
	}

	txs, err := repo.Queries().ListTransactions(ctx, testUserID)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	var sum int64
	for _, tx := range txs {
		sum += tx.DeltaCents()
	}

	want := account.InitialBalance.Cents + sum
	if got := accountBalance(t, repo, account.ID); got != want {
		t.Errorf("balance = %d, want initial+deltas = %d", got, want)
	}
}
