package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestInvoiceService_InvoiceForMonth(t *testing.T) {
	repo := newTestRepo(t)
	invoices := NewInvoiceService(repo)
	ctx := context.Background()

	card := seedAccount(t, repo, core.Account{
		Name:         "credit card",
		IsCreditCard: true,
		ClosingDay:   25,
		DueDay:       5,
	})

	// inside the window closing June 25 (May 26 .. June 25)
	if _, err := repo.Queries().InsertTransaction(ctx, core.Transaction{
		UserID:      testUserID,
		AccountID:   card.ID,
		Description: "headphones",
		Amount:      core.Money{Cents: 12_000},
		Date:        dateUTC(2025, 6, 10),
		Type:        core.Expense,
	}); err != nil {
		t.Fatalf("InsertTransaction() error = %v", err)
	}
	// outside the window, belongs to the May statement
	if _, err := repo.Queries().InsertTransaction(ctx, core.Transaction{
		UserID:      testUserID,
		AccountID:   card.ID,
		Description: "old purchase",
		Amount:      core.Money{Cents: 5_000},
		Date:        dateUTC(2025, 5, 20),
		Type:        core.Expense,
	}); err != nil {
		t.Fatalf("InsertTransaction() error = %v", err)
	}

	invoice, err := invoices.InvoiceForMonth(ctx, testUserID, card.ID, 2025, time.June)
	if err != nil {
		t.Fatalf("InvoiceForMonth() error = %v", err)
	}

	if len(invoice.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(invoice.Transactions))
	}
	if invoice.Transactions[0].Description != "headphones" {
		t.Errorf("transaction = %q, want headphones", invoice.Transactions[0].Description)
	}
	if invoice.Total.Cents != 12_000 {
		t.Errorf("total = %d, want 12000", invoice.Total.Cents)
	}
	if invoice.Status != InvoiceOpen {
		t.Errorf("status = %q, want open", invoice.Status)
	}

	wantStart := time.Date(2025, time.May, 26, 0, 0, 0, 0, time.UTC)
	wantClose := time.Date(2025, time.June, 25, 23, 59, 59, 0, time.UTC)
	wantDue := time.Date(2025, time.July, 5, 0, 0, 0, 0, time.UTC)
	if !invoice.Period.Start.Equal(wantStart) || !invoice.Period.Close.Equal(wantClose) || !invoice.Period.Due.Equal(wantDue) {
		t.Errorf("period = %+v, want %v / %v / %v", invoice.Period, wantStart, wantClose, wantDue)
	}
}

func TestInvoiceService_RefundShrinksInvoice(t *testing.T) {
	repo := newTestRepo(t)
	invoices := NewInvoiceService(repo)
	ctx := context.Background()

	card := seedAccount(t, repo, core.Account{
		Name:         "credit card",
		IsCreditCard: true,
		ClosingDay:   25,
		DueDay:       5,
	})

	rows := []core.Transaction{
		{UserID: testUserID, AccountID: card.ID, Description: "jacket", Amount: core.Money{Cents: 20_000}, Date: dateUTC(2025, 6, 10), Type: core.Expense},
		{UserID: testUserID, AccountID: card.ID, Description: "jacket refund", Amount: core.Money{Cents: 20_000}, Date: dateUTC(2025, 6, 12), Type: core.Income},
	}
	for _, row := range rows {
		if _, err := repo.Queries().InsertTransaction(ctx, row); err != nil {
			t.Fatalf("InsertTransaction(%q) error = %v", row.Description, err)
		}
	}

	invoice, err := invoices.InvoiceForMonth(ctx, testUserID, card.ID, 2025, time.June)
	if err != nil {
		t.Fatalf("InvoiceForMonth() error = %v", err)
	}
	if invoice.Total.Cents != 0 {
		t.Errorf("total = %d, want 0", invoice.Total.Cents)
	}
	if invoice.Status != InvoicePaid {
		t.Errorf("status = %q, want paid", invoice.Status)
	}
}

func TestInvoiceService_NotCreditCard(t *testing.T) {
	repo := newTestRepo(t)
	invoices := NewInvoiceService(repo)

	checking := seedAccount(t, repo, core.Account{Name: "checking"})

	_, err := invoices.InvoiceForMonth(context.Background(), testUserID, checking.ID, 2025, time.June)
	if !errors.Is(err, core.ErrNotCreditCard) {
		t.Errorf("InvoiceForMonth() error = %v, want ErrNotCreditCard", err)
	}
}

func TestInvoiceService_CurrentOpenInvoice_RollsForward(t *testing.T) {
	repo := newTestRepo(t)
	invoices := NewInvoiceService(repo)
	ctx := context.Background()

	card := seedAccount(t, repo, core.Account{
		Name:         "credit card",
		IsCreditCard: true,
		ClosingDay:   25,
		DueDay:       5,
	})

	tests := []struct {
		name      string
		now       time.Time
		wantClose time.Time
	}{
		{
			name:      "before closing day shows current month",
			now:       time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC),
			wantClose: time.Date(2025, time.June, 25, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "on closing day rolls to next month",
			now:       time.Date(2025, time.June, 25, 9, 0, 0, 0, time.UTC),
			wantClose: time.Date(2025, time.July, 25, 23, 59, 59, 0, time.UTC),
		},
		{
			name:      "december rolls into january",
			now:       time.Date(2025, time.December, 28, 9, 0, 0, 0, time.UTC),
			wantClose: time.Date(2026, time.January, 25, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoice, err := invoices.CurrentOpenInvoice(ctx, testUserID, card.ID, tt.now)
			if err != nil {
				t.Fatalf("CurrentOpenInvoice() error = %v", err)
			}
			if !invoice.Period.Close.Equal(tt.wantClose) {
				t.Errorf("close = %v, want %v", invoice.Period.Close, tt.wantClose)
			}
		})
	}
}
