package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const (
	InvoiceOpen = "open"
	InvoicePaid = "paid"
)

// Invoice is the read model for one credit-card statement: the billing window,
// the transactions inside it and their signed total.
type Invoice struct {
	AccountID    int64
	Period       core.StatementPeriod
	Transactions []core.Transaction
	Total        core.Money
	Status       string
}

// InvoiceService computes credit-card statement summaries.
type InvoiceService struct {
	repo *storage.Repository
}

func NewInvoiceService(repo *storage.Repository) *InvoiceService {
	return &InvoiceService{repo: repo}
}

// InvoiceForMonth summarizes the statement whose close falls in the given
// month. Only credit-card accounts have statements.
func (s *InvoiceService) InvoiceForMonth(ctx context.Context, userID, accountID int64, year int, month time.Month) (Invoice, error) {
	account, err := s.repo.Queries().GetAccount(ctx, userID, accountID)
	if err != nil {
		return Invoice{}, err
	}
	if !account.IsCreditCard {
		return Invoice{}, core.ErrNotCreditCard
	}

	period := core.StatementForMonth(account.ClosingDay, account.DueDay, year, month)
	return s.build(ctx, userID, accountID, period)
}

// CurrentOpenInvoice summarizes the statement that is open right now, rolling
// forward once today reaches the closing day.
func (s *InvoiceService) CurrentOpenInvoice(ctx context.Context, userID, accountID int64, now time.Time) (Invoice, error) {
	account, err := s.repo.Queries().GetAccount(ctx, userID, accountID)
	if err != nil {
		return Invoice{}, err
	}
	if !account.IsCreditCard {
		return Invoice{}, core.ErrNotCreditCard
	}

	year, month := core.OpenStatementMonth(account.ClosingDay, now)
	period := core.StatementForMonth(account.ClosingDay, account.DueDay, year, month)
	return s.build(ctx, userID, accountID, period)
}

func (s *InvoiceService) build(ctx context.Context, userID, accountID int64, period core.StatementPeriod) (Invoice, error) {
	txs, err := s.repo.Queries().ListStatementTransactions(ctx, userID, accountID, period.Start, period.Close)
	if err != nil {
		return Invoice{}, fmt.Errorf("invoice transactions: %w", err)
	}

	// Expenses grow the invoice, incomes (refunds, payments) shrink it.
	var total int64
	for _, t := range txs {
		total -= t.DeltaCents()
	}

	status := InvoicePaid
	if total > 0 {
		status = InvoiceOpen
	}

	return Invoice{
		AccountID:    accountID,
		Period:       period,
		Transactions: txs,
		Total:        core.Money{Cents: total},
		Status:       status,
	}, nil
}
