package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// LedgerService orchestrates transaction writes. Every mutation runs inside a
// single database transaction that moves the account's running balance by the
// same delta it records, so balances and rows never drift apart.
type LedgerService struct {
	repo   *storage.Repository
	events *events.Client
}

func NewLedgerService(repo *storage.Repository, eventsClient *events.Client) *LedgerService {
	return &LedgerService{
		repo:   repo,
		events: eventsClient,
	}
}

// CreateTransaction records a purchase, expanding it into installments when
// the plan asks for more than one. Returns the inserted rows in date order.
func (s *LedgerService) CreateTransaction(ctx context.Context, userID int64, plan core.InstallmentPlan) ([]core.Transaction, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	account, err := s.repo.Queries().GetAccount(ctx, userID, plan.AccountID)
	if err != nil {
		return nil, err
	}

	drafts := core.ExpandInstallments(plan, account)

	var inserted []core.Transaction
	err = s.repo.InTx(ctx, func(q *storage.Queries) error {
		var delta int64
		for _, draft := range drafts {
			t, err := q.InsertTransaction(ctx, draft)
			if err != nil {
				return err
			}
			inserted = append(inserted, t)
			delta += t.DeltaCents()
		}
		return q.ApplyBalanceDelta(ctx, userID, plan.AccountID, delta)
	})
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.publish(ctx, events.KindCreated, inserted[0].ID, userID)
	return inserted, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.repo.Queries().GetTransaction(ctx, userID, id)
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.repo.Queries().ListTransactions(ctx, userID)
}

func (s *LedgerService) ListTransactionsInRange(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	return s.repo.Queries().ListTransactionsInRange(ctx, userID, from, to)
}

// UpdateTransaction replaces a transaction's mutable fields. The old delta is
// reversed on the old account and the new delta applied on the new one, so
// moving a transaction between accounts keeps both balances correct.
func (s *LedgerService) UpdateTransaction(ctx context.Context, updated core.Transaction) (core.Transaction, error) {
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, err
	}

	old, err := s.repo.Queries().GetTransaction(ctx, updated.UserID, updated.ID)
	if err != nil {
		return core.Transaction{}, err
	}

	if updated.AccountID != old.AccountID {
		if _, err := s.repo.Queries().GetAccount(ctx, updated.UserID, updated.AccountID); err != nil {
			return core.Transaction{}, err
		}
	}

	err = s.repo.InTx(ctx, func(q *storage.Queries) error {
		if err := q.ApplyBalanceDelta(ctx, old.UserID, old.AccountID, -old.DeltaCents()); err != nil {
			return err
		}
		if err := q.UpdateTransaction(ctx, updated); err != nil {
			return err
		}
		return q.ApplyBalanceDelta(ctx, updated.UserID, updated.AccountID, updated.DeltaCents())
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	updated.InstallmentID = old.InstallmentID
	updated.CreatedAt = old.CreatedAt

	s.publish(ctx, events.KindUpdated, updated.ID, updated.UserID)
	return updated, nil
}

// DeleteTransaction removes a transaction and reverses its balance effect.
// With deleteGroup set, every sibling of the installment group goes with it.
func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id int64, deleteGroup bool) error {
	t, err := s.repo.Queries().GetTransaction(ctx, userID, id)
	if err != nil {
		return err
	}

	victims := []core.Transaction{t}
	if deleteGroup && t.InstallmentID != "" {
		victims, err = s.repo.Queries().ListInstallmentGroup(ctx, userID, t.InstallmentID)
		if err != nil {
			return err
		}
	}

	err = s.repo.InTx(ctx, func(q *storage.Queries) error {
		for _, v := range victims {
			if err := q.DeleteTransaction(ctx, userID, v.ID); err != nil {
				return err
			}
			if err := q.ApplyBalanceDelta(ctx, userID, v.AccountID, -v.DeltaCents()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publish(ctx, events.KindDeleted, id, userID)
	return nil
}

// Transfer moves money between two accounts of the same user as a paid
// expense on the source and a paid income on the destination, atomically.
func (s *LedgerService) Transfer(ctx context.Context, userID, fromAccountID, toAccountID int64, amount core.Money, date time.Time, description string) ([]core.Transaction, error) {
	if fromAccountID == toAccountID {
		return nil, core.ErrSameAccount
	}
	if err := amount.Validate(); err != nil {
		return nil, err
	}
	if description == "" {
		description = "transfer"
	}

	if _, err := s.repo.Queries().GetAccount(ctx, userID, fromAccountID); err != nil {
		return nil, err
	}
	if _, err := s.repo.Queries().GetAccount(ctx, userID, toAccountID); err != nil {
		return nil, err
	}

	out := core.Transaction{
		UserID:      userID,
		AccountID:   fromAccountID,
		Description: description,
		Amount:      amount,
		Date:        date.UTC(),
		Type:        core.Expense,
		Paid:        true,
	}
	in := out
	in.AccountID = toAccountID
	in.Type = core.Income

	var inserted []core.Transaction
	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		for _, draft := range []core.Transaction{out, in} {
			t, err := q.InsertTransaction(ctx, draft)
			if err != nil {
				return err
			}
			inserted = append(inserted, t)
			if err := q.ApplyBalanceDelta(ctx, userID, t.AccountID, t.DeltaCents()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}

	s.publish(ctx, events.KindCreated, inserted[0].ID, userID)
	return inserted, nil
}

// AdjustBalance reconciles an account against a real-world balance by
// synthesizing a paid, uncategorized transaction for the difference. A target
// equal to the current balance is a no-op and returns no transaction.
func (s *LedgerService) AdjustBalance(ctx context.Context, userID, accountID, targetCents int64) (*core.Transaction, error) {
	account, err := s.repo.Queries().GetAccount(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	diff := targetCents - account.CurrentBalance.Cents
	if diff == 0 {
		return nil, nil
	}

	txType := core.Income
	if diff < 0 {
		txType = core.Expense
	}
	draft := core.Transaction{
		UserID:      userID,
		AccountID:   accountID,
		Description: "manual balance adjustment",
		Amount:      core.Money{Cents: diff}.Abs(),
		Date:        time.Now().UTC(),
		Type:        txType,
		Paid:        true,
	}

	var inserted core.Transaction
	err = s.repo.InTx(ctx, func(q *storage.Queries) error {
		t, err := q.InsertTransaction(ctx, draft)
		if err != nil {
			return err
		}
		inserted = t
		return q.ApplyBalanceDelta(ctx, userID, accountID, t.DeltaCents())
	})
	if err != nil {
		return nil, fmt.Errorf("adjust balance: %w", err)
	}

	s.publish(ctx, events.KindCreated, inserted.ID, userID)
	return &inserted, nil
}

// publish sends a best-effort ledger notification after commit. Failures are
// logged, never surfaced: the database write already succeeded.
func (s *LedgerService) publish(ctx context.Context, kind string, transactionID, userID int64) {
	if s.events == nil {
		return
	}
	event := events.NewTransactionEvent(kind, transactionID, userID)
	if err := s.events.PublishTransactionEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"kind", kind, log.FieldTransactionID, transactionID, log.FieldError, err)
	}
}
