package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// RecurringService materializes recurring rules into ledger rows and computes
// forward cash-flow projections.
type RecurringService struct {
	repo *storage.Repository
}

func NewRecurringService(repo *storage.Repository) *RecurringService {
	return &RecurringService{repo: repo}
}

// GenerateResult reports one materialization run.
type GenerateResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Generate materializes every active rule of the user into the given month.
// The run is idempotent: a rule whose matching transaction already exists in
// the month is skipped, so repeated or overlapping runs never duplicate rows.
// Generated transactions are unpaid and move the account balance immediately.
func (s *RecurringService) Generate(ctx context.Context, userID int64, year int, month time.Month) (GenerateResult, error) {
	rules, err := s.repo.Queries().ListActiveRecurringRules(ctx, userID)
	if err != nil {
		return GenerateResult{}, err
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var result GenerateResult
	for _, rule := range rules {
		if rule.AccountID == 0 {
			slog.WarnContext(ctx, "Skipping recurring rule without account",
				log.FieldRuleID, rule.ID, log.FieldUserID, userID)
			result.Skipped++
			continue
		}

		draft := core.Transaction{
			UserID:      userID,
			AccountID:   rule.AccountID,
			CategoryID:  rule.CategoryID,
			Description: rule.Description,
			Amount:      rule.Amount,
			Date:        core.MaterializationDate(rule.DayOfMonth, year, month),
			Type:        rule.Type,
			Paid:        false,
		}

		// The duplicate check shares the insert's transaction so overlapping
		// runs (HTTP generate racing the worker tick) cannot both pass it.
		created := false
		err = s.repo.InTx(ctx, func(q *storage.Queries) error {
			exists, err := q.MaterializedExists(ctx, storage.MaterializedKey{
				UserID:      userID,
				AccountID:   rule.AccountID,
				CategoryID:  rule.CategoryID,
				Description: rule.Description,
				AmountCents: rule.Amount.Cents,
				Type:        rule.Type,
				MonthStart:  monthStart,
				MonthEnd:    monthEnd,
			})
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
			t, err := q.InsertTransaction(ctx, draft)
			if err != nil {
				return err
			}
			if err := q.ApplyBalanceDelta(ctx, userID, rule.AccountID, t.DeltaCents()); err != nil {
				return err
			}
			created = true
			return nil
		})
		if err != nil {
			return result, fmt.Errorf("materialize rule %d: %w", rule.ID, err)
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}

// Projection estimates future balances from current cash balances and active
// rules. Credit-card balances are debt, not cash, and stay out of the base.
func (s *RecurringService) Projection(ctx context.Context, userID int64, months int, now time.Time) (core.Projection, error) {
	startBalance, err := s.repo.Queries().SumCashBalances(ctx, userID)
	if err != nil {
		return core.Projection{}, err
	}

	rules, err := s.repo.Queries().ListActiveRecurringRules(ctx, userID)
	if err != nil {
		return core.Projection{}, err
	}

	now = now.UTC()
	return core.Project(core.Money{Cents: startBalance}, rules, months, now.Year(), now.Month()), nil
}
