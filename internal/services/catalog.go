package services

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// CatalogService owns the reference data around the ledger: accounts,
// categories, budgets, recurring rule definitions and fund holdings.
type CatalogService struct {
	repo *storage.Repository
}

func NewCatalogService(repo *storage.Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	return s.repo.Queries().CreateAccount(ctx, a)
}

func (s *CatalogService) GetAccount(ctx context.Context, userID, id int64) (core.Account, error) {
	return s.repo.Queries().GetAccount(ctx, userID, id)
}

func (s *CatalogService) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	return s.repo.Queries().ListAccounts(ctx, userID)
}

// UpdateAccount changes metadata and billing configuration. Balances are not
// writable here; AdjustBalance on the ledger is the reconciliation path.
func (s *CatalogService) UpdateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.repo.Queries().UpdateAccount(ctx, a); err != nil {
		return core.Account{}, err
	}
	return s.repo.Queries().GetAccount(ctx, a.UserID, a.ID)
}

// DeleteAccount removes the account and every transaction on it in one
// database transaction.
func (s *CatalogService) DeleteAccount(ctx context.Context, userID, id int64) error {
	if _, err := s.repo.Queries().GetAccount(ctx, userID, id); err != nil {
		return err
	}
	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		if err := q.DeleteAccountTransactions(ctx, userID, id); err != nil {
			return err
		}
		return q.DeleteAccount(ctx, userID, id)
	})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.repo.Queries().CreateCategory(ctx, c)
}

func (s *CatalogService) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.repo.Queries().ListCategories(ctx, userID)
}

// DeleteCategory refuses to delete a category that transactions still point
// at; the caller must recategorize or delete those first.
func (s *CatalogService) DeleteCategory(ctx context.Context, userID, id int64) error {
	if _, err := s.repo.Queries().GetCategory(ctx, userID, id); err != nil {
		return err
	}
	referenced, err := s.repo.Queries().CategoryReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return core.ErrCategoryInUse
	}
	return s.repo.Queries().DeleteCategory(ctx, userID, id)
}

// SetBudget creates or replaces the user's monthly ceiling for a category.
func (s *CatalogService) SetBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if _, err := s.repo.Queries().GetCategory(ctx, b.UserID, b.CategoryID); err != nil {
		return core.Budget{}, err
	}
	return s.repo.Queries().UpsertBudget(ctx, b)
}

func (s *CatalogService) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	return s.repo.Queries().ListBudgets(ctx, userID)
}

func (s *CatalogService) DeleteBudget(ctx context.Context, userID, id int64) error {
	return s.repo.Queries().DeleteBudget(ctx, userID, id)
}

func (s *CatalogService) CreateRecurringRule(ctx context.Context, r core.RecurringRule) (core.RecurringRule, error) {
	if err := r.Validate(); err != nil {
		return core.RecurringRule{}, err
	}
	if _, err := s.repo.Queries().GetAccount(ctx, r.UserID, r.AccountID); err != nil {
		return core.RecurringRule{}, err
	}
	return s.repo.Queries().CreateRecurringRule(ctx, r)
}

func (s *CatalogService) ListRecurringRules(ctx context.Context, userID int64) ([]core.RecurringRule, error) {
	return s.repo.Queries().ListRecurringRules(ctx, userID)
}

func (s *CatalogService) SetRecurringRuleActive(ctx context.Context, userID, id int64, active bool) error {
	return s.repo.Queries().SetRecurringRuleActive(ctx, userID, id, active)
}

func (s *CatalogService) DeleteRecurringRule(ctx context.Context, userID, id int64) error {
	return s.repo.Queries().DeleteRecurringRule(ctx, userID, id)
}

// UpsertHolding creates or replaces the user's position in a ticker. Tickers
// are normalized to uppercase so "hglg11" and "HGLG11" are the same position.
func (s *CatalogService) UpsertHolding(ctx context.Context, h core.Holding) (core.Holding, error) {
	h.Ticker = strings.ToUpper(strings.TrimSpace(h.Ticker))
	if err := h.Validate(); err != nil {
		return core.Holding{}, err
	}
	return s.repo.Queries().UpsertHolding(ctx, h)
}

func (s *CatalogService) ListHoldings(ctx context.Context, userID int64) ([]core.Holding, error) {
	return s.repo.Queries().ListHoldings(ctx, userID)
}

func (s *CatalogService) DeleteHolding(ctx context.Context, userID, id int64) error {
	return s.repo.Queries().DeleteHolding(ctx, userID, id)
}
