package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const testUserID = int64(1)

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "fintrack.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedAccount(t *testing.T, repo *storage.Repository, a core.Account) core.Account {
	t.Helper()
	if a.UserID == 0 {
		a.UserID = testUserID
	}
	if a.Name == "" {
		a.Name = "test account"
	}
	if a.Type == "" {
		a.Type = core.Checking
	}
	created, err := repo.Queries().CreateAccount(context.Background(), a)
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return created
}

func seedCategory(t *testing.T, repo *storage.Repository, name string, txType core.TransactionType) core.Category {
	t.Helper()
	created, err := repo.Queries().CreateCategory(context.Background(), core.Category{
		UserID: testUserID,
		Name:   name,
		Type:   txType,
	})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	return created
}

func accountBalance(t *testing.T, repo *storage.Repository, id int64) int64 {
	t.Helper()
	a, err := repo.Queries().GetAccount(context.Background(), testUserID, id)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	return a.CurrentBalance.Cents
}

func dateUTC(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}
