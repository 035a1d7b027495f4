package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"portfolio/internal/core"

	"github.com/shopspring/decimal"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "portfolio.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func addUser(t *testing.T, repo *SQLiteRepository, username string) int64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), core.User{
		FirstName:    "Anna",
		LastName:     "Muster",
		Username:     username,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return id
}

func addEntry(t *testing.T, repo *SQLiteRepository, userID int64, name, category string, amount int64, year int) {
	t.Helper()
	_, err := repo.CreateEntry(context.Background(), core.Entry{
		UserID:   userID,
		Name:     name,
		Category: category,
		Amount:   decimal.NewFromInt(amount),
		Year:     year,
	})
	if err != nil {
		t.Fatalf("create entry %s/%s: %v", name, category, err)
	}
}

func TestDuplicateUsernameLeavesStoreUnchanged(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	addUser(t, repo, "anna")

	before, err := repo.UserCount(ctx)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}

	_, err = repo.CreateUser(ctx, core.User{Username: "anna", PasswordHash: "x"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	after, err := repo.UserCount(ctx)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if before != after {
		t.Fatalf("user count changed on duplicate insert: %d -> %d", before, after)
	}
}

func TestUserByUsernameNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.UserByUsername(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeriesByCategorySumsPerYear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	anna := addUser(t, repo, "anna")
	bert := addUser(t, repo, "bert")

	addEntry(t, repo, anna, "Chair", "Furniture", 10, 2021)
	addEntry(t, repo, anna, "Table", "Furniture", 5, 2021)
	addEntry(t, repo, anna, "Chair", "Furniture", 20, 2022)
	addEntry(t, repo, anna, "Lamp", "Lighting", 99, 2021)
	// Another user's entries must not leak into anna's series.
	addEntry(t, repo, bert, "Chair", "Furniture", 1000, 2021)

	got, err := repo.SeriesByCategory(ctx, anna, "Furniture")
	if err != nil {
		t.Fatalf("series by category: %v", err)
	}

	want := []core.SeriesPoint{{Year: 2021, Amount: 15}, {Year: 2022, Amount: 20}}
	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSeriesByNamePreservesRowsAndOrder(t *testing.T) {
	repo := newTestRepo(t)
	anna := addUser(t, repo, "anna")

	// Two entries in the same year stay separate points, in insertion order.
	addEntry(t, repo, anna, "Chair", "Furniture", 10, 2022)
	addEntry(t, repo, anna, "Chair", "Furniture", 7, 2021)
	addEntry(t, repo, anna, "Chair", "Furniture", 3, 2022)
	addEntry(t, repo, anna, "Table", "Furniture", 50, 2022)

	got, err := repo.SeriesByName(context.Background(), anna, "Chair")
	if err != nil {
		t.Fatalf("series by name: %v", err)
	}

	want := []core.SeriesPoint{{Year: 2022, Amount: 10}, {Year: 2021, Amount: 7}, {Year: 2022, Amount: 3}}
	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSeriesEmptyWhenNothingMatches(t *testing.T) {
	repo := newTestRepo(t)
	anna := addUser(t, repo, "anna")

	got, err := repo.SeriesByCategory(context.Background(), anna, "Furniture")
	if err != nil {
		t.Fatalf("series by category: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty series, got %v", got)
	}
}

func TestEntrySyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	anna := addUser(t, repo, "anna")

	addEntry(t, repo, anna, "Chair", "Furniture", 10, 2021)
	addEntry(t, repo, anna, "Table", "Furniture", 5, 2021)

	pending, err := repo.PendingSyncEntries(ctx, 10)
	if err != nil {
		t.Fatalf("pending sync entries: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending entries, got %d", len(pending))
	}

	if err := repo.MarkEntrySynced(ctx, pending[0].ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if err := repo.MarkEntrySyncError(ctx, pending[1].ID); err != nil {
		t.Fatalf("mark sync error: %v", err)
	}

	pending, err = repo.PendingSyncEntries(ctx, 10)
	if err != nil {
		t.Fatalf("pending sync entries: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending entries, got %d", len(pending))
	}

	e, err := repo.EntryByID(ctx, 1)
	if err != nil {
		t.Fatalf("entry by id: %v", err)
	}
	if e.Name != "Chair" || !e.Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected entry: %+v", e)
	}
}
