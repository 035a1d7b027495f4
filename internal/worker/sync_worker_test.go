package worker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"portfolio/internal/amqp"
	"portfolio/internal/core"
	"portfolio/internal/storage"

	"github.com/shopspring/decimal"
)

type fakeSheet struct {
	appended []core.Entry
	fail     bool
}

func (f *fakeSheet) Append(_ context.Context, e core.Entry) (string, error) {
	if f.fail {
		return "", errors.New("sheet unavailable")
	}
	f.appended = append(f.appended, e)
	return fmt.Sprintf("Portfolio!A%d", len(f.appended)), nil
}

func setup(t *testing.T) (*storage.SQLiteRepository, int64) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	userID, err := repo.CreateUser(context.Background(), core.User{Username: "anna", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return repo, userID
}

func TestHandleSyncMessageAppendsAndMarks(t *testing.T) {
	repo, userID := setup(t)
	ctx := context.Background()

	entryID, err := repo.CreateEntry(ctx, core.Entry{
		UserID: userID, Name: "Chair", Category: "Furniture",
		Amount: decimal.NewFromInt(10), Year: 2021,
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	sheet := &fakeSheet{}
	w := NewSyncWorker(repo, sheet, 10)

	if err := w.HandleSyncMessage(ctx, amqp.NewEntrySyncMessage(entryID, 1)); err != nil {
		t.Fatalf("handle sync message: %v", err)
	}

	if len(sheet.appended) != 1 || sheet.appended[0].Name != "Chair" {
		t.Fatalf("unexpected appended entries: %+v", sheet.appended)
	}

	pending, err := repo.PendingSyncEntries(ctx, 10)
	if err != nil {
		t.Fatalf("pending entries: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("entry should no longer be pending, got %v", pending)
	}
}

func TestHandleSyncMessageSheetFailure(t *testing.T) {
	repo, userID := setup(t)
	ctx := context.Background()

	entryID, err := repo.CreateEntry(ctx, core.Entry{
		UserID: userID, Name: "Chair", Category: "Furniture",
		Amount: decimal.NewFromInt(10), Year: 2021,
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	w := NewSyncWorker(repo, &fakeSheet{fail: true}, 10)
	if err := w.HandleSyncMessage(ctx, amqp.NewEntrySyncMessage(entryID, 1)); err == nil {
		t.Fatal("expected error when sheet append fails")
	}

	// Marked as errored, no longer pending.
	pending, err := repo.PendingSyncEntries(ctx, 10)
	if err != nil {
		t.Fatalf("pending entries: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("failed entry should be marked errored, got %v", pending)
	}
}

func TestProcessPendingEntries(t *testing.T) {
	repo, userID := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.CreateEntry(ctx, core.Entry{
			UserID: userID, Name: "Chair", Category: "Furniture",
			Amount: decimal.NewFromInt(int64(i + 1)), Year: 2020 + i,
		})
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}

	sheet := &fakeSheet{}
	w := NewSyncWorker(repo, sheet, 10)

	if err := w.ProcessPendingEntries(ctx); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if len(sheet.appended) != 3 {
		t.Fatalf("expected 3 appended entries, got %d", len(sheet.appended))
	}

	// Second pass is a no-op.
	if err := w.ProcessPendingEntries(ctx); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(sheet.appended) != 3 {
		t.Fatalf("second pass re-exported entries: %d", len(sheet.appended))
	}
}
