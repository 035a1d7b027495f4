// Package worker exports locally stored product entries to the
// configured sheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"portfolio/internal/amqp"
	"portfolio/internal/sheets"
	"portfolio/internal/storage"
)

// SyncWorker moves product entries from SQLite to the export sheet.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	sheet     sheets.EntryWriter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, sheet sheets.EntryWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		sheet:     sheet,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single entry sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	entry, err := w.storage.EntryByID(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if _, err := w.sheet.Append(ctx, entry); err != nil {
		if markErr := w.storage.MarkEntrySyncError(ctx, msg.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to record sync error", "id", msg.ID, "error", markErr)
		}
		return fmt.Errorf("append entry to sheet: %w", err)
	}

	if err := w.storage.MarkEntrySynced(ctx, msg.ID); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}

	return nil
}

// ProcessPendingEntries is the periodic catch-up pass for entries whose
// messages were lost or that predate the queue.
func (w *SyncWorker) ProcessPendingEntries(ctx context.Context) error {
	pending, err := w.storage.PendingSyncEntries(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending entries: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := amqp.NewEntrySyncMessage(p.ID, p.Version)
		if err := w.HandleSyncMessage(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Pending entry sync failed", "id", p.ID, "error", err)
			// Keep going; the entry stays pending or is marked errored.
		}
	}

	return nil
}
