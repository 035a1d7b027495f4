// Package services orchestrates the portfolio use cases on top of
// storage, the forecast engine and the export queue.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"portfolio/internal/amqp"
	"portfolio/internal/core"
	"portfolio/internal/storage"
)

// EntryService persists product entries and queues them for export.
type EntryService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewEntryService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *EntryService {
	return &EntryService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Create validates and stores an entry, then publishes an export message.
// A publish failure is logged but does not fail the request: the entry is
// saved and the worker's catch-up pass picks it up later.
func (s *EntryService) Create(ctx context.Context, e core.Entry) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateEntry(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save entry: %w", err)
	}

	if s.amqpClient == nil {
		return id, nil
	}
	if err := s.amqpClient.PublishEntrySync(ctx, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entry sync message",
			"id", id, "error", err)
	}

	return id, nil
}

func (s *EntryService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close entry service: %v", errs)
	}
	return nil
}
