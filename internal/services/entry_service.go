package services

import (
	"context"
	"fmt"
	"log/slog"

	"tempo/internal/core"
)

// EntryStore is the slice of the repository the service mutates through.
type EntryStore interface {
	CreateEntry(ctx context.Context, e core.Entry) (int64, error)
	UpdateEntry(ctx context.Context, e core.Entry) (int64, error)
	DeleteEntry(ctx context.Context, userID, id int64) error
	Close() error
}

// SyncPublisher publishes mirror messages for the background worker.
type SyncPublisher interface {
	PublishEntrySync(ctx context.Context, id, version int64) error
	PublishEntryDelete(ctx context.Context, id int64) error
	Close() error
}

// EntryService orchestrates entry mutations across SQLite and AMQP. The
// SQLite write decides the outcome; the publish is best effort and a broker
// outage never fails the request.
type EntryService struct {
	storage   EntryStore
	publisher SyncPublisher
}

func NewEntryService(storage EntryStore, publisher SyncPublisher) *EntryService {
	return &EntryService{
		storage:   storage,
		publisher: publisher,
	}
}

// CreateEntry saves an entry locally and queues it for the sheet mirror.
func (s *EntryService) CreateEntry(ctx context.Context, e core.Entry) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateEntry(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save entry: %w", err)
	}

	// New entries are version 1
	if err := s.publishSync(ctx, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}

	return id, nil
}

// UpdateEntry replaces an entry locally and queues the new version.
func (s *EntryService) UpdateEntry(ctx context.Context, e core.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	version, err := s.storage.UpdateEntry(ctx, e)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}

	if err := s.publishSync(ctx, e.ID, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", e.ID, "version", version, "error", err)
	}

	return nil
}

// DeleteEntry removes an entry locally and publishes a delete message.
func (s *EntryService) DeleteEntry(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteEntry(ctx, userID, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	if err := s.publishDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
	}

	return nil
}

func (s *EntryService) publishSync(ctx context.Context, id, version int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishEntrySync(ctx, id, version)
}

func (s *EntryService) publishDelete(ctx context.Context, id int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.publisher.PublishEntryDelete(ctx, id)
}

// Close closes both storage and AMQP connections.
func (s *EntryService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close entry service: %v", errs)
	}

	return nil
}
