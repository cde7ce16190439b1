package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tempo/internal/amqp"
	"tempo/internal/sheets"
	"tempo/internal/storage"

	"golang.org/x/sync/errgroup"
)

// EntrySource is the slice of the repository the worker reads and marks
// entries through.
type EntrySource interface {
	GetSyncEntry(ctx context.Context, id int64) (storage.SyncEntry, error)
	GetPendingSyncEntries(ctx context.Context, limit int) ([]storage.PendingSyncEntry, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncConsumer delivers queued sync messages to a handler until the context
// is cancelled.
type SyncConsumer interface {
	ConsumeEntrySync(ctx context.Context, handler func(*amqp.EntrySyncMessage) error) error
}

// SyncWorker mirrors timesheet entries from SQLite to the sheet.
type SyncWorker struct {
	storage   EntrySource
	appender  sheets.EntryAppender
	batchSize int
}

func NewSyncWorker(storage EntrySource, appender sheets.EntryAppender, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		appender:  appender,
		batchSize: batchSize,
	}
}

// Run drives the worker: a startup sweep for rows missed while the worker was
// down, the AMQP consume loop, and a periodic pending sweep as backup for lost
// messages. Blocks until the context is cancelled.
func (w *SyncWorker) Run(ctx context.Context, consumer SyncConsumer, sweepInterval time.Duration) error {
	if err := w.StartupSyncCheck(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup sync check failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.ConsumeEntrySync(ctx, func(msg *amqp.EntrySyncMessage) error {
			return w.HandleSyncMessage(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPendingEntries(ctx); err != nil {
					slog.ErrorContext(ctx, "Pending sweep failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

// HandleSyncMessage mirrors a single entry named by an AMQP message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	entry, err := w.storage.GetSyncEntry(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if err := w.syncEntryToSheet(ctx, entry); err != nil {
		return fmt.Errorf("sync entry to sheet: %w", err)
	}

	return nil
}

// ProcessPendingEntries mirrors any entries still marked pending. This is the
// backup path for lost AMQP messages.
func (w *SyncWorker) ProcessPendingEntries(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncEntries(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	for _, p := range pending {
		entry, err := w.storage.GetSyncEntry(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get entry", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}

		if err := w.syncEntryToSheet(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck sweeps a larger pending batch once, to recover from missed
// messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncEntries(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending entries for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending entries on startup, processing...",
		"count", len(pending))

	synced := 0
	failed := 0
	for _, p := range pending {
		entry, err := w.storage.GetSyncEntry(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get entry for startup sync",
				"id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			failed++
			continue
		}

		if err := w.syncEntryToSheet(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry during startup",
				"id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}

func (w *SyncWorker) syncEntryToSheet(ctx context.Context, entry storage.SyncEntry) error {
	ref, err := w.appender.AppendEntry(ctx, sheets.Entry{
		Date:        entry.Date,
		Project:     entry.Project,
		Task:        entry.Task,
		Activity:    entry.Activity,
		Hours:       entry.Hours,
		Overtime:    entry.Overtime,
		Description: entry.Description,
	})
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, entry.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", entry.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, entry.ID); err != nil {
		// The append succeeded, so don't fail the message
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", entry.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced entry",
		"id", entry.ID,
		"sheet_ref", ref,
		"project", entry.Project,
		"date", entry.Date.String())

	return nil
}
