package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wrapped/internal/amqp"
	"wrapped/internal/backend"
	"wrapped/internal/core"
	"wrapped/internal/fetcher"
	"wrapped/internal/log"
	"wrapped/internal/storage"
)

// Archive stores fetched snapshots.
type Archive interface {
	SaveSnapshot(ctx context.Context, s storage.Snapshot) (int64, error)
	CountSnapshots(ctx context.Context, queryKey string) (int, error)
	PruneSnapshots(ctx context.Context, queryKey string, keep int) (int64, error)
}

// RefreshWorker re-fetches reports from the analytics backend and archives them
type RefreshWorker struct {
	source  backend.Source
	archive Archive
	keep    int
	logger  *log.Logger
	now     func() time.Time
}

func NewRefreshWorker(source backend.Source, archive Archive, keep int, logger *log.Logger) *RefreshWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &RefreshWorker{
		source:  source,
		archive: archive,
		keep:    keep,
		logger:  logger.WithComponent(log.ComponentWorker),
		now:     time.Now,
	}
}

// Refresh runs one fetch session for q and archives whatever it produced.
// A report without a forecast is still archived.
func (w *RefreshWorker) Refresh(ctx context.Context, q core.Query) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, fmt.Errorf("refresh query: %w", err)
	}

	session := fetcher.NewSourceSession(w.source, q, w.logger)
	loadErr := session.Load(ctx)

	summary, prediction := session.Snapshot()
	if summary == nil {
		if loadErr == nil {
			loadErr = errors.New("no summary received")
		}
		return 0, fmt.Errorf("load report: %w", loadErr)
	}
	if loadErr != nil {
		w.logger.WarnContext(ctx, "Archiving report without forecast",
			log.FieldQueryKey, q.Key(),
			log.FieldError, loadErr.Error())
	}

	id, err := w.archive.SaveSnapshot(ctx, storage.Snapshot{
		QueryKey:    q.Key(),
		ClientID:    summary.ClientID,
		Summary:     *summary,
		Predictions: prediction,
		FetchedAt:   w.now(),
	})
	if err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}

	w.logger.InfoContext(ctx, "Archived snapshot",
		log.FieldSnapshotID, id,
		log.FieldQueryKey, q.Key(),
		log.FieldClientID, summary.ClientID,
		log.FieldState, session.State().String())

	if w.keep > 0 {
		w.prune(ctx, q.Key())
	}

	return id, nil
}

// prune trims the archive of queryKey down to the newest w.keep snapshots,
// skipping the delete while the archive is within the limit.
func (w *RefreshWorker) prune(ctx context.Context, queryKey string) {
	n, err := w.archive.CountSnapshots(ctx, queryKey)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to count snapshots",
			log.FieldQueryKey, queryKey,
			log.FieldError, err.Error())
		return
	}
	if n <= w.keep {
		return
	}
	pruned, err := w.archive.PruneSnapshots(ctx, queryKey, w.keep)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to prune snapshots",
			log.FieldQueryKey, queryKey,
			log.FieldError, err.Error())
		return
	}
	w.logger.DebugContext(ctx, "Pruned snapshots", log.FieldQueryKey, queryKey, "count", pruned)
}

// HandleRefreshMessage processes a single refresh request from AMQP
func (w *RefreshWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.RefreshRequestMessage) error {
	w.logger.InfoContext(ctx, "Processing refresh request",
		log.FieldQueryKey, msg.Query().Key(),
		"requested_at", msg.RequestedAt)

	_, err := w.Refresh(ctx, msg.Query())
	return err
}

// Run refreshes q immediately and then on every tick until ctx is done.
// Failed refreshes are logged and retried on the next tick.
func (w *RefreshWorker) Run(ctx context.Context, q core.Query, interval time.Duration) {
	w.refreshLogged(ctx, q)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Refresh loop stopped", "reason", ctx.Err())
			return
		case <-ticker.C:
			w.refreshLogged(ctx, q)
		}
	}
}

func (w *RefreshWorker) refreshLogged(ctx context.Context, q core.Query) {
	if _, err := w.Refresh(ctx, q); err != nil && ctx.Err() == nil {
		w.logger.ErrorContext(ctx, "Scheduled refresh failed",
			log.FieldOperation, log.OpRefresh,
			log.FieldQueryKey, q.Key(),
			log.FieldError, err.Error())
	}
}
