package http

import (
	"context"
	"errors"

	"wrapped/internal/core"
	"wrapped/internal/fetcher"
	"wrapped/internal/log"
	"wrapped/internal/storage"
	"wrapped/internal/view"
)

// session returns the loaded session for q, mounting and loading one if
// none is cached. Concurrent mounts of the same query share one load.
func (s *Server) session(ctx context.Context, q core.Query) (*fetcher.Session, error) {
	key := q.Key()
	if sess, ok := s.sessions.Get(key); ok {
		return sess, nil
	}

	v, err, shared := s.loads.Do(key, func() (any, error) {
		if sess, ok := s.sessions.Get(key); ok {
			return sess, nil
		}

		sess := fetcher.NewSourceSession(s.source, q, s.logger)
		err := sess.Load(s.baseCtx)
		if sess.State() != fetcher.StateLoading {
			s.sessions.Set(key, sess)
			s.archiveSession(sess)
		}
		return sess, err
	})
	if shared {
		s.logger.DebugContext(ctx, "Joined in-flight session load", log.FieldQueryKey, key)
	}

	sess, _ := v.(*fetcher.Session)
	return sess, err
}

// model builds the view model for q. Without a live summary it falls back
// to the latest archived snapshot, and without one of those it stays in the
// loading state.
func (s *Server) model(ctx context.Context, q core.Query) view.Model {
	sess, err := s.session(ctx, q)
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Session load incomplete",
			log.FieldQueryKey, q.Key(),
			log.FieldError, err.Error())
	}

	if sess != nil {
		summary, prediction := sess.Snapshot()
		if summary != nil {
			return view.Build(summary, prediction)
		}
	}

	if s.archive == nil {
		return view.Build(nil, nil)
	}

	snap, err := s.archive.LatestSnapshot(ctx, q.Key())
	if err != nil {
		if !errors.Is(err, storage.ErrNoSnapshot) {
			s.structured.LogError(ctx, "Failed to read archived snapshot", err, log.OpArchive, nil)
		}
		return view.Build(nil, nil)
	}

	log.FromContext(ctx).InfoContext(ctx, "Serving archived snapshot",
		log.FieldQueryKey, q.Key(),
		log.FieldSnapshotID, snap.ID)
	return view.Build(&snap.Summary, snap.Predictions).MarkStale(snap.FetchedAt)
}

func (s *Server) archiveSession(sess *fetcher.Session) {
	if s.archive == nil {
		return
	}
	summary, prediction := sess.Snapshot()
	if summary == nil {
		return
	}

	q := sess.Query()
	id, err := s.archive.SaveSnapshot(s.baseCtx, storage.Snapshot{
		QueryKey:    q.Key(),
		ClientID:    summary.ClientID,
		Summary:     *summary,
		Predictions: prediction,
	})
	if err != nil {
		s.structured.LogError(s.baseCtx, "Failed to archive snapshot", err, log.OpArchive, log.NewFields().WithClientID(summary.ClientID))
		return
	}
	s.logger.Debug("Archived snapshot", log.FieldSnapshotID, id, log.FieldQueryKey, q.Key())
}
