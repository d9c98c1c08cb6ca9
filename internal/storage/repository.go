package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"wrapped/internal/core"

	_ "modernc.org/sqlite"
)

var ErrNoSnapshot = errors.New("no snapshot archived for query")

// Snapshot is one archived fetch of a Wrapped report and its forecast.
type Snapshot struct {
	ID          int64
	QueryKey    string
	ClientID    string
	Summary     core.WrappedSummary
	Predictions *core.PredictionSummary
	FetchedAt   time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveSnapshot archives s and returns its id. A zero FetchedAt means now.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, s Snapshot) (int64, error) {
	summaryJSON, err := json.Marshal(s.Summary)
	if err != nil {
		return 0, fmt.Errorf("marshal summary: %w", err)
	}
	var predictionsJSON sql.NullString
	if s.Predictions != nil {
		b, err := json.Marshal(s.Predictions)
		if err != nil {
			return 0, fmt.Errorf("marshal predictions: %w", err)
		}
		predictionsJSON = sql.NullString{String: string(b), Valid: true}
	}
	fetchedAt := s.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshots (query_key, cliente_id, summary_json, predictions_json, fetched_at) VALUES (?, ?, ?, ?, ?)`,
		s.QueryKey, s.ClientID, string(summaryJSON), predictionsJSON, fetchedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot archived",
		"id", id,
		"query_key", s.QueryKey,
		"cliente_id", s.ClientID,
		"has_predictions", s.Predictions != nil)

	return id, nil
}

// LatestSnapshot returns the most recent snapshot for queryKey, or ErrNoSnapshot.
func (r *SQLiteRepository) LatestSnapshot(ctx context.Context, queryKey string) (Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, query_key, cliente_id, summary_json, predictions_json, fetched_at
		 FROM snapshots WHERE query_key = ? ORDER BY fetched_at DESC, id DESC LIMIT 1`, queryKey)

	var (
		s               Snapshot
		summaryJSON     string
		predictionsJSON sql.NullString
	)
	if err := row.Scan(&s.ID, &s.QueryKey, &s.ClientID, &summaryJSON, &predictionsJSON, &s.FetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, fmt.Errorf("get latest snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &s.Summary); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal summary of snapshot %d: %w", s.ID, err)
	}
	if predictionsJSON.Valid {
		var p core.PredictionSummary
		if err := json.Unmarshal([]byte(predictionsJSON.String), &p); err != nil {
			return Snapshot{}, fmt.Errorf("unmarshal predictions of snapshot %d: %w", s.ID, err)
		}
		s.Predictions = &p
	}
	return s, nil
}

// PruneSnapshots keeps only the newest keep snapshots of queryKey and
// returns how many were deleted.
func (r *SQLiteRepository) PruneSnapshots(ctx context.Context, queryKey string, keep int) (int64, error) {
	if keep < 1 {
		return 0, fmt.Errorf("keep must be at least 1, got %d", keep)
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE query_key = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE query_key = ? ORDER BY fetched_at DESC, id DESC LIMIT ?
		)`, queryKey, queryKey, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruned rows: %w", err)
	}
	if n > 0 {
		slog.DebugContext(ctx, "Snapshots pruned", "query_key", queryKey, "deleted", n, "kept", keep)
	}
	return n, nil
}

// CountSnapshots returns how many snapshots are archived for queryKey.
func (r *SQLiteRepository) CountSnapshots(ctx context.Context, queryKey string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE query_key = ?`, queryKey).Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}
