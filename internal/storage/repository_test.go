package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"wrapped/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "archive", "wrapped.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSnapshotRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	fetched := time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC)

	message := "hola"
	summary := core.WrappedSummary{
		ClientID:   "c-1",
		Currency:   "MXN",
		ByMerchant: map[string]float64{"AMAZON": 10.5},
		Iconic:     &core.IconicPurchase{Message: &message},
	}
	predictions := &core.PredictionSummary{
		Total:         299,
		Subscriptions: []core.PredictedCharge{{Merchant: "NETFLIX", Amount: 299, Year: 2025, Month: 1, Day: 15}},
	}
	id, err := repo.SaveSnapshot(ctx, Snapshot{QueryKey: "k", ClientID: "c-1", Summary: summary, Predictions: predictions, FetchedAt: fetched})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, err := repo.LatestSnapshot(ctx, "k")
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if got.ID != id || got.ClientID != "c-1" || !got.FetchedAt.Equal(fetched) {
		t.Fatalf("unexpected snapshot header %+v", got)
	}
	if got.Summary.ByMerchant["AMAZON"] != 10.5 || got.Summary.Iconic == nil || got.Summary.Iconic.Message == nil || *got.Summary.Iconic.Message != "hola" {
		t.Fatalf("summary not restored: %+v", got.Summary)
	}
	if got.Predictions == nil || len(got.Predictions.Subscriptions) != 1 || got.Predictions.Subscriptions[0].Day != 15 {
		t.Fatalf("predictions not restored: %+v", got.Predictions)
	}
}

func TestSnapshotWithoutPredictions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if _, err := repo.SaveSnapshot(ctx, Snapshot{QueryKey: "k", Summary: core.WrappedSummary{ClientID: "c"}}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	got, err := repo.LatestSnapshot(ctx, "k")
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if got.Predictions != nil {
		t.Fatalf("expected nil predictions, got %+v", got.Predictions)
	}
	if got.FetchedAt.IsZero() {
		t.Fatal("zero FetchedAt should default to now")
	}
}

func TestLatestSnapshotPicksNewest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, s := range []struct {
		client string
		offset time.Duration
	}{
		{"old", time.Hour},
		{"new", 2 * time.Hour},
		{"older", 0},
	} {
		if _, err := repo.SaveSnapshot(ctx, Snapshot{QueryKey: "k", ClientID: s.client, Summary: core.WrappedSummary{ClientID: s.client}, FetchedAt: base.Add(s.offset)}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := repo.SaveSnapshot(ctx, Snapshot{QueryKey: "other", ClientID: "x", FetchedAt: base.Add(time.Hour * 24)}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.LatestSnapshot(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if got.ClientID != "new" {
		t.Fatalf("expected newest snapshot, got %q", got.ClientID)
	}
}

func TestLatestSnapshotMissing(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.LatestSnapshot(context.Background(), "nope"); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestPruneSnapshots(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := repo.SaveSnapshot(ctx, Snapshot{QueryKey: "k", FetchedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := repo.SaveSnapshot(ctx, Snapshot{QueryKey: "other"}); err != nil {
		t.Fatal(err)
	}

	deleted, err := repo.PruneSnapshots(ctx, "k", 2)
	if err != nil {
		t.Fatalf("PruneSnapshots: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted, got %d", deleted)
	}
	if n, _ := repo.CountSnapshots(ctx, "k"); n != 2 {
		t.Fatalf("expected 2 kept, got %d", n)
	}
	if n, _ := repo.CountSnapshots(ctx, "other"); n != 1 {
		t.Fatalf("other queries must be untouched, got %d", n)
	}
	latest, _ := repo.LatestSnapshot(ctx, "k")
	if !latest.FetchedAt.Equal(base.Add(4 * time.Minute)) {
		t.Fatalf("newest snapshot must survive pruning, got %v", latest.FetchedAt)
	}

	if _, err := repo.PruneSnapshots(ctx, "k", 0); err == nil {
		t.Fatal("expected error for keep=0")
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrapped.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}
