package state

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/crossroads-cli/crossroads/internal/history"
	"github.com/crossroads-cli/crossroads/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "crossroads.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestInsertRunAndRecentRunsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	record := history.Record{
		ID:          "run-1",
		FeatureName: "Checkout",
		State:       models.StateComplete,
		StartedAt:   now.Add(-10 * time.Minute),
		FinishedAt:  now,
		Result: &models.MergeResult{
			BaseBranch:     "main",
			MergedBranches: []string{"agent/claude-us-1"},
			Success:        true,
		},
	}
	if err := db.InsertRun(record); err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	got := runs[0]
	if got.ID != "run-1" || got.FeatureName != "Checkout" || got.State != models.StateComplete {
		t.Errorf("runs[0] = %+v, unexpected fields", got)
	}
	if got.Result == nil || !got.Result.Success || got.Result.BaseBranch != "main" {
		t.Errorf("runs[0].Result = %+v, want round-tripped merge result", got.Result)
	}
}

func TestInsertRunPurgesPastMaxRecords(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < history.MaxRecords+5; i++ {
		record := history.Record{
			ID:          fmt.Sprintf("run-%d", i),
			FeatureName: "f",
			State:       models.StateComplete,
			StartedAt:   base.Add(time.Duration(i) * time.Hour),
			FinishedAt:  base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.InsertRun(record); err != nil {
			t.Fatalf("InsertRun() error = %v", err)
		}
	}

	runs, err := db.RecentRuns(0)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != history.MaxRecords {
		t.Errorf("len(runs) = %d, want %d", len(runs), history.MaxRecords)
	}
}

func TestHistoryStoreSatisfiesHistoryStoreInterface(t *testing.T) {
	db := openTestDB(t)
	var store history.HistoryStore = NewHistoryStore(db)

	record := history.Record{
		ID:          "run-1",
		FeatureName: "Checkout",
		State:       models.StateComplete,
		StartedAt:   time.Date(2026, 7, 1, 11, 50, 0, 0, time.UTC),
		FinishedAt:  time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Append(record); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	records := store.All()
	if len(records) != 1 || records[0].ID != "run-1" {
		t.Fatalf("All() = %+v, want [run-1]", records)
	}
}
