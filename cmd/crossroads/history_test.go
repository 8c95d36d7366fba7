package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/crossroads-cli/crossroads/internal/history"
	"github.com/crossroads-cli/crossroads/pkg/models"
)

func TestRunHistoryPrintsNothingForEmptyHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	svc := history.New(path)

	if got := svc.All(); len(got) != 0 {
		t.Fatalf("All() = %v, want empty", got)
	}
}

func TestRunHistoryListsRecordsNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	svc := history.New(path)

	older := history.Record{ID: "run-1", FeatureName: "older", StartedAt: time.Now().Add(-time.Hour), FinishedAt: time.Now().Add(-time.Hour), State: models.StateComplete}
	newer := history.Record{ID: "run-2", FeatureName: "newer", StartedAt: time.Now(), FinishedAt: time.Now(), State: models.StateComplete}

	if err := svc.Append(older); err != nil {
		t.Fatalf("Append(older): %v", err)
	}
	if err := svc.Append(newer); err != nil {
		t.Fatalf("Append(newer): %v", err)
	}

	records := svc.All()
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].ID != "run-2" {
		t.Errorf("records[0].ID = %q, want run-2 (newest first)", records[0].ID)
	}
}
