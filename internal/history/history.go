// Package history persists a bounded, newest-first record of past
// orchestration runs.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/crossroads-cli/crossroads/pkg/models"
)

// MaxRecords bounds the persisted history, oldest records dropped first.
const MaxRecords = 50

// HistoryStore is satisfied by both the default JSON file Service and the
// optional SQLite-backed store in internal/state, so callers can switch
// backends without changing how they record or list runs.
type HistoryStore interface {
	Append(record Record) error
	All() []Record
}

// Record is one completed or failed orchestration run. Fields are declared
// in key-sorted order so the marshaled JSON matches the history file's
// sorted-keys contract without a custom encoder.
type Record struct {
	FeatureName string                   `json:"featureName"`
	FinishedAt  time.Time                `json:"finishedAt"`
	ID          string                   `json:"id"`
	Result      *models.MergeResult      `json:"result,omitempty"`
	StartedAt   time.Time                `json:"startedAt"`
	State       models.OrchestratorState `json:"state"`
}

type fileFormat struct {
	Records []Record `json:"records"`
}

// Service appends to and reads a single JSON-backed history file. It
// behaves as a single-threaded actor serialized under a mutex, since the
// file itself has no cross-process locking.
type Service struct {
	mu   sync.Mutex
	path string
}

var _ HistoryStore = (*Service)(nil)

// New returns a Service backed by the history file at path.
func New(path string) *Service {
	return &Service{path: path}
}

// Append prepends record to the history, truncates to MaxRecords, and
// writes the whole file atomically with sorted keys and pretty-printed
// JSON. Read errors on the existing file are swallowed and treated as an
// empty history, per the history file's best-effort contract.
func (s *Service) Append(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, _ := s.readLocked()
	records = append([]Record{record}, records...)
	if len(records) > MaxRecords {
		records = records[:MaxRecords]
	}

	return s.writeLocked(records)
}

// All returns the full history, newest first. Read errors are swallowed
// and treated as empty history.
func (s *Service) All() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, _ := s.readLocked()
	return records
}

func (s *Service) readLocked() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Records, nil
}

func (s *Service) writeLocked(records []Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fileFormat{Records: records}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
