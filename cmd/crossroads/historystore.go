package main

import (
	"fmt"

	"github.com/crossroads-cli/crossroads/internal/config"
	"github.com/crossroads-cli/crossroads/internal/history"
	"github.com/crossroads-cli/crossroads/internal/state"
)

// resolveHistoryStore returns the JSON file history service by default, or
// the SQLite-backed store when useSQLite is set. Both satisfy
// history.HistoryStore, so the run and history commands never need to care
// which backend is active.
func resolveHistoryStore(cfg *config.Config, useSQLite bool) (history.HistoryStore, error) {
	if !useSQLite {
		return history.New(cfg.History.Path), nil
	}

	db, err := state.OpenGlobal()
	if err != nil {
		return nil, fmt.Errorf("open sqlite history database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate sqlite history database: %w", err)
	}
	return state.NewHistoryStore(db), nil
}
