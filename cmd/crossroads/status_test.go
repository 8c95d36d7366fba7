package main

import (
	"testing"
	"time"

	"github.com/crossroads-cli/crossroads/internal/configcheck"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"seconds", 45 * time.Second, "45s"},
		{"minutes", 5 * time.Minute, "5m"},
		{"hours and minutes", 90 * time.Minute, "1h30m"},
		{"exact hours", 2 * time.Hour, "2h"},
		{"days", 50 * time.Hour, "2d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDuration(tt.d); got != tt.want {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestToolLine(t *testing.T) {
	tests := []struct {
		name string
		tool configcheck.ToolStatus
		want string
	}{
		{"unavailable", configcheck.ToolStatus{Available: false}, "not found"},
		{"available without version", configcheck.ToolStatus{Available: true, Path: "/usr/bin/git"}, "/usr/bin/git"},
		{"available with version", configcheck.ToolStatus{Available: true, Path: "/usr/bin/git", Version: "2.40"}, "/usr/bin/git (2.40)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toolLine(tt.tool); got != tt.want {
				t.Errorf("toolLine(%+v) = %q, want %q", tt.tool, got, tt.want)
			}
		})
	}
}
