// Package notes synchronizes the three canonical note files between a
// repository and an agent's worktree.
package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Files lists the canonical note files, in the order they are synced.
var Files = []string{"decisions.md", "learnings.md", "blockers.md"}

const placeholderHeaderFmt = "# %s\n"

// EnsureWorktreeNotes ensures worktreePath/notes/ exists with header-only
// placeholders for any of the three canonical files not already present.
// Used by the agent launcher, which has no repo-side counterpart to sync
// from at launch time.
func EnsureWorktreeNotes(worktreePath string) error {
	dir := filepath.Join(worktreePath, "notes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create worktree notes dir: %w", err)
	}
	for _, name := range Files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			header := fmt.Sprintf(placeholderHeaderFmt, title(name))
			if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
				return fmt.Errorf("create placeholder %s: %w", name, err)
			}
		} else if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}
	return nil
}

// SyncToWorktree ensures repoPath/notes/<sanitized-branch>/ exists with
// header-only placeholders for any missing file, then copies each file
// verbatim into worktreePath/notes/.
func SyncToWorktree(repoPath, worktreePath, branchName string) error {
	repoNotesDir := filepath.Join(repoPath, "notes", sanitize(branchName))
	if err := os.MkdirAll(repoNotesDir, 0o755); err != nil {
		return fmt.Errorf("create repo notes dir: %w", err)
	}

	worktreeNotesDir := filepath.Join(worktreePath, "notes")
	if err := os.MkdirAll(worktreeNotesDir, 0o755); err != nil {
		return fmt.Errorf("create worktree notes dir: %w", err)
	}

	for _, name := range Files {
		repoFile := filepath.Join(repoNotesDir, name)
		if _, err := os.Stat(repoFile); os.IsNotExist(err) {
			header := fmt.Sprintf(placeholderHeaderFmt, title(name))
			if err := os.WriteFile(repoFile, []byte(header), 0o644); err != nil {
				return fmt.Errorf("create placeholder %s: %w", name, err)
			}
		} else if err != nil {
			return fmt.Errorf("stat %s: %w", repoFile, err)
		}

		data, err := os.ReadFile(repoFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", repoFile, err)
		}
		if err := os.WriteFile(filepath.Join(worktreeNotesDir, name), data, 0o644); err != nil {
			return fmt.Errorf("copy %s into worktree: %w", name, err)
		}
	}

	return nil
}

// SyncBack appends each non-empty worktree-side note file to its repo-side
// counterpart under a timestamped section header. Missing or empty worktree
// files are skipped. Appends are atomic at the file level: open-for-append
// then close, falling back to a full rewrite if the append handle cannot be
// opened.
func SyncBack(repoPath, worktreePath, branchName string) error {
	repoNotesDir := filepath.Join(repoPath, "notes", sanitize(branchName))
	worktreeNotesDir := filepath.Join(worktreePath, "notes")

	for _, name := range Files {
		data, err := os.ReadFile(filepath.Join(worktreeNotesDir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("read worktree %s: %w", name, err)
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			continue
		}

		section := fmt.Sprintf("\n\n## %s – %s\n%s\n", isoTimestamp(), branchName, content)
		if err := appendSection(filepath.Join(repoNotesDir, name), section); err != nil {
			return fmt.Errorf("append %s: %w", name, err)
		}
	}

	return nil
}

func appendSection(path, section string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		existing, readErr := os.ReadFile(path)
		if readErr != nil && !os.IsNotExist(readErr) {
			return readErr
		}
		return os.WriteFile(path, append(existing, []byte(section)...), 0o644)
	}
	defer f.Close()
	_, err = f.WriteString(section)
	return err
}

func sanitize(branchName string) string {
	return strings.ReplaceAll(branchName, "/", "-")
}

func title(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return strings.ToUpper(base[:1]) + base[1:]
}

func isoTimestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
