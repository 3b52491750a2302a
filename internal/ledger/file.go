package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"DisclosureNotifier/internal/ports"
)

// fileState is the on-disk shape: a single JSON object with the key list.
type fileState struct {
	IDs []string `json:"ids"`
}

// FileLedger persists delivered keys to a single JSON file, rewritten
// atomically on each Persist. The file is the sole durable state of the
// system between runs.
type FileLedger struct {
	path   string
	set    *boundedSet
	logger *slog.Logger
}

var _ ports.Ledger = (*FileLedger)(nil)

// LoadFile reads the ledger file into memory. A missing file starts empty;
// an unreadable or corrupt file is logged and also starts empty, because
// over-redelivery is preferred to a startup failure.
func LoadFile(path string, capacity int, logger *slog.Logger) *FileLedger {
	l := &FileLedger{
		path:   path,
		set:    newBoundedSet(capacity),
		logger: logger,
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.warn("ledger file unreadable, starting empty", "path", path, "error", err)
		}
		return l
	}

	var state fileState
	if err := json.Unmarshal(raw, &state); err != nil {
		l.warn("ledger file corrupt, starting empty", "path", path, "error", err)
		return l
	}

	l.set.replace(state.IDs)
	return l
}

// Contains reports whether the key was already delivered.
func (l *FileLedger) Contains(key string) bool {
	return l.set.contains(key)
}

// Add records a delivered key, evicting the oldest beyond capacity.
func (l *FileLedger) Add(key string) {
	l.set.add(key)
}

// Len returns the number of retained keys.
func (l *FileLedger) Len() int {
	return l.set.len()
}

// Persist rewrites the ledger file. Write-then-rename keeps the published
// file whole even if the process dies mid-write.
func (l *FileLedger) Persist() error {
	raw, err := json.MarshalIndent(fileState{IDs: l.set.ids}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp ledger: %w", err)
	}

	if err := os.Rename(tmp.Name(), l.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("publish ledger: %w", err)
	}

	return nil
}

func (l *FileLedger) warn(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}
