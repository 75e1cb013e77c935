package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Store saves and loads report files.
type Store interface {
	SaveReports(path string, reports []Report) error
	LoadReports(path string) ([]Report, error)
}

// FileStore is a Store on the local filesystem. The format of a file is
// taken from its extension unless the store has a fixed format.
type FileStore struct {
	format Format
}

// NewFileStore creates a FileStore. An empty format infers it per file.
func NewFileStore(format Format) *FileStore {
	return &FileStore{format: format}
}

func (s *FileStore) formatFor(path string) (Format, error) {
	if s.format != "" {
		return s.format, nil
	}

	return FormatFromPath(path)
}

// SaveReports replaces the file at path with reports.
func (s *FileStore) SaveReports(path string, reports []Report) error {
	format, err := s.formatFor(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		slog.Error("Failed to create report directory", "path", path, "error", err)
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		slog.Error("Failed to create temp report file", "path", path, "error", err)
		return fmt.Errorf("failed to create temp report file: %w", err)
	}

	tmp := f.Name()
	defer func() {
		if _, statErr := os.Stat(tmp); statErr == nil {
			_ = os.Remove(tmp)
		}
	}()

	if err := Encode(f, format, reports...); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		slog.Error("Failed to move report file", "from", tmp, "to", path, "error", err)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	slog.Debug("saved reports", "path", path, "count", len(reports), "format", format)

	return nil
}

// LoadReports reads every report stored at path.
func (s *FileStore) LoadReports(path string) ([]Report, error) {
	format, err := s.formatFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("Failed to close report file", "path", path, "error", err)
		}
	}()

	reports, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	slog.Debug("loaded reports", "path", path, "count", len(reports), "format", format)

	return reports, nil
}
