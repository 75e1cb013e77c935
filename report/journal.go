package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Journal is an append-only report file, typically fed one snapshot per
// test case.
type Journal interface {
	Len() uint64
	Path() string
	Append(r Report) error
	Range(fn func(index uint64, r Report) error) error
	Close() error
}

type fileJournal struct {
	path   string
	format Format
	file   *os.File
	mu     sync.Mutex
	length uint64
	size   int64
}

// OpenJournal opens or creates the journal at path. Reports already in the
// file are kept and counted.
func OpenJournal(path string, format Format) (Journal, error) {
	if format == "" {
		f, err := FormatFromPath(path)
		if err != nil {
			return nil, err
		}

		format = f
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o600)
	if err != nil {
		slog.Error("Failed to open journal", "path", path, "error", err)
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	j := &fileJournal{path: path, format: format, file: file}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat journal: %w", err)
	}

	j.size = info.Size()

	if j.size > 0 {
		if err := j.rangeLocked(func(uint64, Report) error { j.length++; return nil }); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	slog.Debug("opened journal", "path", path, "length", j.length)

	return j, nil
}

// Append implements Journal.
func (j *fileJournal) Append(r Report) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return fmt.Errorf("failed to append report: journal %s is closed", j.path)
	}

	var buf bytes.Buffer
	if j.format == FormatYAML && j.size > 0 {
		buf.WriteString("---\n")
	}

	if err := Encode(&buf, j.format, r); err != nil {
		slog.Error("Failed to encode journal entry", "path", j.path, "index", j.length, "error", err)
		return err
	}

	n, err := j.file.Write(buf.Bytes())
	j.size += int64(n)

	if err != nil {
		slog.Error("Failed to append journal entry", "path", j.path, "index", j.length, "error", err)
		return fmt.Errorf("failed to append report: %w", err)
	}

	j.length++
	slog.Debug("appended report", "path", j.path, "index", j.length-1)

	return nil
}

// Len implements Journal.
func (j *fileJournal) Len() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.length
}

// Path implements Journal.
func (j *fileJournal) Path() string {
	return j.path
}

// Range implements Journal.
func (j *fileJournal) Range(fn func(index uint64, r Report) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.rangeLocked(fn)
}

func (j *fileJournal) rangeLocked(fn func(index uint64, r Report) error) error {
	file, err := os.Open(j.path)
	if err != nil {
		slog.Error("Failed to open journal for range", "path", j.path, "error", err)
		return fmt.Errorf("failed to open journal: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("Failed to close journal", "path", j.path, "error", err)
		}
	}()

	var i uint64

	return decodeEach(file, j.format, func(r Report) error {
		if err := fn(i, r); err != nil {
			slog.Warn("Journal range callback error", "path", j.path, "index", i, "error", err)
			return err
		}

		i++

		return nil
	})
}

// Close implements Journal.
func (j *fileJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}

	if err := j.file.Close(); err != nil {
		slog.Error("Failed to close journal", "path", j.path, "error", err)
		return err
	}

	j.file = nil
	slog.Debug("closed journal", "path", j.path, "length", j.length)

	return nil
}
