package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CSVSink appends rows to a CSV file. The file is opened per append and
// closed immediately, so rows survive a crash and the file can be read
// (or rotated) while the server runs. A header row is written when the
// file is created.
type CSVSink struct {
	mu     sync.Mutex
	path   string
	header []string
}

// Compile-time interface check.
var _ Sink = (*CSVSink)(nil)

// NewCSVSink creates a sink for the given path. The header is written
// once, the first time the file is created. Parent directories are
// created as needed.
func NewCSVSink(path string, header []string) (*CSVSink, error) {
	if path == "" {
		return nil, fmt.Errorf("export: csv path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("export: create directory %s: %w", dir, err)
		}
	}
	return &CSVSink{path: path, header: header}, nil
}

// AppendRow appends one row, creating the file (with header) on first use.
func (s *CSVSink) AppendRow(ctx context.Context, row []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	info, statErr := os.Stat(s.path)
	fresh := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("export: open %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if fresh && len(s.header) > 0 {
		if err := w.Write(s.header); err != nil {
			return fmt.Errorf("export: write header: %w", err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("export: write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}

	return nil
}
