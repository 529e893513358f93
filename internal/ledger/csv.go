package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// CSVStore keeps the ledger in a CSV file that is only ever opened in append
// mode, one row per write.
type CSVStore struct {
	path   string
	policy CorruptPolicy
	now    func() time.Time
}

func NewCSVStore(path string, policy CorruptPolicy) *CSVStore {
	if policy == "" {
		policy = RepairOnCorrupt
	}
	return &CSVStore{path: path, policy: policy, now: time.Now}
}

func (s *CSVStore) Path() string { return s.path }

// Check reports ErrCorrupt when the file exists with content that is not a
// ledger. A missing or empty file is healthy.
func (s *CSVStore) Check() error {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if !utf8.Valid(b) || bytes.IndexByte(b, 0) >= 0 {
		return fmt.Errorf("%w: %s contains binary data", ErrCorrupt, s.path)
	}
	first, _, _ := strings.Cut(string(b), "\n")
	if !headerMatches(first) {
		return fmt.Errorf("%w: %s has unexpected header %q", ErrCorrupt, s.path, strings.TrimSpace(first))
	}
	return nil
}

// Repair moves the current file aside so the next append starts a fresh
// ledger. The old content is kept at the returned path.
func (s *CSVStore) Repair() (string, error) {
	backup := fmt.Sprintf("%s.corrupt-%s", s.path, s.now().UTC().Format("20060102T150405Z"))
	if err := os.Rename(s.path, backup); err != nil {
		return "", fmt.Errorf("move corrupt ledger aside: %w", err)
	}
	return backup, nil
}

func (s *CSVStore) Append(ctx context.Context, e Entry) (AppendResult, error) {
	var res AppendResult
	if err := e.Validate(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if err := s.Check(); err != nil {
		if !errors.Is(err, ErrCorrupt) || s.policy == FailOnCorrupt {
			return res, err
		}
		backup, rerr := s.Repair()
		if rerr != nil {
			return res, errors.Join(err, rerr)
		}
		res.Repaired = true
		res.BackupPath = backup
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return res, err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return res, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return res, err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return res, err
		}
	} else if !endsWithNewline(f, info.Size()) {
		// a previous write was cut short; keep the new row on its own line
		if _, err := f.WriteString("\n"); err != nil {
			return res, err
		}
	}
	if err := w.Write(e.record()); err != nil {
		return res, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return res, err
	}
	return res, f.Sync()
}

// ReadAll returns every well-formed row in file order. Rows that fail to
// parse are counted and skipped.
func (s *CSVStore) ReadAll(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return snap, nil
	}
	if err != nil {
		return snap, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	if err := s.Check(); err != nil {
		return snap, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	first := true
	for {
		if err := ctx.Err(); err != nil {
			return snap, err
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				snap.Malformed++
				first = false
				continue
			}
			return snap, fmt.Errorf("read ledger: %w", err)
		}
		if first {
			first = false
			if headerMatches(strings.Join(rec, ",")) {
				continue
			}
		}
		e, err := parseRecord(rec)
		if err != nil {
			snap.Malformed++
			continue
		}
		snap.Entries = append(snap.Entries, e)
	}
	return snap, nil
}

func (s *CSVStore) Close() error { return nil }

func headerMatches(line string) bool {
	line = strings.TrimPrefix(strings.TrimSpace(line), "\ufeff")
	fields := strings.Split(line, ",")
	if len(fields) != len(Header) {
		return false
	}
	for i, f := range fields {
		if strings.TrimSpace(f) != Header[i] {
			return false
		}
	}
	return true
}

func endsWithNewline(f *os.File, size int64) bool {
	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, size-1); err != nil {
		return true
	}
	return buf[0] == '\n'
}
