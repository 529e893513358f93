// Package tradelog keeps a JSON-lines journal of every run, one file per
// UTC day, and gzips files past their retention window.
package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"dcabot/internal/types"
)

const fileExt = ".jsonl"

// RunRecord is one journal line.
type RunRecord struct {
	Time       string                  `json:"time"`
	RunID      string                  `json:"run_id"`
	Date       string                  `json:"date"`
	Symbol     string                  `json:"symbol"`
	Mode       string                  `json:"mode"`
	Status     string                  `json:"status"`
	Trail      []string                `json:"trail"`
	Price      types.Optional[float64] `json:"price"`
	Index      types.Optional[float64] `json:"index"`
	Multiplier types.Optional[float64] `json:"multiplier"`
	Spend      types.Optional[float64] `json:"spend_usd"`
	Reason     string                  `json:"reason,omitempty"`
	OrderID    string                  `json:"order_id,omitempty"`
	Cost       types.Optional[float64] `json:"cost"`
	Quantity   types.Optional[float64] `json:"quantity"`
	FillPrice  types.Optional[float64] `json:"fill_price"`
	ErrorKind  string                  `json:"error_kind,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Warnings   []string                `json:"warnings,omitempty"`
}

// Journal appends run records under dir.
type Journal struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

func New(dir string) *Journal {
	if dir == "" {
		dir = filepath.Join("logs", "runs")
	}
	return &Journal{dir: dir, now: time.Now}
}

// Dir returns the journal directory.
func (j *Journal) Dir() string { return j.dir }

func (j *Journal) dailyFilepath(t time.Time) string {
	return filepath.Join(j.dir, t.UTC().Format("2006-01-02")+fileExt)
}

// AppendRun writes r as one line of today's file. Time is stamped here.
func (j *Journal) AppendRun(r RunRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now().UTC()
	r.Time = now.Format(time.RFC3339)
	p := j.dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files not modified within retentionDays.
// Files that fail to compress are left in place.
func (j *Journal) CompressOlder(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := os.ReadDir(j.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := j.now().AddDate(0, 0, -retentionDays)
	compressed := 0
	for _, d := range entries {
		if d.IsDir() || filepath.Ext(d.Name()) != fileExt {
			continue
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		p := filepath.Join(j.dir, d.Name())
		gz := p + ".gz"
		// if already gz exists, remove original
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			continue
		}
		if err := gzipFile(p, gz); err != nil {
			_ = os.Remove(gz)
			continue
		}
		_ = os.Remove(p)
		compressed++
	}
	return compressed, nil
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
