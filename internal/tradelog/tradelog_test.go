package tradelog

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcabot/internal/types"
)

func TestAppendRunWritesJSONLines(t *testing.T) {
	j := New(t.TempDir())
	j.now = func() time.Time { return time.Date(2025, 3, 4, 23, 30, 0, 0, time.UTC) }

	require.NoError(t, j.AppendRun(RunRecord{RunID: "a", Status: "success", Spend: types.Some(5.0)}))
	require.NoError(t, j.AppendRun(RunRecord{RunID: "b", Status: "failed", ErrorKind: "ExchangeFetchError"}))

	f, err := os.Open(filepath.Join(j.Dir(), "2025-03-04.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var got []RunRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r RunRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		got = append(got, r)
	}
	require.Len(t, got, 2)
	assert.Equal(t, "2025-03-04T23:30:00Z", got[0].Time)
	assert.Equal(t, 5.0, got[0].Spend.OrElse(0))
	assert.False(t, got[1].Spend.IsDefined())
	assert.Equal(t, "ExchangeFetchError", got[1].ErrorKind)
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	j := New(dir)
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return now }

	old := filepath.Join(dir, "2025-01-01.jsonl")
	fresh := filepath.Join(dir, "2025-03-09.jsonl")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte(`{"run_id":"x"}`+"\n"), 0o644))
	}
	oldTime := now.AddDate(0, 0, -40)
	require.NoError(t, os.Chtimes(old, oldTime, oldTime))
	require.NoError(t, os.Chtimes(other, oldTime, oldTime))
	require.NoError(t, os.Chtimes(fresh, now, now))

	n, err := j.CompressOlder(30)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)

	f, err := os.Open(old + ".gz")
	require.NoError(t, err)
	defer f.Close()
	gr, err := gzip.NewReader(f)
	require.NoError(t, err)
	b, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, `{"run_id":"x"}`+"\n", string(b))
}

func TestCompressOlderMissingDir(t *testing.T) {
	j := New(filepath.Join(t.TempDir(), "absent"))
	n, err := j.CompressOlder(7)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = j.CompressOlder(0)
	require.NoError(t, err)
	assert.Zero(t, n)
}
