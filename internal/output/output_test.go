package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentlab/fanout-cli/internal/model"
)

func TestStamp(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	assert.Equal(t, "20240309-140506", Stamp(ts))
}

func TestWriter_WriteRecord(t *testing.T) {
	dir := t.TempDir()
	w := Writer{Dir: dir}
	rec := sampleRecord()

	path, err := w.WriteRecord(rec, "20250814-093000")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fan-out-data-20250814-093000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))

	var got model.Record
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, rec.RunID, got.RunID)
	assert.Equal(t, rec.OriginalQuery, got.OriginalQuery)
	require.Len(t, got.RoutedAndProfiled, 2)
	assert.Equal(t, rec.RoutedAndProfiled[0].IdealContentProfile, got.RoutedAndProfiled[0].IdealContentProfile)
}

func TestWriter_WriteRecord_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "outputs")
	w := Writer{Dir: dir}

	path, err := w.WriteRecord(sampleRecord(), "20250814-093000")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestWriter_WriteRecord_DirCreationFails(t *testing.T) {
	// The parent path is a file, so MkdirAll cannot succeed.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	w := Writer{Dir: filepath.Join(blocker, "outputs")}

	_, err := w.WriteRecord(sampleRecord(), "20250814-093000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create dir")
}

func TestWriter_WritePlan(t *testing.T) {
	dir := t.TempDir()
	w := Writer{Dir: dir}
	plan := "# Content Plan for \"half marathon\"\n\nbody\n"

	path, err := w.WritePlan(plan, "20250814-093000")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "content-plan-20250814-093000.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, plan, string(data))
}

func TestWriter_WriteCosts(t *testing.T) {
	dir := t.TempDir()
	w := Writer{Dir: dir}
	summary := "--- Cost and Usage Summary ---\nTotal Input Tokens: 12\n"

	path, err := w.WriteCosts(summary, "20250814-093000")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "costs_20250814-093000.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, summary, string(data))
}

func TestWriter_DefaultDir(t *testing.T) {
	assert.Equal(t, DefaultDir, Writer{}.dir())
	assert.Equal(t, "custom", Writer{Dir: "custom"}.dir())
}
