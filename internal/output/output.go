// Package output writes the per-run artifacts: the JSON run record, the
// rendered content plan, the cost summary, and the optional spreadsheet
// export. All artifacts of one run share a timestamp so they sort together
// in the output directory.
package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/model"
)

// TimestampFormat names one run across every artifact it produces.
const TimestampFormat = "20060102-150405"

// DefaultDir is where artifacts land unless configured otherwise.
const DefaultDir = "outputs"

// Stamp renders t as an artifact timestamp.
func Stamp(t time.Time) string {
	return t.Format(TimestampFormat)
}

// Writer writes run artifacts into one directory, creating it on first use.
// The zero value writes into DefaultDir.
type Writer struct {
	Dir string
}

func (w Writer) dir() string {
	if w.Dir != "" {
		return w.Dir
	}
	return DefaultDir
}

// path ensures the output directory exists and returns the artifact's path.
func (w Writer) path(name string) (string, error) {
	dir := w.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "output: create dir %s", dir)
	}
	return filepath.Join(dir, name), nil
}

// WriteRecord persists the run record as indented JSON and returns the path.
func (w Writer) WriteRecord(rec *model.Record, stamp string) (string, error) {
	path, err := w.path("fan-out-data-" + stamp + ".json")
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "output: encode run record")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", eris.Wrapf(err, "output: write %s", path)
	}

	zap.L().Info("output: run record written",
		zap.String("path", path),
		zap.String("run_id", rec.RunID),
	)
	return path, nil
}

// WritePlan persists the rendered content plan and returns the path.
func (w Writer) WritePlan(plan, stamp string) (string, error) {
	path, err := w.writeText("content-plan-"+stamp+".md", plan)
	if err != nil {
		return "", err
	}
	zap.L().Info("output: content plan written", zap.String("path", path))
	return path, nil
}

// WriteCosts persists the ledger summary and returns the path.
func (w Writer) WriteCosts(summary, stamp string) (string, error) {
	path, err := w.writeText("costs_"+stamp+".txt", summary)
	if err != nil {
		return "", err
	}
	zap.L().Info("output: cost summary written", zap.String("path", path))
	return path, nil
}

func (w Writer) writeText(name, content string) (string, error) {
	path, err := w.path(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", eris.Wrapf(err, "output: write %s", path)
	}
	return path, nil
}
