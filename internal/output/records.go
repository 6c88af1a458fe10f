package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/model"
)

const (
	recordPrefix = "fan-out-data-"
	recordSuffix = ".json"
)

// ReadRecord loads one persisted run record.
func ReadRecord(path string) (*model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "output: read record %s", path)
	}

	var rec model.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrapf(err, "output: decode record %s", path)
	}
	rec.Expansion.Normalize()
	return &rec, nil
}

// LoadRecords loads every run record in dir, oldest first. Timestamped names
// sort chronologically, so name order is run order. Files that fail to decode
// are skipped with a warning so one corrupt artifact cannot block planning
// over the rest.
func LoadRecords(dir string) ([]model.Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "output: read dir %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, recordPrefix) && strings.HasSuffix(name, recordSuffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	records := make([]model.Record, 0, len(names))
	for _, name := range names {
		rec, err := ReadRecord(filepath.Join(dir, name))
		if err != nil {
			zap.L().Warn("output: skipping unreadable record",
				zap.String("file", name),
				zap.Error(err),
			)
			continue
		}
		records = append(records, *rec)
	}

	zap.L().Debug("output: records loaded",
		zap.String("dir", dir),
		zap.Int("count", len(records)),
	)
	return records, nil
}
