package output

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/model"
)

// xlsxSheetName is the single sheet of the spreadsheet export.
const xlsxSheetName = "Sub-Queries"

// xlsxHeader is the flat sub-query table's column order.
var xlsxHeader = []string{
	"Sub-Query",
	"Predicted Source Types",
	"Predicted Modality",
	"Routing Error",
	"Extractability",
	"Evidence Density",
	"Scope Clarity",
	"Authority Signals",
	"Freshness",
	"Target Keywords and Phrasings",
	"Profile Error",
}

// WriteXLSX exports the run's routed sub-queries as a one-row-per-query
// spreadsheet and returns the path.
func (w Writer) WriteXLSX(rec *model.Record, stamp string) (string, error) {
	path, err := w.path("fan-out-data-" + stamp + ".xlsx")
	if err != nil {
		return "", err
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(xlsxSheetName)
	if err != nil {
		return "", eris.Wrap(err, "output: add sheet")
	}

	addRow(sheet, xlsxHeader)
	for _, item := range rec.RoutedAndProfiled {
		addRow(sheet, flattenRouted(item))
	}

	if err := f.Save(path); err != nil {
		return "", eris.Wrapf(err, "output: save %s", path)
	}

	zap.L().Info("output: spreadsheet written",
		zap.String("path", path),
		zap.Int("rows", len(rec.RoutedAndProfiled)),
	)
	return path, nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, v := range cells {
		row.AddCell().SetString(v)
	}
}

// flattenRouted maps one routed sub-query onto the xlsxHeader columns.
func flattenRouted(item model.RoutedSubQuery) []string {
	p := item.IdealContentProfile
	if p == nil {
		p = &model.ContentProfile{}
	}
	return []string{
		item.SubQuery,
		strings.Join(item.PredictedSourceTypes, ", "),
		item.PredictedModality,
		item.Error,
		p.Extractability,
		p.EvidenceDensity,
		p.ScopeClarity,
		p.AuthoritySignals,
		p.Freshness,
		strings.Join(p.TargetKeywordsAndPhrasings, ", "),
		p.Error,
	}
}
