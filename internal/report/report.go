// Package report renders the results of a scout run as HTML, XLSX, and
// CSV for analysts who want the output outside the terminal.
package report

import (
	_ "embed"
	"encoding/csv"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/meridian-vc/scout-cli/internal/model"
)

//go:embed report.tmpl
var reportTemplate string

// Report is the material for one rendered run.
type Report struct {
	Thesis      string
	GeneratedAt time.Time
	Companies   []model.EnrichedCompany
}

// Band maps a relevance score to its advisory tier.
func Band(score int) string {
	switch {
	case score >= 80:
		return "strong"
	case score >= 50:
		return "partial"
	default:
		return "weak"
	}
}

var columns = []string{
	"Name", "Website", "Country", "Description",
	"Founding Year", "Funding Stage", "ARR", "Market Sector", "Relevance",
}

func rowValues(c model.EnrichedCompany) []string {
	return []string{
		c.Name, c.URL, c.Country, c.Description,
		c.FoundingYear, c.FundingStage, c.ARR, c.MarketSector,
		strconv.Itoa(c.RelevanceScore),
	}
}

var htmlTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"band": Band,
}).Parse(reportTemplate))

// RenderHTML writes the standalone HTML report.
func RenderHTML(w io.Writer, rep Report) error {
	if rep.GeneratedAt.IsZero() {
		rep.GeneratedAt = time.Now()
	}
	if err := htmlTmpl.Execute(w, rep); err != nil {
		return eris.Wrap(err, "report: render html")
	}
	return nil
}

// WriteXLSX writes the results workbook to path.
func WriteXLSX(path string, rep Report) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Companies")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range columns {
		header.AddCell().Value = col
	}
	for _, c := range rep.Companies {
		row := sheet.AddRow()
		for _, v := range rowValues(c) {
			row.AddCell().Value = v
		}
	}

	// evidence trail on a second sheet
	findings, err := f.AddSheet("Findings")
	if err != nil {
		return eris.Wrap(err, "report: add findings sheet")
	}
	fh := findings.AddRow()
	for _, col := range []string{"Company", "Attribute", "Value", "Confidence", "Reasoning", "Source"} {
		fh.AddCell().Value = col
	}
	for _, c := range rep.Companies {
		for _, finding := range c.Findings {
			row := findings.AddRow()
			for _, v := range []string{
				c.Name, finding.Attribute, finding.Value,
				string(finding.Confidence), finding.Reasoning, finding.SourceURL,
			} {
				row.AddCell().Value = v
			}
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save xlsx")
	}
	return nil
}

// WriteCSV writes the flat results table.
func WriteCSV(w io.Writer, rep Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}
	for _, c := range rep.Companies {
		if err := cw.Write(rowValues(c)); err != nil {
			return eris.Wrap(err, "report: write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}
