package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/contract-analyzer/internal/results"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

var headers = []string{
	"File Name",
	"Status",
	"Client Name",
	"Contract Type",
	"Start Date",
	"End Date",
	"Summary",
	"Product/Service Name",
	"Description",
	"Quantity",
	"Unit",
	"Rate",
	"Error",
}

// utf8BOM makes spreadsheet tools detect UTF-8 (umlauts in client names).
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Service turns batch reports into downloadable spreadsheets.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Rows flattens a report: one row per product, one row for documents without
// products, one row carrying the error for failed documents.
func Rows(rep results.BatchReport) [][]string {
	var rows [][]string
	for _, o := range rep.Outcomes {
		if o.Analysis == nil {
			rows = append(rows, []string{o.FileName, o.Status, "", "", "", "", "", "", "", "", "", "", o.Error})
			continue
		}
		a := o.Analysis
		base := []string{o.FileName, o.Status, a.ClientName, a.ContractType, a.StartDate, a.EndDate, a.Summary}
		if len(a.ProductsServices) == 0 {
			rows = append(rows, append(append([]string{}, base...), "", "", "", "", "", o.Error))
			continue
		}
		for _, p := range a.ProductsServices {
			row := append([]string{}, base...)
			row = append(row, p.Name, p.Description, p.Quantity, p.Unit, p.Rate, o.Error)
			rows = append(rows, row)
		}
	}
	return rows
}

// BatchXLSX returns an XLSX workbook (as bytes) for a batch report.
func (s *Service) BatchXLSX(rep results.BatchReport) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close", "error", err)
		}
	}()
	const sheet = "Contracts"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	rows := Rows(rep)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if c == 6 {
				v = truncate(v, 500) // summary
			}
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 32) // file
	_ = f.SetColWidth(sheet, "B", "B", 10) // status
	_ = f.SetColWidth(sheet, "C", "D", 26) // client, type
	_ = f.SetColWidth(sheet, "E", "F", 16) // dates
	_ = f.SetColWidth(sheet, "G", "G", 60) // summary
	_ = f.SetColWidth(sheet, "H", "I", 32) // product, description
	_ = f.SetColWidth(sheet, "J", "L", 12) // qty, unit, rate
	_ = f.SetColWidth(sheet, "M", "M", 48) // error

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"batch_id", rep.ID,
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// BatchCSV returns a semicolon-separated CSV with a UTF-8 BOM.
func (s *Service) BatchCSV(rep results.BatchReport) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	rows := Rows(rep)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("csv write: %w", err)
	}
	s.logger.Info("export.csv.ok", "batch_id", rep.ID, "rows", len(rows))
	return buf.Bytes(), nil
}

// Batch dispatches on format and returns the bytes plus a content type.
func (s *Service) Batch(rep results.BatchReport, format string) ([]byte, string, error) {
	switch format {
	case FormatXLSX:
		b, err := s.BatchXLSX(rep)
		return b, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	case FormatCSV:
		b, err := s.BatchCSV(rep)
		return b, "text/csv; charset=utf-8", err
	default:
		return nil, "", fmt.Errorf("unsupported export format %q", format)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
