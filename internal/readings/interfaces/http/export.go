package http

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"hatchery-monitor/internal/audit"
	"hatchery-monitor/internal/observability/metrics"
	"hatchery-monitor/internal/readings/application"
	readings "hatchery-monitor/internal/readings/domain"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

const exportTimeLayout = "2006-01-02 15:04:05"

var exportHeader = []string{
	readings.ColumnTimestamp,
	readings.ColumnTemperature,
	readings.ColumnPH,
	readings.ColumnWaterDetected,
	readings.ColumnTimeOfDay,
}

var exportContentTypes = map[string]string{
	FormatCSV:  "text/csv; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:  "application/pdf",
}

// ExportHandler serves filtered readings as a downloadable file.
type ExportHandler struct {
	dashboard *application.Dashboard
	format    string
	audit     audit.Logger
	logger    *log.Logger
}

// NewExportHandler constructs an export handler for format.
func NewExportHandler(dashboard *application.Dashboard, format string, auditLog audit.Logger, logger *log.Logger) (*ExportHandler, error) {
	if dashboard == nil {
		return nil, fmt.Errorf("export handler: nil dashboard")
	}
	if _, ok := exportContentTypes[format]; !ok {
		return nil, fmt.Errorf("export handler: unsupported format %q", format)
	}
	return &ExportHandler{dashboard: dashboard, format: format, audit: auditLog, logger: logger}, nil
}

// ServeHTTP handles GET /api/v1/exports/readings.{csv,xlsx,pdf}.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	query, err := parseReadingsQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, err := h.dashboard.Readings(query)
	if err != nil {
		if errors.Is(err, application.ErrNotReady) {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var body []byte
	switch h.format {
	case FormatCSV:
		body, err = BuildReadingsCSV(view)
	case FormatXLSX:
		body, err = BuildReadingsXLSX(view)
	case FormatPDF:
		body, err = BuildReadingsPDF(view)
	}
	if err != nil {
		metrics.ObserveExport(h.format, metrics.ResultError, time.Since(start))
		if h.logger != nil {
			h.logger.Printf("readings export error: format=%s err=%v", h.format, err)
		}
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport(h.format, metrics.ResultSuccess, time.Since(start))
	recordAudit(r, h.audit, h.logger, "export", view.SnapshotID, map[string]any{
		"format":      h.format,
		"start":       view.Filter.Start.String(),
		"end":         view.Filter.End.String(),
		"time_of_day": view.Filter.TimeOfDay,
		"rows":        view.RowCount,
	})

	w.Header().Set("Content-Type", exportContentTypes[h.format])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(view, h.format)))
	_, _ = w.Write(body)
}

func exportFilename(view application.ReadingsView, format string) string {
	return fmt.Sprintf("readings_%s_%s.%s", view.Filter.Start, view.Filter.End, format)
}

// BuildReadingsCSV renders the filtered readings with the feed's own header.
func BuildReadingsCSV(view application.ReadingsView) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, row := range view.Rows {
		if err := writer.Write(exportRecord(row, view.Filter.Location)); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReadingsXLSX renders a workbook with a filter sheet and a readings sheet.
func BuildReadingsXLSX(view application.ReadingsView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "filter"
	rowsSheet := "readings"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(rowsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Hatchery Readings")
	_ = f.SetCellValue(summarySheet, "A3", "Start")
	_ = f.SetCellValue(summarySheet, "B3", view.Filter.Start.String())
	_ = f.SetCellValue(summarySheet, "A4", "End")
	_ = f.SetCellValue(summarySheet, "B4", view.Filter.End.String())
	_ = f.SetCellValue(summarySheet, "A5", "Time of Day")
	_ = f.SetCellValue(summarySheet, "B5", view.Filter.TimeOfDay)
	_ = f.SetCellValue(summarySheet, "A6", "Rows")
	_ = f.SetCellValue(summarySheet, "B6", view.RowCount)
	_ = f.SetCellValue(summarySheet, "A7", "Fetched")
	_ = f.SetCellValue(summarySheet, "B7", view.FetchedAt.UTC().Format(time.RFC3339))

	for i, name := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(rowsSheet, cell, name)
	}
	for i, row := range view.Rows {
		line := i + 2
		if row.Timestamp != nil {
			_ = f.SetCellValue(rowsSheet, fmt.Sprintf("A%d", line), formatTimestamp(row.Timestamp, view.Filter.Location))
		}
		if row.TemperatureC != nil {
			_ = f.SetCellValue(rowsSheet, fmt.Sprintf("B%d", line), *row.TemperatureC)
		}
		if row.PH != nil {
			_ = f.SetCellValue(rowsSheet, fmt.Sprintf("C%d", line), *row.PH)
		}
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("D%d", line), row.WaterDetected)
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("E%d", line), row.TimeOfDay)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReadingsPDF renders a minimal PDF table of the filtered readings.
func BuildReadingsPDF(view application.ReadingsView) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Hatchery Readings")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Range: %s to %s", view.Filter.Start, view.Filter.End))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Time of Day: %s", view.Filter.TimeOfDay)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Rows: %d", view.RowCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Fetched: %s", view.FetchedAt.UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	widths := []float64{45, 35, 20, 35, 35}
	pdf.SetFont("Arial", "B", 10)
	for i, name := range exportHeader {
		pdf.CellFormat(widths[i], 6, tr(name), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range view.Rows {
		record := exportRecord(row, view.Filter.Location)
		for i, value := range record {
			align := "L"
			if i == 1 || i == 2 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, tr(value), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportRecord(row readings.Reading, loc *time.Location) []string {
	return []string{
		formatTimestamp(row.Timestamp, loc),
		formatFloat(row.TemperatureC),
		formatFloat(row.PH),
		row.WaterDetected,
		row.TimeOfDay,
	}
}

func formatTimestamp(value *time.Time, loc *time.Location) string {
	if value == nil {
		return ""
	}
	ts := *value
	if loc != nil {
		ts = ts.In(loc)
	}
	return ts.Format(exportTimeLayout)
}

func formatFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}
