package reports

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

var header = []string{"Employee #", "Name", "Clock in", "Clock out", "Breaks", "Break min", "Worked min"}

func clockText(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("15:04")
}

func rowCells(r Row) []string {
	return []string{
		strconv.FormatInt(r.EmployeeNumber, 10),
		r.EmployeeName,
		clockText(r.ClockIn),
		clockText(r.ClockOut),
		strconv.Itoa(r.Breaks),
		strconv.Itoa(r.BreakMinutes),
		strconv.Itoa(r.WorkedMinutes),
	}
}

func RenderPDF(report Report) ([]byte, error) {
	widths := []float64{25, 60, 25, 25, 18, 20, 22}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Attendance %s", report.Date))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, report.CompanyName)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 243, 255)
	for i, h := range header {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range report.Rows {
		for i, c := range rowCells(r) {
			align := "L"
			if i != 1 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(report.Rows) == 0 {
		pdf.Cell(0, 8, "No attendance recorded.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func RenderXLSX(report Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Attendance"
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheet, "A1", &[]any{report.CompanyName, report.Date}); err != nil {
		return nil, err
	}
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A3", &headerRow); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A3", "G3", headerStyle); err != nil {
		return nil, err
	}

	for i, r := range report.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return nil, err
		}
		values := []any{
			r.EmployeeNumber, r.EmployeeName, clockText(r.ClockIn), clockText(r.ClockOut),
			r.Breaks, r.BreakMinutes, r.WorkedMinutes,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(sheet, "B", "B", 28); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
