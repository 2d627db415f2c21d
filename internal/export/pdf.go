package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// Column widths in mm for an A4 landscape page with 10mm margins.
var pdfColumnWidths = []float64{70, 28, 24, 24, 18, 16, 97}

// RenderProfilePDF renders the profile as a one-table PDF report.
func RenderProfilePDF(profile domain.Profile, now time.Time) ([]byte, error) {
	table := ProfileTable(profile, now)
	if len(table.Headers) != len(pdfColumnWidths) {
		return nil, fmt.Errorf("pdf layout expects %d columns, got %d", len(pdfColumnWidths), len(table.Headers))
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetTitle("Profile "+profile.Employee.FullName(), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, tr(profile.Employee.FullName()), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("Role: %s", profile.Employee.Role),
		fmt.Sprintf("Organization: %s", profile.Employee.OrganizationName),
		fmt.Sprintf("Email: %s", profile.Employee.Email),
		fmt.Sprintf("Assignments: %d  Evaluations: %d", len(profile.Assignments), len(profile.Evaluations)),
	}
	if avg, ok := AverageScore(profile); ok {
		lines = append(lines, fmt.Sprintf("Average score: %.1f", avg))
	}
	for _, line := range lines {
		pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 9)
	for i, header := range table.Headers {
		pdf.CellFormat(pdfColumnWidths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range table.Rows {
		for i, value := range row {
			pdf.CellFormat(pdfColumnWidths[i], 7, tr(truncate(value, pdfColumnWidths[i])), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "I", 7)
	pdf.CellFormat(0, 8, "Generated "+now.UTC().Format(time.RFC3339), "", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// truncate keeps a cell on one line, at about 0.55 characters per mm at 8pt.
func truncate(value string, width float64) string {
	limit := int(width * 0.55)
	runes := []rune(value)
	if limit < 4 || len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
