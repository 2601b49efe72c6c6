package report

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"example.com/pdbgate/internal/check"
)

// SaveMetadataPDF renders an extraction into a PDF document.
func SaveMetadataPDF(ext Extraction, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Metadata Report", false)
	pdf.SetAuthor("pdbctl", false)
	pdf.SetCreator("pdbctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Metadata Report")
	addDigestQR(pdf, ext.Sha256)
	addSourceSection(pdf, ext)
	addFieldsSection(pdf, ext)
	addFindingsSection(pdf, ext.Checks.Findings)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addDigestQR(pdf *gofpdf.Fpdf, digest string) {
	if digest == "" {
		return
	}
	png, err := DigestToQR(digest, 192)
	if err != nil {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("digest-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("digest-qr", 168, 12, 28, 28, false, opts, 0, "")
}

func addSourceSection(pdf *gofpdf.Fpdf, ext Extraction) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Source")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	format := ""
	if ext.Result != nil {
		format = ext.Result.Format
	}
	items := []struct {
		label string
		value string
	}{
		{label: "File", value: ext.File},
		{label: "Format", value: format},
		{label: "Size", value: strconv.FormatInt(ext.Size, 10) + " bytes"},
		{label: "SHA-256", value: ext.Sha256},
		{label: "Generated", value: time.Now().UTC().Format(time.RFC3339)},
	}
	for _, item := range items {
		if item.value == "" {
			continue
		}
		pdf.CellFormat(40, 6, item.label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}
	pdf.Ln(4)
}

func addFieldsSection(pdf *gofpdf.Fpdf, ext Extraction) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Fields")
	pdf.Ln(8)

	if ext.Result == nil || len(ext.Result.Fields) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, "No fields decoded.")
		pdf.Ln(8)
		return
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, name := range sortedFieldNames(ext.Result) {
		pdf.CellFormat(55, 6, name, "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 6, renderValue(ext.Result.Fields[name]), "", "L", false)
	}
	pdf.Ln(4)
}

func addFindingsSection(pdf *gofpdf.Fpdf, findings []check.Diagnostic) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Findings")
	pdf.Ln(8)

	if len(findings) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, "No findings.")
		pdf.Ln(8)
		return
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, d := range findings {
		line := fmt.Sprintf("[%s] %s: %s", d.Severity, d.CheckId, d.Message)
		pdf.MultiCell(0, 6, line, "", "L", false)
	}
}
