package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"io"

	"github.com/go-pdf/fpdf"

	"datalens/internal/api"
)

// PDFExporter lays the report out on A4 pages: the title first, then each
// tile in order. Chart tiles are rasterized and embedded, KPI and text tiles
// are written as text.
type PDFExporter struct{}

const (
	pageMargin   = 15.0
	chartWidthMM = 180.0
)

func (e *PDFExporter) Export(report *api.Report, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 10, report.Title, "", "L", false)
	pdf.Ln(4)

	for i, t := range report.Tiles {
		switch t.Type {
		case api.TileChart:
			if err := e.writeChart(pdf, i, t); err != nil {
				return err
			}
		case api.TileKPI:
			e.writeKPI(pdf, t)
		default:
			e.writeText(pdf, t)
		}
		pdf.Ln(6)
	}

	return pdf.Output(w)
}

func (e *PDFExporter) Extension() string {
	return "pdf"
}

func (e *PDFExporter) writeChart(pdf *fpdf.Fpdf, index int, t api.Tile) error {
	sc, err := tileChart(t)
	if err != nil {
		return err
	}
	img, err := renderChart(sc)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode chart tile %s: %w", t.TileID, err)
	}

	name := fmt.Sprintf("tile-%d", index)
	pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, &buf)
	heightMM := chartWidthMM * float64(chartHeight) / float64(chartWidth)
	pdf.ImageOptions(name, pageMargin, pdf.GetY(), chartWidthMM, heightMM, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return nil
}

func (e *PDFExporter) writeKPI(pdf *fpdf.Fpdf, t api.Tile) {
	var kpi struct {
		Title       string `json:"title"`
		Value       any    `json:"value"`
		Description string `json:"description"`
	}
	_ = json.Unmarshal(t.Data, &kpi)
	if kpi.Title == "" {
		kpi.Title = t.Title
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.MultiCell(0, 7, kpi.Title, "", "L", false)
	pdf.SetFont("Helvetica", "", 16)
	pdf.MultiCell(0, 9, fmt.Sprint(kpi.Value), "", "L", false)
	if kpi.Description != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, kpi.Description, "", "L", false)
	}
}

func (e *PDFExporter) writeText(pdf *fpdf.Fpdf, t api.Tile) {
	if t.Title != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 7, t.Title, "", "L", false)
	}
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tileText(t.Data), "", "L", false)
}

func tileText(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Text != "" {
		return body.Text
	}
	return string(data)
}
