package export

import (
	"bytes"
	"encoding/json"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"datalens/internal/api"
)

func sampleReport() *api.Report {
	chartData, _ := json.Marshal(api.StructuredChart{
		Title:     "Sales by region",
		ChartType: "bar",
		X:         "region",
		Y:         "sales",
		Data: []api.ChartPoint{
			{X: "north", Y: 120.0},
			{X: "south", Y: 80.0},
		},
	})
	kpiData, _ := json.Marshal(map[string]any{
		"title":       "Total rows",
		"value":       1042,
		"description": "after cleaning",
	})
	return &api.Report{
		ReportID:  "r1",
		Title:     "My Custom Report",
		CreatedAt: "2025-06-01T10:00:00Z",
		Tiles: []api.Tile{
			{TileID: "t1", Type: api.TileKPI, Title: "Total rows", Data: kpiData},
			{TileID: "t2", Type: api.TileChart, Title: "Sales by region", ChartType: "bar", Data: chartData},
		},
	}
}

func TestNewExporterFormats(t *testing.T) {
	for _, format := range []string{"json", "yaml", "yml", "png", "pdf"} {
		exp, err := NewExporter(format)
		require.NoError(t, err, format)
		require.NotNil(t, exp, format)
	}

	_, err := NewExporter("docx")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported format")
}

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONExporter{}).Export(sampleReport(), &buf))

	var round api.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &round))
	require.Equal(t, "r1", round.ReportID)
	require.Len(t, round.Tiles, 2)
	require.True(t, strings.HasPrefix(buf.String(), "{\n  "), "expected indented output")
}

func TestYAMLExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLExporter{}).Export(sampleReport(), &buf))

	var round map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &round))
	require.Equal(t, "My Custom Report", round["title"])
}

func TestPNGExportRendersChartTiles(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PNGExporter{}).Export(sampleReport(), &buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, chartWidth, img.Bounds().Dx())
	require.Equal(t, chartHeight, img.Bounds().Dy())
}

func TestPNGExportNothingToRender(t *testing.T) {
	report := &api.Report{ReportID: "r1", Title: "Empty", Tiles: []api.Tile{
		{TileID: "t1", Type: api.TileText, Title: "Note", Data: json.RawMessage(`"hello"`)},
	}}
	var buf bytes.Buffer
	err := (&PNGExporter{}).Export(report, &buf)
	require.ErrorIs(t, err, ErrNothingToRender)
}

func TestPDFExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PDFExporter{}).Export(sampleReport(), &buf))
	require.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
}

func TestTileChartFromBarePoints(t *testing.T) {
	data, _ := json.Marshal([]api.ChartPoint{{X: "a", Y: 1.0}})
	tile := api.Tile{TileID: "t1", Type: api.TileChart, Title: "Counts", ChartType: "bar", Data: data}

	sc, err := tileChart(tile)
	require.NoError(t, err)
	require.Equal(t, "Counts", sc.Title)
	require.Equal(t, "bar", sc.ChartType)
	require.Len(t, sc.Data, 1)
}

func TestRenderChartRejectsNonNumeric(t *testing.T) {
	sc := &api.StructuredChart{Title: "Bad", ChartType: "bar", Data: []api.ChartPoint{
		{X: "a", Y: "not-a-number-at-all"},
	}}
	_, err := renderChart(sc)
	require.Error(t, err)
}
