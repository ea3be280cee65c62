package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"

	"datalens/internal/api"
)

const (
	chartWidth  = 640
	chartHeight = 360
)

// tileChart extracts the chart payload embedded in a chart tile. Tiles store
// either a full structured chart or just its data points.
func tileChart(t api.Tile) (*api.StructuredChart, error) {
	if len(t.Data) == 0 {
		return nil, fmt.Errorf("tile %s: no chart data", t.TileID)
	}
	var sc api.StructuredChart
	if err := json.Unmarshal(t.Data, &sc); err != nil || len(sc.Data) == 0 {
		var points []api.ChartPoint
		if err := json.Unmarshal(t.Data, &points); err != nil || len(points) == 0 {
			return nil, fmt.Errorf("tile %s: unrecognized chart data", t.TileID)
		}
		sc = api.StructuredChart{Data: points}
	}
	if sc.Title == "" {
		sc.Title = t.Title
	}
	if sc.ChartType == "" {
		sc.ChartType = t.ChartType
	}
	return &sc, nil
}

// renderChart rasterizes a structured chart to a PNG-backed image.
func renderChart(sc *api.StructuredChart) (image.Image, error) {
	values, ys := chartValues(sc.Data)
	if len(values) == 0 {
		return nil, fmt.Errorf("chart %q: no numeric data points", sc.Title)
	}

	var buf bytes.Buffer
	var err error
	switch sc.ChartType {
	case "pie":
		pie := chart.PieChart{
			Title:  sc.Title,
			Width:  chartWidth,
			Height: chartHeight,
			Values: values,
		}
		err = pie.Render(chart.PNG, &buf)
	case "line", "scatter":
		xs := make([]float64, len(ys))
		for i := range xs {
			xs[i] = float64(i)
		}
		graph := chart.Chart{
			Title:  sc.Title,
			Width:  chartWidth,
			Height: chartHeight,
			Series: []chart.Series{
				chart.ContinuousSeries{Name: sc.Y, XValues: xs, YValues: ys},
			},
		}
		err = graph.Render(chart.PNG, &buf)
	default:
		bar := chart.BarChart{
			Title:    sc.Title,
			Width:    chartWidth,
			Height:   chartHeight,
			BarWidth: 40,
			Bars:     values,
		}
		err = bar.Render(chart.PNG, &buf)
	}
	if err != nil {
		return nil, fmt.Errorf("render chart %q: %w", sc.Title, err)
	}
	return png.Decode(&buf)
}

func chartValues(points []api.ChartPoint) ([]chart.Value, []float64) {
	values := make([]chart.Value, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		y, ok := asFloat(p.Y)
		if !ok {
			continue
		}
		values = append(values, chart.Value{Label: fmt.Sprint(p.X), Value: y})
		ys = append(ys, y)
	}
	// go-chart needs at least two points for a continuous series.
	if len(values) == 1 {
		values = append(values, values[0])
		ys = append(ys, ys[0])
	}
	return values, ys
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
