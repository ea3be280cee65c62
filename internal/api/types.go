package api

import "encoding/json"

// Wire types for the analytics backend. Field names follow the backend's
// snake_case JSON contract.

// DatasetMeta is returned by upload and by the file metadata endpoint.
type DatasetMeta struct {
	FileID      string           `json:"file_id"`
	Filename    string           `json:"filename"`
	Rows        int              `json:"rows"`
	Columns     int              `json:"columns"`
	ColumnNames []string         `json:"column_names"`
	Preview     []map[string]any `json:"preview"`
}

// CleaningSuggestion is one AI-proposed cleaning action.
type CleaningSuggestion struct {
	Action string `json:"action"`
	Column string `json:"column,omitempty"`
	Value  any    `json:"value,omitempty"`
	Reason string `json:"reason"`
}

// StructuredChart is the chart payload produced by the charts add-on.
type StructuredChart struct {
	Title     string       `json:"title"`
	ChartType string       `json:"chart_type"` // bar, line, pie or table
	X         string       `json:"x"`
	Y         string       `json:"y"`
	Data      []ChartPoint `json:"data"`
}

type ChartPoint struct {
	X any `json:"x"`
	Y any `json:"y"`
}

// ChatMessage is one entry of a dataset's chat log. Chart holds an opaque
// renderer payload for legacy answers; StructuredChart is the typed form.
type ChatMessage struct {
	Role            string           `json:"role"` // user or assistant
	Content         string           `json:"content"`
	Chart           json.RawMessage  `json:"chart,omitempty"`
	ChartType       string           `json:"chart_type,omitempty"`
	StructuredChart *StructuredChart `json:"structured_chart,omitempty"`
}

// ChatAnswer is the chat query response.
type ChatAnswer struct {
	Answer    string           `json:"answer"`
	ChartType string           `json:"chart_type,omitempty"`
	Chart     *StructuredChart `json:"chart,omitempty"`
	ChartData []map[string]any `json:"chart_data,omitempty"`
}

// Tile is a single renderable unit placed on a report.
type Tile struct {
	TileID    string          `json:"tile_id"`
	Type      string          `json:"type"` // kpi, chart, table or text
	Title     string          `json:"title"`
	Data      json.RawMessage `json:"data,omitempty"`
	ChartType string          `json:"chart_type,omitempty"` // bar, line, pie or scatter
	Config    json.RawMessage `json:"config,omitempty"`
	Source    *TileSource     `json:"source,omitempty"`
}

const (
	TileKPI   = "kpi"
	TileChart = "chart"
	TileTable = "table"
	TileText  = "text"
)

// TileSource records which dataset and query produced a tile. FileID is the
// anchor of the dataset-isolation invariant.
type TileSource struct {
	FileID string `json:"file_id,omitempty"`
	Query  string `json:"query,omitempty"`
}

// Report is a named, ordered collection of tiles belonging to one dataset.
type Report struct {
	ReportID  string          `json:"report_id"`
	Title     string          `json:"title"`
	CreatedAt string          `json:"created_at"`
	Tiles     []Tile          `json:"tiles"`
	Layout    json.RawMessage `json:"layout,omitempty"`
}

// ReportUpdate carries a partial report update; nil fields are left untouched.
type ReportUpdate struct {
	Tiles *[]Tile `json:"tiles,omitempty"`
	Title *string `json:"title,omitempty"`
}

// Overview is the auto-generated dashboard for a dataset.
type Overview struct {
	KPIs          []KPI           `json:"kpis"`
	Trends        []OverviewChart `json:"trends"`
	Distributions []OverviewChart `json:"distributions"`
	DataHealth    *DataHealth     `json:"data_health,omitempty"`
}

type KPI struct {
	Title       string `json:"title"`
	Value       any    `json:"value"`
	Description string `json:"description,omitempty"`
}

type OverviewChart struct {
	Title     string           `json:"title"`
	ChartType string           `json:"chart_type"`
	Data      []map[string]any `json:"data"`
	Config    json.RawMessage  `json:"config,omitempty"`
}

type DataHealth struct {
	TotalRows     int          `json:"total_rows"`
	DuplicateRows int          `json:"duplicate_rows"`
	NullAnalysis  []NullColumn `json:"null_analysis_top_5,omitempty"`
}

type NullColumn struct {
	Column         string  `json:"column"`
	NullCount      int     `json:"null_count"`
	NullPercentage float64 `json:"null_percentage"`
}
