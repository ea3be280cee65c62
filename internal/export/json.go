package export

import (
	"encoding/json"
	"io"

	"datalens/internal/api"
)

// JSONExporter writes the report as pretty-printed JSON.
type JSONExporter struct{}

func (e *JSONExporter) Export(report *api.Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(report)
}

func (e *JSONExporter) Extension() string {
	return "json"
}
