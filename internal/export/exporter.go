// Package export writes reports to files in several formats. JSON and YAML
// carry the full report structure; PNG and PDF render the tiles.
package export

import (
	"errors"
	"fmt"
	"io"

	"datalens/internal/api"
)

var ErrNothingToRender = errors.New("export: report has no renderable tiles")

// Exporter writes one report to w in a single format.
type Exporter interface {
	Export(report *api.Report, w io.Writer) error
	Extension() string
}

// NewExporter creates an exporter for the given format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "png":
		return &PNGExporter{}, nil
	case "pdf":
		return &PDFExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, png, pdf)", format)
	}
}
