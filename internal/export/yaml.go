package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"datalens/internal/api"
)

// YAMLExporter writes the report as YAML.
type YAMLExporter struct{}

func (e *YAMLExporter) Export(report *api.Report, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(report)
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}
