package story

import (
	"fmt"
	"strings"
	"time"

	"datalens/internal/api"
)

// FromOverview writes a plain-language narrative from the dashboard overview.
func FromOverview(o *api.Overview) DataStory {
	var b strings.Builder
	for _, k := range o.KPIs {
		fmt.Fprintf(&b, "%s is %v", k.Title, k.Value)
		if k.Description != "" {
			fmt.Fprintf(&b, " (%s)", k.Description)
		}
		b.WriteString(". ")
	}
	if dh := o.DataHealth; dh != nil {
		fmt.Fprintf(&b, "The dataset holds %d rows", dh.TotalRows)
		if dh.DuplicateRows > 0 {
			fmt.Fprintf(&b, ", %d of them duplicates", dh.DuplicateRows)
		}
		b.WriteString(". ")
		for _, n := range dh.NullAnalysis {
			if n.NullCount == 0 {
				continue
			}
			fmt.Fprintf(&b, "Column %s is missing %d values (%.1f%%). ", n.Column, n.NullCount, n.NullPercentage)
		}
	}
	return DataStory{
		Story:       strings.TrimSpace(b.String()),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
