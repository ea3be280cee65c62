package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"datalens/internal/api"
	"datalens/internal/export"
	"datalens/internal/report"
)

var (
	tileType      string
	tileTitle     string
	tileData      string
	tileChartType string
	tileQuery     string

	exportFormat string
	exportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compose and export the custom report for the active dataset",
}

func activeCanvas(cmd *cobra.Command) (*report.Canvas, error) {
	fileID, err := requireDataset()
	if err != nil {
		return nil, err
	}
	c := report.NewCanvas(fileID, client, bus, logger)
	if _, err := c.EnsureReport(cmd.Context()); err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	return c, nil
}

var reportShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the report and its tiles in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := activeCanvas(cmd)
		if err != nil {
			return err
		}
		r := c.Report()
		fmt.Println(titleStyle.Render(r.Title), idStyle.Render(r.ReportID))
		tiles := c.VisibleTiles()
		if len(tiles) == 0 {
			fmt.Println(dimStyle.Render("No tiles yet. Add one with 'datalens report add-tile'."))
			return nil
		}
		for i, t := range tiles {
			fmt.Printf("%s %s %s %s\n",
				headerStyle.Render(fmt.Sprintf("[%d]", i+1)),
				valueStyle.Render(t.Type),
				t.Title,
				idStyle.Render(t.TileID))
		}
		return nil
	},
}

var reportAddTileCmd = &cobra.Command{
	Use:   "add-tile",
	Short: "Add a tile to the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := activeCanvas(cmd)
		if err != nil {
			return err
		}

		data, err := readTileData(tileData)
		if err != nil {
			return err
		}
		tile := api.Tile{
			TileID:    uuid.NewString(),
			Type:      tileType,
			Title:     tileTitle,
			Data:      data,
			ChartType: tileChartType,
			Source:    &api.TileSource{FileID: c.FileID(), Query: tileQuery},
		}
		if err := c.AddTile(cmd.Context(), tile); err != nil {
			return fmt.Errorf("add tile: %w", err)
		}
		fmt.Println("Tile added:", idStyle.Render(tile.TileID))
		return nil
	},
}

var reportRemoveTileCmd = &cobra.Command{
	Use:   "remove-tile <tile-id>",
	Short: "Remove a tile from the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := activeCanvas(cmd)
		if err != nil {
			return err
		}
		if err := c.RemoveTile(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("remove tile: %w", err)
		}
		fmt.Println("Tile removed.")
		return nil
	},
}

var reportReorderCmd = &cobra.Command{
	Use:   "reorder <from> <to>",
	Short: "Move a tile to a new position (1-based) and persist the order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err1 := strconv.Atoi(args[0])
		to, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			return fmt.Errorf("positions must be numbers")
		}

		c, err := activeCanvas(cmd)
		if err != nil {
			return err
		}
		if err := c.ReorderLocal(from-1, to-1); err != nil {
			return err
		}
		if err := c.PersistOrder(cmd.Context()); err != nil {
			return fmt.Errorf("persist order: %w (run the command again to retry)", err)
		}
		fmt.Println("Order saved.")
		return nil
	},
}

var reportTitleCmd = &cobra.Command{
	Use:   "title <new-title>",
	Short: "Rename the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := activeCanvas(cmd)
		if err != nil {
			return err
		}
		if err := c.UpdateTitle(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("rename report: %w", err)
		}
		fmt.Println("Report renamed to", titleStyle.Render(args[0]))
		return nil
	},
}

var reportExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the report (json, yaml, png or pdf)",
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		c, err := activeCanvas(cmd)
		if err != nil {
			return err
		}
		r := c.Report()
		// Export only what the dashboard would render.
		r.Tiles = c.VisibleTiles()

		out := exportOutput
		if out == "" {
			out = "report." + exp.Extension()
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := exp.Export(r, f); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
		fmt.Println("Wrote", valueStyle.Render(out))
		return nil
	},
}

// readTileData accepts inline JSON or @path to a JSON file.
func readTileData(s string) (json.RawMessage, error) {
	if s == "" {
		return nil, nil
	}
	raw := []byte(s)
	if strings.HasPrefix(s, "@") {
		b, err := os.ReadFile(s[1:])
		if err != nil {
			return nil, err
		}
		raw = b
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("tile data is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

func init() {
	reportAddTileCmd.Flags().StringVar(&tileType, "type", api.TileChart, "Tile type: kpi, chart, table or text")
	reportAddTileCmd.Flags().StringVar(&tileTitle, "title", "", "Tile title")
	reportAddTileCmd.Flags().StringVar(&tileData, "data", "", "Tile payload as JSON, or @file")
	reportAddTileCmd.Flags().StringVar(&tileChartType, "chart-type", "", "Chart type for chart tiles")
	reportAddTileCmd.Flags().StringVar(&tileQuery, "query", "", "The question that produced this tile")

	reportExportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json, yaml, png or pdf")
	reportExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default report.<ext>)")

	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportAddTileCmd)
	reportCmd.AddCommand(reportRemoveTileCmd)
	reportCmd.AddCommand(reportReorderCmd)
	reportCmd.AddCommand(reportTitleCmd)
	reportCmd.AddCommand(reportExportCmd)
}
