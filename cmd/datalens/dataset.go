package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"datalens/internal/dataset"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a dataset and make it the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth("/upload"); err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		meta, err := client.Upload(cmd.Context(), filepath.Base(args[0]), f)
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}

		tracker.SetActiveDataset(meta.FileID, meta.Filename)
		// A new dataset starts with a clean add-on selection.
		sel.Reset()

		fmt.Println(titleStyle.Render(meta.Filename), idStyle.Render(meta.FileID))
		fmt.Printf("%d rows, %d columns\n", meta.Rows, meta.Columns)
		return nil
	},
}

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Inspect or clear the active dataset",
}

var datasetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show metadata and preview rows for the active dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireDataset(); err != nil {
			return err
		}

		loader := dataset.NewLoader(tracker, client, logger)
		meta, err := loader.Load(cmd.Context(), cfg.PreviewRows)
		if err != nil {
			if errors.Is(err, dataset.ErrNoDataset) {
				return fmt.Errorf("the active dataset no longer exists on the backend")
			}
			return err
		}

		fmt.Println(titleStyle.Render(meta.Filename), idStyle.Render(meta.FileID))
		fmt.Printf("%d rows, %d columns\n\n", meta.Rows, meta.Columns)
		printPreview(meta.ColumnNames, meta.Preview)
		return nil
	},
}

var datasetClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the active dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker.ClearActiveDataset()
		sel.Reset()
		fmt.Println("Active dataset cleared.")
		return nil
	},
}

func printPreview(columns []string, rows []map[string]any) {
	if len(columns) == 0 || len(rows) == 0 {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render(strings.Join(columns, "\t")))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = fmt.Sprint(row[col])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
}

func init() {
	datasetCmd.AddCommand(datasetShowCmd)
	datasetCmd.AddCommand(datasetClearCmd)
}
