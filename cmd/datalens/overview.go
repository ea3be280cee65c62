package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"datalens/internal/api"
)

func printChartList(name string, charts []api.OverviewChart) {
	if len(charts) == 0 {
		return
	}
	fmt.Println(headerStyle.Render("\n" + name))
	for _, c := range charts {
		fmt.Printf("  %s %s\n", titleStyle.Render(c.Title), dimStyle.Render("("+c.ChartType+", "+fmt.Sprint(len(c.Data))+" points)"))
	}
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show the auto-generated dashboard for the active dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := requireDataset()
		if err != nil {
			return err
		}

		o, err := client.DashboardOverview(cmd.Context(), fileID)
		if err != nil {
			return fmt.Errorf("fetch overview: %w", err)
		}

		if len(o.KPIs) > 0 {
			fmt.Println(headerStyle.Render("Key figures"))
			for _, k := range o.KPIs {
				fmt.Printf("  %s %s", titleStyle.Render(k.Title+":"), valueStyle.Render(fmt.Sprint(k.Value)))
				if k.Description != "" {
					fmt.Print(" ", dimStyle.Render(k.Description))
				}
				fmt.Println()
			}
		}

		printChartList("Trends", o.Trends)
		printChartList("Distributions", o.Distributions)

		if dh := o.DataHealth; dh != nil {
			fmt.Println(headerStyle.Render("\nData health"))
			fmt.Printf("  %d rows, %d duplicates\n", dh.TotalRows, dh.DuplicateRows)
			for _, n := range dh.NullAnalysis {
				fmt.Printf("  %s: %d nulls (%.1f%%)\n", n.Column, n.NullCount, n.NullPercentage)
			}
		}

		if stories.IsEnabled(fileID) {
			if s, ok := stories.GetStory(fileID); ok {
				fmt.Println(headerStyle.Render("\nData story"))
				fmt.Println("  " + s.Story)
			}
		}
		return nil
	},
}
