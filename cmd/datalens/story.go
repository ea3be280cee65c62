package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"datalens/internal/story"
)

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Data story for the active dataset",
}

var storyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached data story",
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := requireDataset()
		if err != nil {
			return err
		}
		s, ok := stories.GetStory(fileID)
		if !ok {
			return fmt.Errorf("no story yet; run 'datalens story generate'")
		}
		fmt.Println(s.Story)
		fmt.Println(dimStyle.Render("generated " + s.GeneratedAt))
		return nil
	},
}

var storyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build a fresh data story from the dashboard overview",
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := requireDataset()
		if err != nil {
			return err
		}
		o, err := client.DashboardOverview(cmd.Context(), fileID)
		if err != nil {
			return fmt.Errorf("fetch overview: %w", err)
		}
		s := story.FromOverview(o)
		stories.SetStory(fileID, s)
		fmt.Println(s.Story)
		return nil
	},
}

var storyEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Show the data story on the dashboard",
	RunE:  setStoryEnabled(true),
}

var storyDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Hide the data story from the dashboard",
	RunE:  setStoryEnabled(false),
}

func setStoryEnabled(on bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		fileID, err := requireDataset()
		if err != nil {
			return err
		}
		stories.SetEnabled(fileID, on)
		if on {
			fmt.Println("Data story enabled.")
		} else {
			fmt.Println("Data story disabled.")
		}
		return nil
	}
}

var storyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the cached data story",
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := requireDataset()
		if err != nil {
			return err
		}
		stories.ClearStory(fileID)
		fmt.Println("Story cleared.")
		return nil
	},
}

func init() {
	storyCmd.AddCommand(storyShowCmd)
	storyCmd.AddCommand(storyGenerateCmd)
	storyCmd.AddCommand(storyEnableCmd)
	storyCmd.AddCommand(storyDisableCmd)
	storyCmd.AddCommand(storyClearCmd)
}
