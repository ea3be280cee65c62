package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"datalens/internal/api"
)

var cleanApplyAll bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "AI-assisted cleaning of the active dataset",
}

var cleanSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "List proposed cleaning actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := requireDataset()
		if err != nil {
			return err
		}

		suggestions, err := client.CleanSuggest(cmd.Context(), fileID)
		if err != nil {
			return fmt.Errorf("fetch cleaning suggestions: %w", err)
		}
		if len(suggestions) == 0 {
			fmt.Println("No cleaning suggestions; the data looks good.")
			return nil
		}

		for i, s := range suggestions {
			fmt.Printf("%s %s", headerStyle.Render(fmt.Sprintf("[%d]", i+1)), titleStyle.Render(s.Action))
			if s.Column != "" {
				fmt.Printf(" on %s", valueStyle.Render(s.Column))
			}
			fmt.Println()
			if s.Reason != "" {
				fmt.Println("   " + dimStyle.Render(s.Reason))
			}
		}
		fmt.Println(dimStyle.Render("\nApply with: datalens clean apply <numbers...> (or --all)"))
		return nil
	},
}

var cleanApplyCmd = &cobra.Command{
	Use:   "apply [numbers...]",
	Short: "Apply selected cleaning actions, producing a new dataset version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := requireDataset()
		if err != nil {
			return err
		}
		if !cleanApplyAll && len(args) == 0 {
			return fmt.Errorf("pass suggestion numbers or --all")
		}

		suggestions, err := client.CleanSuggest(cmd.Context(), fileID)
		if err != nil {
			return fmt.Errorf("fetch cleaning suggestions: %w", err)
		}

		selected := suggestions
		if !cleanApplyAll {
			selected = make([]api.CleaningSuggestion, 0, len(args))
			for _, a := range args {
				n, err := strconv.Atoi(a)
				if err != nil || n < 1 || n > len(suggestions) {
					return fmt.Errorf("invalid suggestion number %q", a)
				}
				selected = append(selected, suggestions[n-1])
			}
		}
		if len(selected) == 0 {
			return fmt.Errorf("nothing to apply")
		}

		newFileID, err := client.CleanApply(cmd.Context(), fileID, selected)
		if err != nil {
			return fmt.Errorf("apply cleaning actions: %w", err)
		}

		// The cleaned copy becomes the active dataset.
		tracker.SetActiveDataset(newFileID, tracker.ActiveFileName())

		fmt.Printf("Applied %d actions.\n", len(selected))
		fmt.Println("Active dataset is now", idStyle.Render(newFileID))
		return nil
	},
}

func init() {
	cleanApplyCmd.Flags().BoolVar(&cleanApplyAll, "all", false, "Apply every suggestion")
	cleanCmd.AddCommand(cleanSuggestCmd)
	cleanCmd.AddCommand(cleanApplyCmd)
}
