package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"datalens/internal/addons"
	"datalens/internal/api"
	"datalens/internal/auth"
	"datalens/internal/dictation"
)

var chatUseVoice bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the active dataset",
}

var chatAskCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the active dataset",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := requireDataset()
		if err != nil {
			return err
		}

		var question string
		if chatUseVoice {
			rec := dictation.Unsupported{}
			if _, err := rec.Start(nil, nil); err != nil {
				return err
			}
		} else {
			if len(args) == 0 {
				return fmt.Errorf("pass a question or use --voice")
			}
			question = args[0]
		}

		msg, err := chatSvc.Ask(cmd.Context(), fileID, question)
		if err != nil {
			// The fallback answer is already on the transcript.
			fmt.Println(msg.Content)
			return err
		}

		printMessage(msg)

		if suggestions, err := chatSvc.Suggestions(cmd.Context(), fileID); err == nil && len(suggestions) > 0 {
			fmt.Println(dimStyle.Render("\nYou could ask next:"))
			for _, s := range suggestions {
				fmt.Println(dimStyle.Render("  - " + s))
			}
		}
		return nil
	},
}

var chatReplCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive chat session with the active dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := requireDataset()
		if err != nil {
			return err
		}

		// Long-lived session: keep the token fresh while the REPL runs.
		refresher := auth.NewRefresher(bridge, client.RefreshSession, cfg.RefreshInterval, logger)
		if err := refresher.Start(); err != nil {
			return err
		}
		defer refresher.Stop()

		fmt.Println(dimStyle.Render("Chatting with " + tracker.ActiveFileName() + ". /clear resets, /quit exits."))
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			switch line {
			case "":
				continue
			case "/quit", "/exit":
				return nil
			case "/clear":
				chatSvc.Clear(fileID)
				fmt.Println("Chat cleared.")
				continue
			}

			msg, err := chatSvc.Ask(cmd.Context(), fileID, line)
			if err != nil {
				fmt.Println(errorStyle.Render(msg.Content))
				continue
			}
			printMessage(msg)
		}
		return scanner.Err()
	},
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the chat log for the active dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := requireDataset()
		if err != nil {
			return err
		}
		msgs := chatSvc.Messages(fileID)
		if len(msgs) == 0 {
			fmt.Println("No messages yet.")
			return nil
		}
		for _, m := range msgs {
			printMessage(m)
		}
		return nil
	},
}

var chatClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the chat log and reset add-ons for the active dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		fileID, err := requireDataset()
		if err != nil {
			return err
		}
		chatSvc.Clear(fileID)
		fmt.Println("Chat cleared.")
		return nil
	},
}

var chatAddonsCmd = &cobra.Command{
	Use:   "addons [toggle <name>]",
	Short: "List or toggle chat add-ons",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 2 && args[0] == "toggle" {
			known := false
			for _, id := range addons.Known {
				if id == args[1] {
					known = true
				}
			}
			if !known {
				return fmt.Errorf("unknown add-on %q (known: %s)", args[1], strings.Join(addons.Known, ", "))
			}
			if sel.Toggle(args[1]) {
				fmt.Println(valueStyle.Render(args[1]), "enabled")
			} else {
				fmt.Println(args[1], "disabled")
			}
			return nil
		}
		if len(args) != 0 {
			return fmt.Errorf("usage: datalens chat addons [toggle <name>]")
		}
		for _, id := range addons.Known {
			marker := "off"
			if sel.IsActive(id) {
				marker = valueStyle.Render("on")
			}
			fmt.Printf("%-10s %s\n", id, marker)
		}
		return nil
	},
}

func printMessage(m api.ChatMessage) {
	role := headerStyle.Render("you")
	if m.Role == "assistant" {
		role = titleStyle.Render("datalens")
	}
	fmt.Printf("%s %s\n", role, m.Content)
	if m.StructuredChart != nil {
		fmt.Println(dimStyle.Render(fmt.Sprintf("  [%s chart: %s]", m.StructuredChart.ChartType, m.StructuredChart.Title)))
	} else if len(m.Chart) > 0 {
		fmt.Println(dimStyle.Render(fmt.Sprintf("  [%s chart]", m.ChartType)))
	}
}

func init() {
	chatAskCmd.Flags().BoolVar(&chatUseVoice, "voice", false, "Dictate the question instead of typing it")
	chatCmd.AddCommand(chatAskCmd)
	chatCmd.AddCommand(chatReplCmd)
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatClearCmd)
	chatCmd.AddCommand(chatAddonsCmd)
}
