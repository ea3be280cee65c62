package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"datalens/internal/addons"
	"datalens/internal/api"
	"datalens/internal/auth"
	"datalens/internal/chat"
	"datalens/internal/config"
	"datalens/internal/dataset"
	"datalens/internal/events"
	"datalens/internal/history"
	"datalens/internal/logging"
	"datalens/internal/storage"
	"datalens/internal/store"
	"datalens/internal/story"
)

const addonNamespace = "addons"

var (
	cfg     *config.Config
	logger  *zap.Logger
	st      *store.Store
	bus     *events.Bus
	bridge  *auth.Bridge
	client  *api.Client
	tracker *dataset.Tracker
	hist    *history.Cache
	sel     *addons.Selection
	stories *story.Cache
	chatSvc *chat.Service
)

var rootCmd = &cobra.Command{
	Use:   "datalens",
	Short: "Terminal client for the DataLens analytics backend",
	Long: `Upload datasets, chat with them, review the auto-generated dashboard
and compose custom reports from the terminal.

Quick start:
  datalens upload sales.csv        # upload and activate a dataset
  datalens dataset show            # metadata and preview rows
  datalens chat ask "top regions?" # ask a question about the data
  datalens report show             # the custom report canvas
  datalens report export --format pdf -o report.pdf`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdown()
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		shutdown()
		os.Exit(1)
	}
}

func initApp() error {
	_ = godotenv.Load(".env")

	cfg = config.New()
	logger = logging.New(cfg.LogFilePath, cfg.Debug)

	var err error
	st, err = store.New(cfg.StateDir, logger)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}

	bus = events.NewBus()
	bridge = auth.NewBridge()
	if cfg.AccessToken != "" {
		bridge.SetSession(&oauth2.Token{AccessToken: cfg.AccessToken})
	} else {
		var tok oauth2.Token
		if st.Get(authNamespace, sessionKey, &tok) && tok.AccessToken != "" {
			bridge.SetSession(&tok)
		}
	}

	client = api.NewClient(cfg.APIBaseURL, bridge, cfg.RequestTimeout, logger)
	tracker = dataset.NewTracker(st, bus, logger)
	hist = history.NewCache(st, logger)
	stories = story.NewCache(st)

	sel = addons.NewSelection()
	var active []string
	if st.Get(addonNamespace, "active", &active) {
		for _, id := range active {
			sel.Toggle(id)
		}
	}

	chatSvc = chat.NewService(client, hist, sel, st, cfg.SuggestionCount, logger)
	if rec, err := storage.NewFileRecorder(cfg.TranscriptPath); err != nil {
		logger.Warn("transcript recorder disabled", zap.Error(err))
	} else {
		chatSvc.WithRecorder(rec)
	}
	return nil
}

func shutdown() {
	if st != nil && sel != nil {
		st.Set(addonNamespace, "active", sel.Active())
	}
	if bus != nil {
		_ = bus.Close()
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

// requireDataset resolves the active dataset or fails with a hint. All
// dataset-bound surfaces sit behind the session guard.
func requireDataset() (string, error) {
	if err := requireAuth(auth.DashboardPath); err != nil {
		return "", err
	}
	if !tracker.HasActiveDataset() {
		return "", fmt.Errorf("no active dataset; run 'datalens upload <file>' first")
	}
	return tracker.ActiveFileID(), nil
}

func init() {
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(storyCmd)
	rootCmd.AddCommand(reportCmd)
}
