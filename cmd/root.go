package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rorical/RoriKB/internal/api"
	"github.com/Rorical/RoriKB/internal/app"
	"github.com/Rorical/RoriKB/internal/config"
	"github.com/Rorical/RoriKB/internal/logging"
)

// interactiveAnnotation marks commands that hand the terminal to the UI.
const interactiveAnnotation = "interactive"

var (
	profileName string
	verbose     bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "rorikb",
	Short: "Chat with your FAQ knowledge base",
	Long: `RoriKB is a terminal client for a retrieval-augmented FAQ assistant.

Upload a CSV of questions and answers, then ask away: answers stream in
as rendered Markdown. Run without arguments to start the interactive chat.`,
	Annotations:   map[string]string{interactiveAnnotation: "true"},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive UI owns the terminal, so it logs to a file.
		path := ""
		if cmd.Annotations[interactiveAnnotation] == "true" {
			var err error
			if path, err = config.LogPath(); err != nil {
				return fmt.Errorf("failed to get log path: %w", err)
			}
		}

		l, err := logging.New(path, verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the chat application
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runChat(cfg)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "Profile to use instead of the active one")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(profileCmd)
}

// loadConfig loads the config and applies --profile for this run only.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if profileName != "" {
		if err := cfg.Use(profileName); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadBackend is loadConfig plus a backend for the active profile.
func loadBackend() (*config.Config, api.Backend, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("profile %q: %w", cfg.ActiveProfile, err)
	}
	backend, err := app.NewBackend(cfg.Current(), logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, backend, nil
}

func runChat(cfg *config.Config) error {
	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer application.Stop()

	if err := application.Start(); err != nil {
		return fmt.Errorf("application error: %w", err)
	}
	return nil
}
