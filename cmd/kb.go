package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rorical/RoriKB/internal/api"
	"github.com/Rorical/RoriKB/internal/core"
)

var resetYes bool

var uploadCmd = &cobra.Command{
	Use:   "upload <file.csv>",
	Short: "Upload a CSV as the new knowledge base",
	Long:  `Upload a CSV file with "question" and "answer" columns. It replaces the current knowledge base.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, backend, err := loadBackend()
		if err != nil {
			return err
		}

		path := args[0]
		file, err := api.OpenCSV(path)
		if err != nil {
			return err
		}
		defer file.Close()

		result, err := backend.UploadCSV(cmd.Context(), filepath.Base(path), file)
		if err != nil {
			return actionFailed("upload", "Upload failed", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "CSV uploaded, %d records\n", result.DocumentCount)
		if result.Message != "" {
			fmt.Fprintln(out, result.Message)
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:     "reset",
	Aliases: []string{"delete"},
	Short:   "Delete the knowledge base",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, backend, err := loadBackend()
		if err != nil {
			return err
		}

		if !resetYes {
			prompt := promptui.Prompt{
				Label:     core.ConfirmDeletePrompt,
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled")
				return nil
			}
		}

		if _, err := backend.DeleteCSV(cmd.Context()); err != nil {
			return actionFailed("delete", "Delete failed", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Knowledge base reset")
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Rebuild the vector database from the stored CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, backend, err := loadBackend()
		if err != nil {
			return err
		}

		result, err := backend.ReloadVectorDB(cmd.Context())
		if err != nil {
			return actionFailed("reload", "Reload failed", err)
		}
		msg := result.Message
		if msg == "" {
			msg = "Vector database reloaded"
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

// actionFailed logs err and words it the way the chat UI does.
func actionFailed(action, prefix string, err error) error {
	logger.Error(action+" failed", zap.String("action", action), zap.Error(err))

	switch {
	case errors.Is(err, api.ErrUnsupported):
		return fmt.Errorf("%s: this profile has no knowledge base", prefix)
	case api.IsRejection(err):
		detail := api.DetailOf(err)
		if detail == "" {
			detail = "unknown error"
		}
		return fmt.Errorf("%s: %s", prefix, detail)
	}
	return fmt.Errorf("%s, please check the server connection: %w", prefix, err)
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(reloadCmd)
}
