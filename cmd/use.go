package cmd

import (
	"github.com/spf13/cobra"
)

var useCmd = &cobra.Command{
	Use:         "use [profile-name]",
	Short:       "Switch to a profile and start the chat app",
	Long:        `Make the specified profile the active one and immediately start the chat application.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{interactiveAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := switchProfile(args[0])
		if err != nil {
			return err
		}
		return runChat(cfg)
	},
}

func init() {
	rootCmd.AddCommand(useCmd)
}
