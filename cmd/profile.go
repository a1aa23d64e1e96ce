package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/RoriKB/internal/api"
	"github.com/Rorical/RoriKB/internal/config"
	"github.com/Rorical/RoriKB/internal/markdown"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage backend profiles",
	Long:  `Manage profiles for different knowledge-base servers and OpenAI-compatible endpoints.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Fprintln(out, "Available Profiles:")
		for _, name := range cfg.ProfileNames() {
			profile := cfg.Profiles[name]
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Fprintf(out, "  %s%s\n", name, marker)
			fmt.Fprintf(out, "    Kind: %s\n", kindOf(profile))
			if profile.BaseURL != "" {
				fmt.Fprintf(out, "    Base URL: %s\n", profile.BaseURL)
			}
			if profile.Model != "" {
				fmt.Fprintf(out, "    Model: %s\n", profile.Model)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		name := cfg.ActiveProfile
		if len(args) > 0 {
			name = args[0]
		}
		profile, exists := cfg.Profiles[name]
		if !exists {
			return fmt.Errorf("%w: %s", config.ErrProfileNotFound, name)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Profile: %s\n", name)
		fmt.Fprintf(out, "Kind: %s\n", kindOf(profile))
		fmt.Fprintf(out, "Base URL: %s\n", profile.BaseURL)
		if profile.Model != "" {
			fmt.Fprintf(out, "Model: %s\n", profile.Model)
		}
		hasKey := "Not set"
		if profile.APIKey != "" {
			hasKey = "Set (hidden for security)"
		}
		fmt.Fprintf(out, "API Key: %s\n", hasKey)
		fmt.Fprintf(out, "Timeout: %s\n", profile.Timeout())
		if profile.Style != "" {
			fmt.Fprintf(out, "Style: %s\n", profile.Style)
		}
		if profile.WordWrap > 0 {
			fmt.Fprintf(out, "Word wrap: %d\n", profile.WordWrap)
		}
		if err := profile.Validate(); err != nil {
			fmt.Fprintf(out, "Problem: %v\n", err)
		}
		return nil
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		var name string
		if len(args) > 0 {
			name = args[0]
		} else {
			prompt := promptui.Prompt{
				Label:    "Profile name",
				Validate: notEmpty,
			}
			if name, err = prompt.Run(); err != nil {
				return fmt.Errorf("prompt failed: %w", err)
			}
		}

		if _, exists := cfg.Profiles[name]; exists {
			return fmt.Errorf("profile '%s' already exists", name)
		}

		profile, err := promptProfile(config.DefaultProfileSettings())
		if err != nil {
			return err
		}

		cfg.Profiles[name] = profile
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' added successfully!\n", name)
		return nil
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		name, err := pickProfile(cfg, args, "Select profile to edit")
		if err != nil {
			return err
		}

		profile, err := promptProfile(cfg.Profiles[name])
		if err != nil {
			return err
		}

		cfg.Profiles[name] = profile
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' updated successfully!\n", name)
		return nil
	},
}

var removeProfileCmd = &cobra.Command{
	Use:     "remove [profile-name]",
	Aliases: []string{"delete", "rm"},
	Short:   "Remove a profile",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		name, err := pickProfile(cfg, args, "Select profile to remove")
		if err != nil {
			return err
		}

		confirmPrompt := promptui.Prompt{
			Label:     fmt.Sprintf("Remove profile '%s'", name),
			IsConfirm: true,
		}
		if _, err := confirmPrompt.Run(); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Removal cancelled")
			return nil
		}

		removeProfile(cfg, name)
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' removed successfully!\n", name)
		return nil
	},
}

var setProfileCmd = &cobra.Command{
	Use:     "set [profile-name]",
	Aliases: []string{"switch"},
	Short:   "Make a profile the active one",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		} else {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if name, err = pickProfile(cfg, nil, "Select profile to switch to"); err != nil {
				return err
			}
		}

		if _, err := switchProfile(name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile '%s'\n", name)
		return nil
	},
}

// switchProfile makes name the saved active profile.
func switchProfile(name string) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Use(name); err != nil {
		return nil, err
	}
	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return cfg, nil
}

// removeProfile deletes name, moving the active profile elsewhere and
// recreating the default profile when the last one goes.
func removeProfile(cfg *config.Config, name string) {
	delete(cfg.Profiles, name)
	if len(cfg.Profiles) == 0 {
		cfg.Profiles[config.DefaultProfile] = config.DefaultProfileSettings()
	}
	if cfg.ActiveProfile == name {
		cfg.ActiveProfile = cfg.ProfileNames()[0]
	}
}

func pickProfile(cfg *config.Config, args []string, label string) (string, error) {
	if len(args) > 0 {
		if _, exists := cfg.Profiles[args[0]]; !exists {
			return "", fmt.Errorf("%w: %s", config.ErrProfileNotFound, args[0])
		}
		return args[0], nil
	}

	names := cfg.ProfileNames()
	if len(names) == 0 {
		return "", errors.New("no profiles available")
	}
	prompt := promptui.Select{
		Label: label,
		Items: names,
	}
	_, name, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection failed: %w", err)
	}
	return name, nil
}

// promptProfile asks for every profile field, offering current values as
// defaults.
func promptProfile(current config.Profile) (config.Profile, error) {
	profile := current

	kinds := []string{config.KindRAG, config.KindOpenAI}
	cursor := 0
	if current.Kind == config.KindOpenAI {
		cursor = 1
	}
	kindPrompt := promptui.Select{
		Label:     "Backend kind",
		Items:     kinds,
		CursorPos: cursor,
	}
	_, kind, err := kindPrompt.Run()
	if err != nil {
		return profile, fmt.Errorf("selection failed: %w", err)
	}
	profile.Kind = kind

	urlLabel := "Base URL"
	urlDefault := current.BaseURL
	if kind == config.KindOpenAI {
		urlLabel = "Base URL (optional)"
		if current.Kind != config.KindOpenAI {
			urlDefault = ""
		}
	} else if urlDefault == "" {
		urlDefault = api.DefaultURL
	}
	baseURLPrompt := promptui.Prompt{
		Label:    urlLabel,
		Default:  urlDefault,
		Validate: validURL(kind == config.KindRAG),
	}
	if profile.BaseURL, err = baseURLPrompt.Run(); err != nil {
		return profile, fmt.Errorf("prompt failed: %w", err)
	}

	if kind == config.KindOpenAI {
		apiKeyPrompt := promptui.Prompt{
			Label:   "API Key (empty to use OPENAI_API_KEY)",
			Default: current.APIKey,
			Mask:    '*',
		}
		if profile.APIKey, err = apiKeyPrompt.Run(); err != nil {
			return profile, fmt.Errorf("prompt failed: %w", err)
		}

		modelDefault := current.Model
		if modelDefault == "" {
			modelDefault = api.DefaultModel
		}
		modelPrompt := promptui.Prompt{
			Label:   "Model",
			Default: modelDefault,
		}
		if profile.Model, err = modelPrompt.Run(); err != nil {
			return profile, fmt.Errorf("prompt failed: %w", err)
		}
	} else {
		profile.APIKey = ""
		profile.Model = ""
	}

	timeoutPrompt := promptui.Prompt{
		Label:    "Request timeout (seconds)",
		Default:  strconv.Itoa(int(profile.Timeout().Seconds())),
		Validate: positiveInt,
	}
	timeout, err := timeoutPrompt.Run()
	if err != nil {
		return profile, fmt.Errorf("prompt failed: %w", err)
	}
	profile.TimeoutSeconds, _ = strconv.Atoi(timeout)

	styleDefault := current.Style
	if styleDefault == "" {
		styleDefault = markdown.StyleAuto
	}
	stylePrompt := promptui.Prompt{
		Label:   "Markdown style (auto, dark, light, plain, ...)",
		Default: styleDefault,
	}
	if profile.Style, err = stylePrompt.Run(); err != nil {
		return profile, fmt.Errorf("prompt failed: %w", err)
	}

	return profile, nil
}

func kindOf(p config.Profile) string {
	if p.Kind == "" {
		return config.KindRAG
	}
	return p.Kind
}

func notEmpty(s string) error {
	if s == "" {
		return errors.New("must not be empty")
	}
	return nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return errors.New("enter a positive number")
	}
	return nil
}

func validURL(required bool) func(string) error {
	return func(s string) error {
		if s == "" {
			if required {
				return errors.New("must not be empty")
			}
			return nil
		}
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.New("enter an absolute http(s) URL")
		}
		return nil
	}
}

func init() {
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(removeProfileCmd)
	profileCmd.AddCommand(setProfileCmd)
}
