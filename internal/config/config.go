package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"
)

const (
	KindRAG    = "rag"
	KindOpenAI = "openai"

	DefaultProfile = "default"
	DefaultBaseURL = "http://127.0.0.1:8000"
	DefaultTimeout = 30

	homeEnv    = "RORIKB_HOME"
	profileEnv = "RORIKB_PROFILE"
	baseURLEnv = "RORIKB_BASE_URL"
	openAIEnv  = "OPENAI_API_KEY"
	configDir  = ".rorikb"
	configName = "config.json"
	logName    = "rorikb.log"
)

var ErrProfileNotFound = errors.New("profile not found")

type Profile struct {
	Kind           string `json:"kind,omitempty"`
	BaseURL        string `json:"base_url"`
	APIKey         string `json:"api_key,omitempty"`
	Model          string `json:"model,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	Style          string `json:"style,omitempty"`
	WordWrap       int    `json:"word_wrap,omitempty"`
	CodeTheme      string `json:"code_theme,omitempty"`
}

type Config struct {
	Profiles       map[string]Profile `json:"profiles"`
	ActiveProfile  string             `json:"active_profile"`
	currentProfile *Profile
	path           string
}

// LoadConfig reads the config file, creating it with a default profile when
// missing, then applies the .env file and environment overrides.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	configPath, err := Path()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if name := os.Getenv(profileEnv); name != "" {
		config.ActiveProfile = name
	}

	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}
	config.applyEnvOverrides()

	return config, nil
}

// Home is the directory holding the config and log files.
func Home() (string, error) {
	if home := os.Getenv(homeEnv); home != "" {
		return filepath.Join(home, configDir), nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userHome, configDir), nil
}

func Path() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configName), nil
}

func LogPath() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, logName), nil
}

func NewDefault() *Config {
	return &Config{
		Profiles: map[string]Profile{
			DefaultProfile: DefaultProfileSettings(),
		},
		ActiveProfile: DefaultProfile,
	}
}

func DefaultProfileSettings() Profile {
	return Profile{
		Kind:           KindRAG,
		BaseURL:        DefaultBaseURL,
		TimeoutSeconds: DefaultTimeout,
		Style:          "auto",
	}
}

func loadConfigFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		config := NewDefault()
		config.path = configPath
		if err := config.Save(); err != nil {
			return nil, err
		}
		return config, nil
	}
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	config.path = configPath
	return &config, nil
}

func (c *Config) Save() error {
	if c.path == "" {
		configPath, err := Path()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		c.path = configPath
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0600)
}

func (c *Config) setCurrentProfile() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// Fall back to the first profile in name order so the choice is stable.
		names := c.ProfileNames()
		c.ActiveProfile = names[0]
		profile = c.Profiles[names[0]]
	}

	profile.normalize()
	c.currentProfile = &profile
	return nil
}

// Use switches the active profile for this process. Call Save to persist.
func (c *Config) Use(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	c.ActiveProfile = name
	if err := c.setCurrentProfile(); err != nil {
		return err
	}
	c.applyEnvOverrides()
	return nil
}

func (c *Config) applyEnvOverrides() {
	if c.currentProfile == nil {
		return
	}
	if u := os.Getenv(baseURLEnv); u != "" {
		c.currentProfile.BaseURL = u
	}
	if c.currentProfile.Kind == KindOpenAI && c.currentProfile.APIKey == "" {
		c.currentProfile.APIKey = os.Getenv(openAIEnv)
	}
}

func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Current is the active profile with defaults and overrides applied.
func (c *Config) Current() Profile {
	if c.currentProfile == nil {
		return DefaultProfileSettings()
	}
	return *c.currentProfile
}

func (c *Config) Validate() error {
	return c.Current().Validate()
}

func (c *Config) IsValid() bool {
	return c.Validate() == nil
}

func (p *Profile) normalize() {
	if p.Kind == "" {
		p.Kind = KindRAG
	}
	if p.BaseURL == "" && p.Kind == KindRAG {
		p.BaseURL = DefaultBaseURL
	}
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = DefaultTimeout
	}
	if p.Style == "" {
		p.Style = "auto"
	}
}

func (p Profile) Validate() error {
	switch p.Kind {
	case KindRAG, "":
	case KindOpenAI:
		if p.APIKey == "" {
			return fmt.Errorf("profile kind %q needs an API key (set api_key or %s)", KindOpenAI, openAIEnv)
		}
	default:
		return fmt.Errorf("unknown profile kind %q", p.Kind)
	}

	if p.BaseURL == "" {
		return nil
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", p.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base URL %q: want an absolute http(s) URL", p.BaseURL)
	}
	return nil
}

func (p Profile) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return DefaultTimeout * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}
