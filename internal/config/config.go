package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"gopkg.in/yaml.v3"

	"podplay/internal/theme"
)

// Config represents the persisted application configuration.
type Config struct {
	UserAgent                  string  `yaml:"user_agent"`
	Proxy                      string  `yaml:"proxy,omitempty"`
	TLSVerify                  bool    `yaml:"tls_verify"`
	ColorTheme                 string  `yaml:"color_theme"`
	SearchLimit                int     `yaml:"search_limit"`
	Volume                     int     `yaml:"volume"`
	PlaybackSpeed              float64 `yaml:"playback_speed"`
	SkipSeconds                int     `yaml:"skip_seconds"`
	MaxEpisodes                int     `yaml:"max_episodes"`
	MaxEpisodeDescriptionLines int     `yaml:"max_episode_description_lines"`
}

// Defaults returns the baseline configuration used on first run.
func Defaults() Config {
	return Config{
		UserAgent:                  "podplay/dev",
		TLSVerify:                  true,
		ColorTheme:                 theme.Default,
		SearchLimit:                10,
		Volume:                     100,
		PlaybackSpeed:              1.0,
		SkipSeconds:                30,
		MaxEpisodes:                12,
		MaxEpisodeDescriptionLines: 12,
	}
}

// Ensure loads configuration from the provided path, prompting the user to
// create one if it does not yet exist.
func Ensure(ctx context.Context, path string) (Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	cfg = Defaults()
	if err := bootstrap(ctx, &cfg); err != nil {
		return Config{}, err
	}

	if err := Save(path, cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Load reads configuration from disk.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if strings.TrimSpace(cfg.ColorTheme) == "" {
		cfg.ColorTheme = theme.Default
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = Defaults().SearchLimit
	}
	if cfg.Volume < 0 || cfg.Volume > 100 {
		cfg.Volume = Defaults().Volume
	}
	if cfg.PlaybackSpeed <= 0 {
		cfg.PlaybackSpeed = Defaults().PlaybackSpeed
	}
	if cfg.SkipSeconds <= 0 {
		cfg.SkipSeconds = Defaults().SkipSeconds
	}
	if cfg.MaxEpisodes <= 0 {
		cfg.MaxEpisodes = Defaults().MaxEpisodes
	}
	if cfg.MaxEpisodeDescriptionLines <= 0 {
		cfg.MaxEpisodeDescriptionLines = Defaults().MaxEpisodeDescriptionLines
	}
	return cfg, nil
}

// Save writes configuration back to disk, ensuring directory permissions are restrictive.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	temp := path + ".tmp"
	if err := os.WriteFile(temp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(temp, path)
}

func bootstrap(ctx context.Context, cfg *Config) error {
	if fromEnv := strings.TrimSpace(os.Getenv("PODPLAY_COLOR_THEME")); fromEnv != "" {
		cfg.ColorTheme = fromEnv
		return nil
	}

	prompt := &survey.Select{
		Message: "Choose a color theme",
		Options: theme.Names(),
		Default: cfg.ColorTheme,
	}

	var answer string
	if err := survey.AskOne(prompt, &answer); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return fmt.Errorf("initialisation interrupted")
		}
		return err
	}

	if strings.TrimSpace(answer) != "" {
		cfg.ColorTheme = answer
	}
	return nil
}

// EditableKeys returns the ordered list of configuration keys exposed via the
// interactive editor.
func EditableKeys() []string {
	return []string{
		"user_agent",
		"proxy",
		"tls_verify",
		"color_theme",
		"search_limit",
		"volume",
		"playback_speed",
		"skip_seconds",
		"max_episodes",
		"max_episode_description_lines",
	}
}

// EditInteractive opens an interactive survey session allowing the user to
// update configuration values.
func EditInteractive(ctx context.Context, cfg Config) (Config, error) {
	questions := []*survey.Question{
		{
			Name: "user_agent",
			Prompt: &survey.Input{
				Message: "User agent",
				Default: cfg.UserAgent,
			},
		},
		{
			Name: "proxy",
			Prompt: &survey.Input{
				Message: "HTTP proxy (optional)",
				Default: cfg.Proxy,
			},
		},
		{
			Name: "tls_verify",
			Prompt: &survey.Confirm{
				Message: "Verify TLS certificates",
				Default: cfg.TLSVerify,
			},
		},
		{
			Name: "color_theme",
			Prompt: &survey.Select{
				Message: "Color theme",
				Options: theme.Names(),
				Default: cfg.ColorTheme,
			},
		},
		{
			Name: "search_limit",
			Prompt: &survey.Input{
				Message: "Search results to request",
				Default: fmt.Sprintf("%d", cfg.SearchLimit),
			},
			Validate: validatePositiveInt,
		},
		{
			Name: "volume",
			Prompt: &survey.Input{
				Message: "Startup volume (0-100)",
				Default: fmt.Sprintf("%d", cfg.Volume),
			},
			Validate: validateNonNegativeInt,
		},
		{
			Name: "playback_speed",
			Prompt: &survey.Input{
				Message: "Startup playback speed (0.5-2.0)",
				Default: fmt.Sprintf("%.2g", cfg.PlaybackSpeed),
			},
			Validate: validateSpeed,
		},
		{
			Name: "skip_seconds",
			Prompt: &survey.Input{
				Message: "Skip interval (seconds)",
				Default: fmt.Sprintf("%d", cfg.SkipSeconds),
			},
			Validate: validatePositiveInt,
		},
		{
			Name: "max_episodes",
			Prompt: &survey.Input{
				Message: "Maximum episodes to display in list",
				Default: fmt.Sprintf("%d", cfg.MaxEpisodes),
			},
			Validate: validatePositiveInt,
		},
		{
			Name: "max_episode_description_lines",
			Prompt: &survey.Input{
				Message: "Maximum description lines in episode view",
				Default: fmt.Sprintf("%d", cfg.MaxEpisodeDescriptionLines),
			},
			Validate: validatePositiveInt,
		},
	}

	answers := map[string]interface{}{}
	select {
	case <-ctx.Done():
		return Config{}, ctx.Err()
	default:
	}

	if err := survey.Ask(questions, &answers); err != nil {
		return Config{}, err
	}

	cfg.UserAgent = strings.TrimSpace(answers["user_agent"].(string))
	cfg.Proxy = strings.TrimSpace(answers["proxy"].(string))
	cfg.TLSVerify = answers["tls_verify"].(bool)
	if themeName, ok := answers["color_theme"].(string); ok {
		cfg.ColorTheme = themeName
	}
	cfg.SearchLimit = toInt(answers["search_limit"])
	if vol := toInt(answers["volume"]); vol >= 0 && vol <= 100 {
		cfg.Volume = vol
	}
	if speed := toFloat(answers["playback_speed"]); speed >= 0.5 && speed <= 2.0 {
		cfg.PlaybackSpeed = speed
	}
	cfg.SkipSeconds = toInt(answers["skip_seconds"])
	cfg.MaxEpisodes = toInt(answers["max_episodes"])
	cfg.MaxEpisodeDescriptionLines = toInt(answers["max_episode_description_lines"])

	return cfg, nil
}

func validatePositiveInt(ans interface{}) error {
	v := strings.TrimSpace(ans.(string))
	if v == "" {
		return errors.New("value required")
	}
	i, err := parseInt(v)
	if err != nil {
		return err
	}
	if i <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}

func validateNonNegativeInt(ans interface{}) error {
	v := strings.TrimSpace(ans.(string))
	if v == "" {
		return errors.New("value required")
	}
	i, err := parseInt(v)
	if err != nil {
		return err
	}
	if i < 0 {
		return errors.New("must be zero or positive")
	}
	return nil
}

func validateSpeed(ans interface{}) error {
	v := strings.TrimSpace(ans.(string))
	if v == "" {
		return errors.New("value required")
	}
	f, err := parseFloat(v)
	if err != nil {
		return err
	}
	if f < 0.5 || f > 2.0 {
		return errors.New("must be between 0.5 and 2.0")
	}
	return nil
}

func parseInt(value string) (int, error) {
	var i int
	_, err := fmt.Sscanf(value, "%d", &i)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	return i, nil
}

func parseFloat(value string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(value, "%g", &f)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	return f, nil
}

func toFloat(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		f, _ := parseFloat(v)
		return f
	default:
		return 0
	}
}

func toInt(value interface{}) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case string:
		i, _ := parseInt(v)
		return i
	default:
		return 0
	}
}
