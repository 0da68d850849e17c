package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/pders01/wikinsight/internal/validation"
)

type Config struct {
	Wiki     WikiConfig     `mapstructure:"wiki"`
	Insight  InsightConfig  `mapstructure:"insight"`
	Database DatabaseConfig `mapstructure:"database"`
	UI       UIConfig       `mapstructure:"ui"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
}

type WikiConfig struct {
	APIURL      string        `mapstructure:"api_url"`
	SiteURL     string        `mapstructure:"site_url"`
	UserAgent   string        `mapstructure:"user_agent"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	SearchLimit int           `mapstructure:"search_limit"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	RateBurst   int           `mapstructure:"rate_burst"`
}

type InsightConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	// BaseURL overrides the Gemini endpoint, e.g. for a proxy. Empty means
	// the SDK default.
	BaseURL         string        `mapstructure:"base_url"`
	Model           string        `mapstructure:"model"`
	MaxContentChars int           `mapstructure:"max_content_chars"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

type UIConfig struct {
	WordWrapMaxWidth int  `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int  `mapstructure:"word_wrap_min_width"`
	SidebarWidth     int  `mapstructure:"sidebar_width"`
	ShowFeatured     bool `mapstructure:"show_featured"`
}

type BrowserConfig struct {
	Opener string `mapstructure:"opener"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit   string `mapstructure:"quit"`
	Search string `mapstructure:"search"`
	Home   string `mapstructure:"home"`
	Random string `mapstructure:"random"`
	Open   string `mapstructure:"open"`
	Back   string `mapstructure:"back"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".wikinsight")

	return &Config{
		Wiki: WikiConfig{
			APIURL:      "https://en.wikipedia.org/w/api.php",
			SiteURL:     "https://en.wikipedia.org/wiki/",
			UserAgent:   "wikinsight/1.0 (https://github.com/pders01/wikinsight)",
			HTTPTimeout: 30 * time.Second,
			SearchLimit: 20,
			RateLimit:   5,
			RateBurst:   5,
		},
		Insight: InsightConfig{
			Enabled:         true,
			Model:           "gemini-3-flash-preview",
			MaxContentChars: 5000,
			Timeout:         60 * time.Second,
		},
		Database: DatabaseConfig{
			Path:        filepath.Join(dataDir, "history.db"),
			Timeout:     1 * time.Second,
			SearchIndex: filepath.Join(dataDir, "history.bleve"),
		},
		UI: UIConfig{
			WordWrapMaxWidth: 120,
			WordWrapMinWidth: 40,
			SidebarWidth:     42,
			ShowFeatured:     true,
		},
		Browser: BrowserConfig{
			Opener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:   "q",
				Search: "s",
				Home:   "g",
				Random: "r",
				Open:   "o",
				Back:   "esc",
			},
		},
		Log: LogConfig{
			Level: "off",
			Path:  filepath.Join(dataDir, "wikinsight.log"),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// flatten turns the config into dotted viper keys. Durations are kept as
// time.Duration so viper's decode hook round-trips them.
func flatten(cfg *Config) map[string]any {
	return map[string]any{
		"wiki.api_url":      cfg.Wiki.APIURL,
		"wiki.site_url":     cfg.Wiki.SiteURL,
		"wiki.user_agent":   cfg.Wiki.UserAgent,
		"wiki.http_timeout": cfg.Wiki.HTTPTimeout,
		"wiki.search_limit": cfg.Wiki.SearchLimit,
		"wiki.rate_limit":   cfg.Wiki.RateLimit,
		"wiki.rate_burst":   cfg.Wiki.RateBurst,

		"insight.enabled":           cfg.Insight.Enabled,
		"insight.api_key":           cfg.Insight.APIKey,
		"insight.base_url":          cfg.Insight.BaseURL,
		"insight.model":             cfg.Insight.Model,
		"insight.max_content_chars": cfg.Insight.MaxContentChars,
		"insight.timeout":           cfg.Insight.Timeout,

		"database.path":         cfg.Database.Path,
		"database.timeout":      cfg.Database.Timeout,
		"database.search_index": cfg.Database.SearchIndex,

		"ui.word_wrap_max_width": cfg.UI.WordWrapMaxWidth,
		"ui.word_wrap_min_width": cfg.UI.WordWrapMinWidth,
		"ui.sidebar_width":       cfg.UI.SidebarWidth,
		"ui.show_featured":       cfg.UI.ShowFeatured,

		"browser.opener": cfg.Browser.Opener,

		"keys.modifier":        cfg.Keys.Modifier,
		"keys.bindings.quit":   cfg.Keys.Bindings.Quit,
		"keys.bindings.search": cfg.Keys.Bindings.Search,
		"keys.bindings.home":   cfg.Keys.Bindings.Home,
		"keys.bindings.random": cfg.Keys.Bindings.Random,
		"keys.bindings.open":   cfg.Keys.Bindings.Open,
		"keys.bindings.back":   cfg.Keys.Bindings.Back,

		"log.level": cfg.Log.Level,
		"log.path":  cfg.Log.Path,
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range flatten(defaultConfig()) {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(DefaultDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WIKINSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The key is commonly exported under the provider's own names.
	if err := v.BindEnv("insight.api_key", "WIKINSIGHT_INSIGHT_API_KEY", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return nil, fmt.Errorf("binding api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// DefaultDir is where the config file lives unless --config is given.
func DefaultDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "wikinsight")
}

// DefaultPath is the config file used by `config generate`.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.toml")
}

// Validate checks the endpoints the clients will talk to.
func (c *Config) Validate() error {
	validator := validation.NewEndpointValidator()
	if _, err := validator.ValidateAndNormalize(c.Wiki.APIURL); err != nil {
		return fmt.Errorf("wiki.api_url: %w", err)
	}
	if _, err := validator.ValidateAndNormalize(c.Wiki.SiteURL); err != nil {
		return fmt.Errorf("wiki.site_url: %w", err)
	}
	if c.Wiki.SearchLimit <= 0 {
		return fmt.Errorf("wiki.search_limit must be positive")
	}
	// The API key travels to this endpoint, so only public https will do.
	if c.Insight.BaseURL != "" {
		strict := validation.NewStrictEndpointValidator()
		if _, err := strict.ValidateAndNormalize(c.Insight.BaseURL); err != nil {
			return fmt.Errorf("insight.base_url: %w", err)
		}
	}
	if c.Insight.MaxContentChars <= 0 {
		return fmt.Errorf("insight.max_content_chars must be positive")
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

// Save writes the config as TOML. The API key is never written to disk;
// it belongs in the environment.
func Save(config *Config, path string) error {
	doc := map[string]any{
		"wiki": map[string]any{
			"api_url":      config.Wiki.APIURL,
			"site_url":     config.Wiki.SiteURL,
			"user_agent":   config.Wiki.UserAgent,
			"http_timeout": config.Wiki.HTTPTimeout.String(),
			"search_limit": config.Wiki.SearchLimit,
			"rate_limit":   config.Wiki.RateLimit,
			"rate_burst":   config.Wiki.RateBurst,
		},
		"insight": map[string]any{
			"enabled":           config.Insight.Enabled,
			"base_url":          config.Insight.BaseURL,
			"model":             config.Insight.Model,
			"max_content_chars": config.Insight.MaxContentChars,
			"timeout":           config.Insight.Timeout.String(),
		},
		"database": map[string]any{
			"path":         config.Database.Path,
			"timeout":      config.Database.Timeout.String(),
			"search_index": config.Database.SearchIndex,
		},
		"ui": map[string]any{
			"word_wrap_max_width": config.UI.WordWrapMaxWidth,
			"word_wrap_min_width": config.UI.WordWrapMinWidth,
			"sidebar_width":       config.UI.SidebarWidth,
			"show_featured":       config.UI.ShowFeatured,
		},
		"browser": map[string]any{
			"opener": config.Browser.Opener,
		},
		"keys": map[string]any{
			"modifier": config.Keys.Modifier,
			"bindings": map[string]any{
				"quit":   config.Keys.Bindings.Quit,
				"search": config.Keys.Bindings.Search,
				"home":   config.Keys.Bindings.Home,
				"random": config.Keys.Bindings.Random,
				"open":   config.Keys.Bindings.Open,
				"back":   config.Keys.Bindings.Back,
			},
		},
		"log": map[string]any{
			"level": config.Log.Level,
			"path":  config.Log.Path,
		},
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
