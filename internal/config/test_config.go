package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Wiki.UserAgent = "wikinsight-test/1.0"
	cfg.Wiki.HTTPTimeout = 5 * time.Second
	cfg.Wiki.RateLimit = 0 // unlimited
	cfg.Insight.APIKey = "test-key"
	cfg.Insight.Timeout = 5 * time.Second
	cfg.Database.Path = ":memory:"
	cfg.Database.SearchIndex = ""
	cfg.UI.ShowFeatured = false
	cfg.Log.Level = "off"
	return cfg
}
