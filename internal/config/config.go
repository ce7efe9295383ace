// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Catalog    CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Site       SiteConfig    `yaml:"site" mapstructure:"site"`
	Scrape     ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Covers     CoversConfig  `yaml:"covers" mapstructure:"covers"`
	Server     ServerConfig  `yaml:"server" mapstructure:"server"`
	Log        LogConfig     `yaml:"log" mapstructure:"log"`
	Production bool          `yaml:"production" mapstructure:"production"`
}

// CatalogConfig locates the catalog file and cover cache.
type CatalogConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	CoversDir string `yaml:"covers_dir" mapstructure:"covers_dir"`
}

// SiteConfig points at the podcast site.
type SiteConfig struct {
	SitemapURL string `yaml:"sitemap_url" mapstructure:"sitemap_url"`
}

// ScrapeConfig tunes episode-page scraping.
type ScrapeConfig struct {
	PageTimeoutSecs    int `yaml:"page_timeout_secs" mapstructure:"page_timeout_secs"`
	ResolvePauseMillis int `yaml:"resolve_pause_millis" mapstructure:"resolve_pause_millis"`
}

// CoversConfig tunes cover resolution.
type CoversConfig struct {
	PauseMillis int `yaml:"pause_millis" mapstructure:"pause_millis"`
}

// ServerConfig configures the dev catalog server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("catalog.path", "data/books.json")
	v.SetDefault("catalog.covers_dir", "public/covers")
	v.SetDefault("site.sitemap_url", "https://seenunseen.in/sitemap.xml")
	v.SetDefault("scrape.page_timeout_secs", 30)
	v.SetDefault("scrape.resolve_pause_millis", 200)
	v.SetDefault("covers.pause_millis", 300)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("production", false)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; defaults plus env are a complete config.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
