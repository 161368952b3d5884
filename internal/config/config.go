package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Chart  ChartConfig  `yaml:"chart" mapstructure:"chart"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the web host.
type ServerConfig struct {
	Port          int    `yaml:"port" mapstructure:"port"`
	SessionSecret string `yaml:"session_secret" mapstructure:"session_secret"`
	Username      string `yaml:"username" mapstructure:"username"`
	Password      string `yaml:"password" mapstructure:"password"`
	UploadDir     string `yaml:"upload_dir" mapstructure:"upload_dir"`
	OutputDir     string `yaml:"output_dir" mapstructure:"output_dir"`
	MaxUploadMB   int    `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// ChartConfig sizes rendered charts.
type ChartConfig struct {
	Width  int    `yaml:"width" mapstructure:"width"`
	Height int    `yaml:"height" mapstructure:"height"`
	Format string `yaml:"format" mapstructure:"format"`
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
	v.SetEnvPrefix("OFFICESTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 9595)
	v.SetDefault("server.session_secret", "change-me-office-stats-session-key")
	v.SetDefault("server.username", "user")
	v.SetDefault("server.password", "")
	v.SetDefault("server.upload_dir", "uploads")
	v.SetDefault("server.output_dir", "output")
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("chart.width", 1024)
	v.SetDefault("chart.height", 600)
	v.SetDefault("chart.format", "png")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	// Plain PORT wins, as on most hosting platforms.
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, eris.Wrapf(err, "config: invalid PORT %q", port)
		}
		cfg.Server.Port = p
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
