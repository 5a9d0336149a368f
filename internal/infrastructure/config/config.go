// Package config loads the service configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"go-sse-broadcast/internal/infrastructure/hub"
	"go-sse-broadcast/internal/infrastructure/logger"
)

// Config is the root configuration of the service.
type Config struct {
	Server ServerConfig `yaml:"server" envPrefix:"SSE_SERVER_"`
	Hub    HubConfig    `yaml:"hub"    envPrefix:"SSE_HUB_"`
	Log    LogConfig    `yaml:"log"    envPrefix:"SSE_LOG_"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"                env:"ADDR"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"READ_HEADER_TIMEOUT"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"        env:"IDLE_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"    env:"SHUTDOWN_TIMEOUT"`
	GinMode           string        `yaml:"gin_mode"            env:"GIN_MODE"` // debug, release, test
}

type HubConfig struct {
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval" env:"HEARTBEAT_INTERVAL"`
	// Zero disables the generator
	GeneratorInterval time.Duration `yaml:"generator_interval" env:"GENERATOR_INTERVAL"`
	// Zero disables write deadlines
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	Symbol       string        `yaml:"symbol"        env:"SYMBOL"`
}

type LogConfig struct {
	Level      string `yaml:"level"       env:"LEVEL"`
	Format     string `yaml:"format"      env:"FORMAT"` // console, text, json
	Output     string `yaml:"output"      env:"OUTPUT"` // stdout, stderr, file, discard
	FilePath   string `yaml:"file_path"   env:"FILE_PATH"`
	MaxSize    int    `yaml:"max_size"    env:"MAX_SIZE"` // MB
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAge     int    `yaml:"max_age"     env:"MAX_AGE"` // days
	Compress   bool   `yaml:"compress"    env:"COMPRESS"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	lCfg := logger.NewDefaultConfig()

	return Config{
		Server: ServerConfig{
			Addr:              ":3000",
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   5 * time.Second,
			GinMode:           "release",
		},
		Hub: HubConfig{
			HeartbeatInterval: hub.DefaultHeartbeatInterval,
			GeneratorInterval: hub.DefaultGeneratorInterval,
			WriteTimeout:      10 * time.Second,
			Symbol:            hub.DefaultSymbol,
		},
		Log: LogConfig{
			Level:      lCfg.Level.String(),
			Format:     lCfg.Format,
			Output:     lCfg.Output,
			MaxSize:    lCfg.MaxSize,
			MaxBackups: lCfg.MaxBackups,
			MaxAge:     lCfg.MaxAge,
			Compress:   lCfg.Compress,
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Hub.HeartbeatInterval <= 0 {
		errs = append(errs, errors.New("hub.heartbeat_interval must be positive"))
	}
	if c.Hub.GeneratorInterval < 0 {
		errs = append(errs, errors.New("hub.generator_interval must not be negative"))
	}
	if c.Hub.WriteTimeout < 0 {
		errs = append(errs, errors.New("hub.write_timeout must not be negative"))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Output == "file" && c.Log.FilePath == "" {
		errs = append(errs, errors.New("log.file_path is required when log.output is file"))
	}

	return errors.Join(errs...)
}

// LoggerConfig converts the log section into a logger.Config, keeping the
// container metadata fields of logger.NewDefaultConfig.
func (c LogConfig) LoggerConfig() (*logger.Config, error) {
	level, err := logger.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	lCfg := logger.NewDefaultConfig()
	lCfg.Level = level
	lCfg.Format = c.Format
	lCfg.Output = c.Output
	lCfg.FilePath = c.FilePath
	lCfg.MaxSize = c.MaxSize
	lCfg.MaxBackups = c.MaxBackups
	lCfg.MaxAge = c.MaxAge
	lCfg.Compress = c.Compress
	return lCfg, nil
}
