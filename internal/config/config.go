// Package config loads the tablesync settings from YAML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gookit/config/v2"
	"github.com/gookit/config/v2/yaml"
)

const DefaultPath = "config.yml"

var ErrNoAPIURL = errors.New("api_url is not set")

type Log struct {
	Level  string `config:"level"`
	Format string `config:"format"`
}

type Config struct {
	APIURL string `config:"api_url"`
	Addr   string `config:"addr"`
	Log    Log    `config:"log"`
}

func defaults() Config {
	return Config{
		APIURL: "http://localhost:8080",
		Addr:   ":6750",
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path and its optional ".local.yml" sibling on top of the
// defaults. An empty path means DefaultPath, which may be missing.
func Load(path string) (*Config, error) {
	appConfig := defaults()

	c := config.New("tablesync")
	c.WithOptions(config.ParseEnv, func(opt *config.Options) {
		opt.DecoderConfig.TagName = "config"
	})
	c.AddDriver(yaml.Driver)

	if path == "" {
		if err := c.LoadExists(DefaultPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", DefaultPath, err)
		}
		path = DefaultPath
	} else if err := c.LoadFiles(path); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	local := strings.TrimSuffix(path, ".yml") + ".local.yml"
	if err := c.LoadExists(local); err != nil {
		return nil, fmt.Errorf("load %s: %w", local, err)
	}

	if len(c.Data()) == 0 {
		return &appConfig, nil
	}

	if err := c.BindStruct("", &appConfig); err != nil {
		return nil, fmt.Errorf("bind config: %w", err)
	}

	return &appConfig, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return ErrNoAPIURL
	}

	return nil
}

// Logger builds the process logger described by the log section.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}

	options := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.Log.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, options)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, options)), nil
	default:
		return nil, fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
}
