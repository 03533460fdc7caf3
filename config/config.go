// Package config loads the YAML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API      APIConfig      `yaml:"api"`
	Editor   EditorConfig   `yaml:"editor"`
	Mpv      MpvConfig      `yaml:"mpv"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Export   ExportConfig   `yaml:"export"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	MediaID string `yaml:"media_id"`
}

type EditorConfig struct {
	Variant      string        `yaml:"variant"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

type MpvConfig struct {
	SocketPath string `yaml:"socket_path"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// AllowedOrigins lists the browser origins that may call the API
	// cross-origin. Empty disables CORS.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Addr is host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type ExportConfig struct {
	OutputDir     string        `yaml:"output_dir"`
	ThumbnailDir  string        `yaml:"thumbnail_dir"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	ThumbnailSize int           `yaml:"thumbnail_cache_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:6541",
		},
		Editor: EditorConfig{
			Variant:      "chapters",
			TickInterval: 100 * time.Millisecond,
		},
		Mpv: MpvConfig{
			SocketPath: "/tmp/mediacms-timeline-mpv.sock",
		},
		Database: DatabaseConfig{
			Path: "",
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         6541,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Export: ExportConfig{
			OutputDir:     "",
			ThumbnailDir:  filepath.Join(os.TempDir(), "mediacms-timeline", "thumbnails"),
			PollInterval:  2 * time.Second,
			ThumbnailSize: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}
