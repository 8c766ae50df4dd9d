package util

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPrompt        = "> "
	DefaultLogLevel      = "error"
	DefaultASTFormat     = "json"
	DefaultHistoryDriver = "sqlite3"
	ConfigFileName       = "lox.toml"
	LoxHomeEnv           = "LOX_HOME"
)

type Configuration struct {
	Version   string
	BuildDate string
	Commit    string
	LoxHome   string

	LogLevel string
	LogFile  string
	Prompt   string

	DebugAST       bool
	DebugASTFormat string

	HistoryDriver string
	HistoryDSN    string
}

// fileConfig mirrors the on-disk lox.toml layout.
type fileConfig struct {
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
	Prompt   string `toml:"prompt"`
	Debug    struct {
		AST    bool   `toml:"ast"`
		Format string `toml:"format"`
	} `toml:"debug"`
	History struct {
		Driver string `toml:"driver"`
		DSN    string `toml:"dsn"`
	} `toml:"history"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		LoxHome:        os.Getenv(LoxHomeEnv),
		LogLevel:       DefaultLogLevel,
		Prompt:         DefaultPrompt,
		DebugASTFormat: DefaultASTFormat,
		HistoryDriver:  DefaultHistoryDriver,
	}
}

// ConfigPath returns the explicit path when given, otherwise
// $LOX_HOME/lox.toml, or "" when neither is available.
func ConfigPath(explicit, loxHome string) string {
	if explicit != "" {
		return explicit
	}
	if loxHome == "" {
		return ""
	}
	return filepath.Join(loxHome, ConfigFileName)
}

// LoadConfig overlays the values found in the TOML file at path onto base.
// A missing file leaves base untouched; a malformed one is an error.
func LoadConfig(path string, base Configuration) (Configuration, error) {
	if path == "" {
		return base, nil
	}

	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no config file", slog.String("path", path))
			return base, nil
		}
		return base, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		slog.Warn("unknown config keys",
			slog.String("path", path),
			slog.Any("keys", undecoded))
	}

	cfg := base
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFile != "" {
		cfg.LogFile = fc.LogFile
	}
	if md.IsDefined("prompt") {
		cfg.Prompt = fc.Prompt
	}
	if md.IsDefined("debug", "ast") {
		cfg.DebugAST = fc.Debug.AST
	}
	if fc.Debug.Format != "" {
		cfg.DebugASTFormat = fc.Debug.Format
	}
	if fc.History.Driver != "" {
		cfg.HistoryDriver = fc.History.Driver
	}
	if fc.History.DSN != "" {
		cfg.HistoryDSN = fc.History.DSN
	}

	slog.Debug("config loaded", slog.String("path", path))
	return cfg, nil
}
