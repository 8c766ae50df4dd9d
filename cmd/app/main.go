package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"lox/internal/history"
	"lox/internal/repl"
	"lox/internal/util"
	"os"
	"path/filepath"
	"strings"
)

var (
	// Version is injected at build time with -ldflags.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configFile     string
	prompt         string
	debugAST       bool
	debugASTFormat string
	historyCount   int
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configFile, "config", "", "Path to a lox.toml config file (default $LOX_HOME/lox.toml)")
	flag.StringVar(&prompt, "prompt", util.DefaultPrompt, "REPL prompt")
	// parser config
	flag.BoolVar(&debugAST, "debug-ast", false, "Print the resolved AST to stderr before running")
	flag.StringVar(&debugASTFormat, "debug-ast-format", util.DefaultASTFormat, "AST dump format: json, yaml, text")
	flag.IntVar(&historyCount, "history", 0, "Print the last N REPL history entries and exit")
	// log config
	flag.StringVar(&logLevel, "log-level", util.DefaultLogLevel, "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	// flags decide where config loading logs; the file may then change it
	logWriter := setupLogging(logLevel, logFile)

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(repl.ExitUsage)
	}
	if config.LogLevel != logLevel || config.LogFile != logFile {
		if config.LogFile != logFile && logWriter != os.Stderr {
			logWriter.Close()
		}
		setupLogging(config.LogLevel, config.LogFile)
	}

	if version {
		printVersion(os.Stdout, config)
		return
	}

	if help {
		printHelp(os.Stdout, config)
		return
	}

	os.Exit(run(context.Background(), config, flag.Args()))
}

// setupLogging installs a JSON slog handler writing to file, or stderr.
func setupLogging(level, file string) *os.File {
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(level),
	}
	logWriter := configureLogWriter(file)
	slog.SetDefault(slog.New(slog.NewJSONHandler(logWriter, loggerOptions)))
	return logWriter
}

func loadConfiguration() (util.Configuration, error) {
	defaults := util.DefaultConfiguration()
	config, err := util.LoadConfig(util.ConfigPath(configFile, defaults.LoxHome), defaults)
	if err != nil {
		return config, err
	}
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	applyFlags(&config)
	return config, nil
}

// applyFlags lets explicitly set flags win over the config file.
func applyFlags(config *util.Configuration) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		case "prompt":
			config.Prompt = prompt
		case "debug-ast":
			config.DebugAST = debugAST
		case "debug-ast-format":
			config.DebugASTFormat = debugASTFormat
		}
	})
}

func run(ctx context.Context, config util.Configuration, args []string) int {
	opts := repl.Options{
		Prompt:    config.Prompt,
		DebugAST:  config.DebugAST,
		ASTFormat: config.DebugASTFormat,
	}

	if len(args) > 1 {
		fmt.Println("Usage: lox [script]")
		return repl.ExitUsage
	}
	if len(args) == 1 {
		return repl.RunFile(args[0], os.Stdout, os.Stderr, opts)
	}

	store := openHistory(ctx, config)
	if store != nil {
		defer store.Close()
	}

	if historyCount > 0 {
		if store == nil {
			fmt.Fprintln(os.Stderr, "history is not configured")
			return repl.ExitUsage
		}
		if err := repl.PrintHistory(ctx, store, historyCount, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return repl.ExitSoftware
		}
		return repl.ExitOK
	}

	opts.History = store
	repl.Start(ctx, os.Stdin, os.Stdout, os.Stderr, opts)
	return repl.ExitOK
}

// openHistory returns nil when no DSN is configured or the store is
// unavailable; the REPL runs without history in both cases.
func openHistory(ctx context.Context, config util.Configuration) *history.Store {
	if config.HistoryDSN == "" {
		return nil
	}
	store, err := history.Open(ctx, config.HistoryDriver, config.HistoryDSN)
	if err != nil {
		slog.Warn("history disabled", slog.Any("error", err))
		return nil
	}
	return store
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion(w io.Writer, config util.Configuration) {
	fmt.Fprintf(w, "lox version 'v%s' %s %s\n", config.Version, config.BuildDate, config.Commit)
}

func printHelp(w io.Writer, config util.Configuration) {
	fmt.Fprintf(w, `Usage: lox [options] [script]

Options:
  -config <path>            Read settings from a TOML file. Default is $LOX_HOME/lox.toml.
  -prompt <text>            Set the REPL prompt. Default is '> '.
  -debug-ast                Print the resolved AST to stderr before running.
  -debug-ast-format <fmt>   AST dump format: json, yaml or text. Default is 'json'.
  -history <n>              Print the last n REPL history entries and exit.
  -help                     Display this help information and exit.
  -version                  Display version information and exit.
  -log-level <level>        Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>          Specify a log file to write logs. Default is stderr.

Details:
Without a script lox starts an interactive session; each line is run as a
program and definitions persist between lines. REPL history is kept when
[history] dsn is set in the config file.

Exit status:
  0   success
  64  usage error
  65  syntax or static error in the script
  66  script could not be read
  70  runtime error

Examples:
  lox                       Start the REPL
  lox -log-level=debug      Start with debug logging enabled
  lox script.lox            Run the provided script

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, config.Version, config.BuildDate, config.Commit)
}

func logLevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
