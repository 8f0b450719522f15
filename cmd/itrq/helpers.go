package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"itrq/internal/config"
	"itrq/internal/logging"
	"itrq/internal/processor"
	"itrq/internal/query"
)

var (
	cfgOnce      sync.Once
	sharedConfig *config.Config
	sharedLogger *logging.Logger
	cfgErr       error

	envOnce      sync.Once
	sharedProc   *processor.Processor
	sharedEngine *query.Engine
)

// getConfig lazily loads .itrq/config.json and builds the logger its
// logging section describes. Logs go to stderr so stdout stays clean for
// formatted results and the MCP protocol.
func getConfig() (*config.Config, *logging.Logger, error) {
	cfgOnce.Do(func() {
		root, err := os.Getwd()
		if err != nil {
			cfgErr = err
			return
		}

		bootstrap := logging.NewLogger(logging.Config{
			Format: logging.HumanFormat,
			Level:  logging.WarnLevel,
			Output: os.Stderr,
		})

		cfg, err := config.LoadConfig(root)
		if err != nil {
			bootstrap.Warn("Failed to load config, using defaults", map[string]interface{}{
				"error": err.Error(),
			})
			cfg = config.DefaultConfig()
		}

		sharedConfig = cfg
		sharedLogger = configuredLogger(cfg, os.Stderr)
	})

	return sharedConfig, sharedLogger, cfgErr
}

// configuredLogger builds a logger from the config's logging section.
func configuredLogger(cfg *config.Config, out io.Writer) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.ParseFormat(cfg.Logging.Format),
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Output: out,
	})
}

// getEnv lazily builds the shared processor and query engine on top of
// the loaded config.
func getEnv() (*config.Config, *processor.Processor, *query.Engine, *logging.Logger, error) {
	cfg, logger, err := getConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	envOnce.Do(func() {
		sharedProc = processor.Shared(cfg, logger)
		sharedEngine = query.NewEngine(sharedProc, cfg, logger)
	})

	return cfg, sharedProc, sharedEngine, logger, nil
}

// mustGetEnv returns the shared environment or exits on error.
func mustGetEnv() (*config.Config, *processor.Processor, *query.Engine, *logging.Logger) {
	cfg, proc, engine, logger, err := getEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg, proc, engine, logger
}
