package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/dedup/pkg/dedup/logging"
)

// initializeLogging is the PersistentPreRunE hook for all commands. It
// configures file logging from the loaded configuration, raising the level
// when --verbose is set.
func initializeLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if level := viper.GetString("logging.level"); level != "" {
		cfg.Level = level
	}
	if getVerbose() {
		cfg.Level = "debug"
	}
	if path := viper.GetString("logging.path"); path != "" {
		cfg.Path = path
	}
	cfg.Components = viper.GetStringMapString("logging.components")

	cfg.ConsoleLevel = viper.GetString("logging.console_level")
	if getQuiet() {
		cfg.ConsoleLevel = ""
	}

	if err := logging.Init(cfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}
