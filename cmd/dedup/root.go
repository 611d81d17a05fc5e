package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/dedup/pkg/dedup/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "dedup",
		Short: "Find and resolve duplicate files by content",
		Long: `Dedup identifies files by their content digests: it scans directory
trees, groups files with identical digests, verifies previously written
manifests, and removes or relocates redundant copies.

Examples:
  dedup scan ~/Photos                 # Report duplicate files
  dedup scan --remove --dry-run .     # Preview what removal would do
  dedup scan --move-to ~/dupes .      # Quarantine duplicates
  dedup hash -a sha256,md5 file.iso   # Hash with several algorithms
  dedup hash -o sums.json ~/data      # Write a manifest
  dedup verify sums.json              # Re-check a manifest
  dedup largest -n 20 /var            # Rank the largest files`,
		PersistentPreRunE: initializeLogging,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: "+config.DefaultConfigDir+"/config.yaml)")
	rootCmd.PersistentFlags().StringP("min-size", "s", "", "minimum file size to consider (e.g., 1K, 100M)")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "concurrent hashing workers (0=one per CPU)")
	rootCmd.PersistentFlags().StringSliceP("ignore", "e", nil, "file name patterns to skip (repeatable)")
	rootCmd.PersistentFlags().StringP("format", "f", "", "output format (detailed, plain, json, yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("min_size", rootCmd.PersistentFlags().Lookup("min-size"))
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("ignore", rootCmd.PersistentFlags().Lookup("ignore"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "dedup"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "dedup"))
		}
	}

	viper.SetEnvPrefix("DEDUP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("algorithms", []string{config.DefaultAlgorithm})
	viper.SetDefault("chunk_size", config.DefaultChunkSize)
	viper.SetDefault("workers", config.DefaultWorkers)
	viper.SetDefault("min_size", config.DefaultMinSize)
	viper.SetDefault("ignore", config.DefaultIgnores)
	viper.SetDefault("output", config.DefaultOutput)

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
