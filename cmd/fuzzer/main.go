/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for the Kyra Fuzzer. Builds the root
command with persistent logging and configuration flags, wires the fuzz,
replay, and version subcommands, and hands control to cobra.
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/kyra-fuzzer/cmd/fuzzer/commands"
)

var (
	configFile  string
	logLevel    string
	logFormat   string
	logDir      string
	logMaxFiles int
	logMaxSize  int64
	logConsole  bool
)

const version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "kyra-fuzzer",
		Short: "Kyra Fuzzer - Coverage-guided fuzzing engine",
		Long: `Kyra Fuzzer is a coverage-guided fuzzing engine for binaries, network
services, and in-process Go targets. It mutates a seed corpus across several
strategies, tracks user-reported coverage, deduplicates crashes by fault
signature, and persists everything needed to reproduce a finding.`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "logs", "Log output directory")
	rootCmd.PersistentFlags().IntVar(&logMaxFiles, "log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().Int64Var(&logMaxSize, "log-max-size", 100*1024*1024, "Maximum log file size in bytes")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", true, "Mirror log output to stdout")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("logs_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("log_max_size", rootCmd.PersistentFlags().Lookup("log-max-size"))
	viper.BindPFlag("log_console", rootCmd.PersistentFlags().Lookup("log-console"))

	cobra.OnInitialize(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to read config file: %v\n", err)
				os.Exit(1)
			}
		}
	})

	rootCmd.AddCommand(commands.NewFuzzCommand())
	rootCmd.AddCommand(commands.NewReplayCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(version))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
