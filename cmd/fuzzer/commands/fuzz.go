/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: fuzz.go
Description: Fuzz command for the Kyra Fuzzer. Assembles the engine from
command-line and file configuration, picks the target adapter, installs
event callbacks, and runs the session until the iteration cap or an
interrupt.
*/

package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/kyra-fuzzer/pkg/core"
	"github.com/kleascm/kyra-fuzzer/pkg/coverage"
	"github.com/kleascm/kyra-fuzzer/pkg/execution"
	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
	"github.com/kleascm/kyra-fuzzer/pkg/logging"
	"github.com/kleascm/kyra-fuzzer/pkg/utils"
)

// NewFuzzCommand builds the fuzz subcommand
func NewFuzzCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuzz",
		Short: "Start fuzzing a target",
		Long: `Start a fuzzing session against a target binary or network service.
The engine mutates the seed corpus, executes each input, and records
crashes, hangs, and coverage growth until the iteration cap is reached or
the session is interrupted.`,
		RunE: runFuzz,
	}

	cmd.Flags().String("target", "", "Path to target binary")
	cmd.Flags().StringSlice("args", nil, "Target arguments (use @@ for the input file)")
	cmd.Flags().String("network", "", "Fuzz a network service instead (tcp or udp)")
	cmd.Flags().String("address", "", "Network target address (host:port)")
	cmd.Flags().Int("workers", 0, "Worker threads (0 = default)")
	cmd.Flags().Uint64("max-iterations", 0, "Iteration cap (0 = default)")
	cmd.Flags().Uint64("timeout-ms", 0, "Per-execution timeout in milliseconds (0 = default)")
	cmd.Flags().Int("max-input-size", 0, "Maximum mutated input size in bytes (0 = default)")
	cmd.Flags().String("corpus", "corpus", "Seed corpus directory")
	cmd.Flags().String("crashes", "crashes", "Crash output directory")
	cmd.Flags().String("dict", "", "Token dictionary file")
	cmd.Flags().StringSlice("strategy", nil, "Mutation strategies (random, deterministic, dictionary, havoc, splice)")
	cmd.Flags().String("coverage", "user", "Coverage type (none, user, hardware, breakpoint)")
	cmd.Flags().Bool("no-dedup", false, "Persist every crash, including duplicates")

	viper.BindPFlag("corpus_dir", cmd.Flags().Lookup("corpus"))
	viper.BindPFlag("crashes_dir", cmd.Flags().Lookup("crashes"))

	return cmd
}

func runFuzz(cmd *cobra.Command, args []string) error {
	config := interfaces.DefaultConfig()
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		config.WorkerThreads = workers
	}
	if iters, _ := cmd.Flags().GetUint64("max-iterations"); iters > 0 {
		config.MaxIterations = iters
	}
	if timeoutMs, _ := cmd.Flags().GetUint64("timeout-ms"); timeoutMs > 0 {
		config.TimeoutMs = uint32(timeoutMs)
	}
	if maxSize, _ := cmd.Flags().GetInt("max-input-size"); maxSize > 0 {
		config.MaxInputSize = maxSize
	}
	config.CorpusDir = viper.GetString("corpus_dir")
	config.CrashesDir = viper.GetString("crashes_dir")
	if dir := viper.GetString("logs_dir"); dir != "" {
		config.LogsDir = dir
	}
	if noDedup, _ := cmd.Flags().GetBool("no-dedup"); noDedup {
		config.DeduplicateCrashes = false
	}

	coverageName, _ := cmd.Flags().GetString("coverage")
	coverageType, err := interfaces.ParseCoverageType(coverageName)
	if err != nil {
		return err
	}
	config.CoverageType = coverageType
	config.CollectCoverage = coverageType != interfaces.CoverageNone

	logger, err := buildLogger(config.LogsDir)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Close()

	adapter, err := buildAdapter(cmd)
	if err != nil {
		return err
	}

	engine := core.NewFuzzEngine(config, logger)
	if err := engine.SetTarget(adapter); err != nil {
		return err
	}

	if config.CollectCoverage {
		source, err := coverage.NewSource(config.CoverageType)
		if err != nil {
			return err
		}
		if source != nil {
			if err := engine.SetCoverageSource(source); err != nil {
				return err
			}
		}
	}

	if names, _ := cmd.Flags().GetStringSlice("strategy"); len(names) > 0 {
		for _, name := range names {
			strategy, err := interfaces.ParseMutationStrategy(name)
			if err != nil {
				return err
			}
			engine.AddMutationStrategy(strategy)
		}
	}

	if dictPath, _ := cmd.Flags().GetString("dict"); dictPath != "" {
		dict, err := utils.LoadDictionary(dictPath)
		if err != nil {
			return fmt.Errorf("failed to load dictionary: %w", err)
		}
		engine.SetDictionary(dict)
	}

	if err := engine.LoadCorpus(config.CorpusDir); err != nil {
		logger.WithFields(map[string]interface{}{
			"dir":   config.CorpusDir,
			"error": err.Error(),
		}).Warn("Corpus load failed, starting from scratch")
	}

	engine.SetCrashCallback(func(record *interfaces.CrashRecord) {
		fmt.Printf("💥 Crash %s (exploitable: %v)\n", record.DedupKey, record.Exploitable)
	})
	engine.SetProgressCallback(func(iterations, crashes uint64) {
		fmt.Printf("⚡ %d iterations, %d crashes, %d corpus entries, %.0f exec/s\n",
			iterations, crashes, engine.CorpusSize(), engine.ExecsPerSecond())
	})

	fmt.Println("🚀 Kyra Fuzzer - Starting Fuzzing Session")
	fmt.Println("=========================================")

	startedAt := time.Now()
	if err := engine.Start(); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		for engine.Iterations() < config.MaxIterations {
			time.Sleep(500 * time.Millisecond)
		}
		close(done)
	}()

	select {
	case <-sigChan:
		fmt.Println("\n🛑 Interrupt received, stopping...")
	case <-done:
		fmt.Println("\n🏁 Iteration cap reached, stopping...")
	}

	rate := engine.ExecsPerSecond()
	if err := engine.Stop(); err != nil {
		return fmt.Errorf("failed to stop engine: %w", err)
	}

	metrics := &utils.SessionMetrics{
		Target:        adapter.Name(),
		StartedAt:     startedAt,
		FinishedAt:    time.Now(),
		Iterations:    engine.Iterations(),
		Crashes:       engine.Crashes(),
		UniqueCrashes: engine.UniqueCrashes(),
		Hangs:         engine.Hangs(),
		ExecsPerSec:   rate,
		CorpusSize:    engine.CorpusSize(),
		BlocksCovered: engine.Coverage().TotalBlocks,
	}
	if path, err := utils.WriteSessionMetrics("metrics", metrics); err != nil {
		logger.WithFields(map[string]interface{}{"error": err.Error()}).Warn("Session metrics write failed")
	} else {
		fmt.Printf("📊 Session metrics written to %s\n", path)
	}

	fmt.Printf("\n✨ Session finished: %d iterations, %d crashes, %d hangs\n",
		engine.Iterations(), engine.Crashes(), engine.Hangs())
	return nil
}

// buildAdapter picks the target adapter from the command flags
func buildAdapter(cmd *cobra.Command) (interfaces.TargetAdapter, error) {
	network, _ := cmd.Flags().GetString("network")
	if network != "" {
		address, _ := cmd.Flags().GetString("address")
		if address == "" {
			return nil, fmt.Errorf("--address is required with --network")
		}
		return execution.NewNetworkAdapter(address, network, address), nil
	}

	target, _ := cmd.Flags().GetString("target")
	if target == "" {
		return nil, fmt.Errorf("--target or --network is required")
	}
	targetArgs, _ := cmd.Flags().GetStringSlice("args")
	name := target
	if idx := strings.LastIndex(target, "/"); idx >= 0 {
		name = target[idx+1:]
	}
	return execution.NewProcessAdapter(name, target, targetArgs), nil
}

// buildLogger constructs the session logger from the persistent flags
func buildLogger(outputDir string) (*logging.Logger, error) {
	cfg := logging.DefaultLoggerConfig(outputDir)
	cfg.Level = logging.LogLevel(viper.GetString("log_level"))
	cfg.Format = logging.LogFormat(viper.GetString("log_format"))
	if maxFiles := viper.GetInt("log_max_files"); maxFiles > 0 {
		cfg.MaxFiles = maxFiles
	}
	if maxSize := viper.GetInt64("log_max_size"); maxSize > 0 {
		cfg.MaxSize = maxSize
	}
	cfg.Console = viper.GetBool("log_console")
	return logging.NewLogger(cfg)
}
