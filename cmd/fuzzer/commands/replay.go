/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: replay.go
Description: Replay command for the Kyra Fuzzer. Feeds a saved crash input
back through the target adapter and reports whether the fault reproduces,
optionally re-running it several times to measure stability.
*/

package commands

import (
	"context"
	"fmt"
	"io/ioutil"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kleascm/kyra-fuzzer/pkg/analysis"
	"github.com/kleascm/kyra-fuzzer/pkg/execution"
	"github.com/kleascm/kyra-fuzzer/pkg/interfaces"
)

// NewReplayCommand builds the replay subcommand
func NewReplayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <crash-file>",
		Short: "Replay a saved crash input against the target",
		Long: `Replay executes a single saved input against the target binary and
prints the classification. Use it to confirm a persisted crash still
reproduces after a target change.`,
		Args: cobra.ExactArgs(1),
		RunE: runReplay,
	}

	cmd.Flags().String("target", "", "Path to target binary (required)")
	cmd.Flags().StringSlice("args", nil, "Target arguments (use @@ for the input file)")
	cmd.Flags().Uint64("timeout-ms", 5000, "Execution timeout in milliseconds")
	cmd.Flags().Int("verify", 0, "Re-run the input N times and report reproduction stability")
	cmd.MarkFlagRequired("target")

	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	input, err := ioutil.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read crash input: %w", err)
	}

	target, _ := cmd.Flags().GetString("target")
	targetArgs, _ := cmd.Flags().GetStringSlice("args")
	timeoutMs, _ := cmd.Flags().GetUint64("timeout-ms")
	verify, _ := cmd.Flags().GetInt("verify")

	name := target
	if idx := strings.LastIndex(target, "/"); idx >= 0 {
		name = target[idx+1:]
	}
	adapter := execution.NewProcessAdapter(name, target, targetArgs)
	if err := adapter.Setup(); err != nil {
		return fmt.Errorf("target setup failed: %w", err)
	}
	defer adapter.Cleanup()

	fmt.Printf("🔁 Replaying %s (%d bytes) against %s\n", args[0], len(input), target)

	outcome, err := adapter.Execute(context.Background(), input, time.Duration(timeoutMs)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	fmt.Printf("Classification: %s (%.2fms)\n", outcome.Classification, float64(outcome.Duration.Microseconds())/1000)
	if outcome.Classification == interfaces.ClassCrash && outcome.Fault != nil {
		fmt.Printf("Fault code:     0x%08X\n", outcome.Fault.FaultCode)
		if outcome.Fault.FunctionName != "" {
			fmt.Printf("Function:       %s\n", outcome.Fault.FunctionName)
		}
		fmt.Printf("Stack frames:   %d\n", len(outcome.Fault.CallStack))
		fmt.Println("✅ Crash reproduced")
	} else if outcome.Classification == interfaces.ClassHang {
		fmt.Println("⏳ Target hung on the input")
	} else {
		fmt.Println("❌ Crash did not reproduce")
	}

	if verify > 0 {
		fmt.Printf("\n🔬 Verifying over %d runs...\n", verify)
		reproducer := analysis.NewReproducer(adapter, verify)
		result, err := reproducer.Verify(context.Background(), input, time.Duration(timeoutMs)*time.Millisecond)
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		fmt.Printf("Reproduction:   %d/%d (%.0f%%)\n", result.Crashes, result.Attempts, result.Rate*100)
		if result.Hangs > 0 {
			fmt.Printf("Hangs:          %d\n", result.Hangs)
		}
		if result.Reproduced() {
			fmt.Printf("Dedup key:      %s\n", result.DedupKey)
			if result.Stable {
				fmt.Println("✅ Fault is stable across runs")
			} else {
				fmt.Println("⚠️ Fault varies between runs")
			}
		}
	}
	return nil
}
