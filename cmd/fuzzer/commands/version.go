/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: version.go
Description: Version command for the Kyra Fuzzer. Prints the release
version along with the Go runtime and platform it was built for.
*/

package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCommand builds the version subcommand
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Kyra Fuzzer v%s\n", version)
			fmt.Printf("  %s, %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
