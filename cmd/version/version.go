package version

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/lessonsync/pkg/snapshot"
	"github.com/sidkik/lessonsync/pkg/version"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of lessonsync.",
		Long: "Print the version of lessonsync, and the versions of the " +
			"course cache format it reads and writes.",
		Run: func(_ *cobra.Command, args []string) {
			run()
		},
	}
}

func run() {
	fmt.Fprintf(stdout, "lessonsync version: %s\n", version.Version)
	fmt.Fprintf(stdout, "cache format:       %s (reads %s)\n",
		snapshot.FormatVersion, snapshot.SupportedFormats)
}
