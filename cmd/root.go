package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/lessonsync/cmd/cache"
	configCmd "github.com/sidkik/lessonsync/cmd/config"
	"github.com/sidkik/lessonsync/cmd/courses"
	"github.com/sidkik/lessonsync/cmd/publish"
	"github.com/sidkik/lessonsync/cmd/util"
	"github.com/sidkik/lessonsync/cmd/version"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "LESSONSYNC_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	rootCmd := &cobra.Command{
		Use:          "lessonsync",
		Short:        "Publish HTML lessons to Mavenseed courses",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		cache.New(),
		configCmd.New(),
		courses.New(),
		publish.New(),
		version.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}
