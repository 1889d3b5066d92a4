package courses

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sidkik/lessonsync/cmd/util"
	"github.com/sidkik/lessonsync/pkg/api"
	"github.com/sidkik/lessonsync/pkg/config"
	"github.com/sidkik/lessonsync/pkg/errors"
)

// Mocked for unit testing.
var (
	stdout         io.Writer = os.Stdout
	loadConfig               = config.Load
	newClient                = api.New
	promptPassword           = util.PromptPassword
)

// New creates a new `courses` command.
func New() *cobra.Command {
	var flags config.Config
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List the courses on the Mavenseed site",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(context.Background(), flags); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVarP(&flags.URL, "url", "u", "", "The URL of the Mavenseed site.")
	cmd.Flags().StringVarP(&flags.Email, "email", "e", "", "The email of the Mavenseed admin account.")
	cmd.Flags().StringVarP(&flags.Password, "password", "p", "", "The password of the Mavenseed admin account.")
	return cmd
}

func run(ctx context.Context, flags config.Config) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return errors.WithContext(err, "load config")
	}
	if err := cfg.RequireRemote(); err != nil {
		return err
	}
	if cfg.Password == "" {
		cfg.Password, err = promptPassword(fmt.Sprintf("Password for %s: ", cfg.Email))
		if err != nil {
			return err
		}
	}

	client := newClient(cfg)
	if err := client.Login(ctx, cfg.Email, cfg.Password); err != nil {
		return errors.WithContext(err, "log in")
	}

	courses, err := client.ListCourses(ctx)
	if err != nil {
		return errors.WithContext(err, "list courses")
	}

	w := tabwriter.NewWriter(stdout, 0, 10, 3, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "ID\tTITLE\tSLUG")
	for _, course := range courses {
		fmt.Fprintf(w, "%d\t%s\t%s\n", course.ID, course.Title, course.Slug)
	}
	return nil
}
