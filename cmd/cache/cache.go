package cache

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/lessonsync/cmd/util"
	"github.com/sidkik/lessonsync/pkg/api"
	"github.com/sidkik/lessonsync/pkg/config"
	"github.com/sidkik/lessonsync/pkg/errors"
	"github.com/sidkik/lessonsync/pkg/snapshot"
)

// Mocked for unit testing.
var (
	stdout         io.Writer = os.Stdout
	loadConfig               = config.Load
	newClient                = api.New
	promptPassword           = util.PromptPassword
	promptYesOrNo            = util.PromptYesOrNo
)

// New creates a new `cache` command.
func New() *cobra.Command {
	var flags config.Config
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local copy of the Mavenseed courses",
		Long: "lessonsync keeps a copy of the courses, chapters and lessons on " +
			"the Mavenseed site so that publishing doesn't have to download " +
			"them every time. The copy isn't updated automatically.",
	}
	cmd.PersistentFlags().StringVar(&flags.CachePath, "cache", "",
		"The path of the course cache.")

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Download the courses again and overwrite the cache",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			if err := refresh(context.Background(), flags); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	refreshCmd.Flags().StringVarP(&flags.URL, "url", "u", "", "The URL of the Mavenseed site.")
	refreshCmd.Flags().StringVarP(&flags.Email, "email", "e", "", "The email of the Mavenseed admin account.")
	refreshCmd.Flags().StringVarP(&flags.Password, "password", "p", "", "The password of the Mavenseed admin account.")

	var force bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the cache",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			if err := clearCache(flags, force); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	clearCmd.Flags().BoolVarP(&force, "force", "f", false, "Don't ask for confirmation.")

	cmd.AddCommand(refreshCmd, clearCmd)
	return cmd
}

func refresh(ctx context.Context, flags config.Config) error {
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

	pp := util.NewProgressPrinter(stdout, "Downloading course data from Mavenseed..")
	go pp.Run()
	snap, err := snapshot.NewCache(cfg.CachePath, client).Refresh(ctx)
	pp.StopWithPrint(util.ClearProgress)
	if err != nil {
		return errors.WithContext(err, "refresh cache")
	}

	fmt.Fprintf(stdout, "Cached %d courses and %d lessons in %s\n",
		len(snap), snap.LessonCount(), cfg.CachePath)
	return nil
}

func clearCache(flags config.Config, force bool) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return errors.WithContext(err, "load config")
	}

	cache := snapshot.NewCache(cfg.CachePath, nil)
	exists, err := cache.Exists()
	if err != nil {
		return errors.WithContext(err, "check cache")
	}
	if !exists {
		fmt.Fprintf(stdout, "No cache at %s\n", cache.Path())
		return nil
	}

	if !force {
		ok, err := promptYesOrNo(fmt.Sprintf("Delete the cache at %s?", cache.Path()))
		if err != nil {
			return errors.WithContext(err, "prompt")
		}
		if !ok {
			fmt.Fprintln(stdout, "Aborted.")
			return nil
		}
	}

	if err := cache.Clear(); err != nil {
		return errors.WithContext(err, "clear cache")
	}
	fmt.Fprintf(stdout, "Deleted %s\n", cache.Path())
	return nil
}
