package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/buger/goterm"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/lessonsync/cmd/util"
	"github.com/sidkik/lessonsync/pkg/api"
	"github.com/sidkik/lessonsync/pkg/config"
	"github.com/sidkik/lessonsync/pkg/errors"
	"github.com/sidkik/lessonsync/pkg/lesson"
	"github.com/sidkik/lessonsync/pkg/publish"
	"github.com/sidkik/lessonsync/pkg/snapshot"
	"github.com/sidkik/lessonsync/pkg/sync"
)

// Mocked for unit testing.
var (
	stdout          io.Writer = os.Stdout
	loadConfig                = config.Load
	newClient                 = api.New
	promptPassword            = util.PromptPassword
	notifyInterrupt           = func(c chan<- os.Signal) { signal.Notify(c, os.Interrupt) }
)

type options struct {
	flags        config.Config
	skipExisting bool
	listCourses  bool
	refresh      bool
	dryRun       bool
}

// New creates a new `publish` command.
func New() *cobra.Command {
	var opts options
	overwrite := true
	cmd := &cobra.Command{
		Use:   "publish COURSE FILE...",
		Short: "Upload lesson files to a Mavenseed course",
		Long: "Upload HTML lesson files to a Mavenseed course.\n\n" +
			"COURSE is the title or URL slug of the course. Each file's folder " +
			"is the chapter it belongs to, and its file name is the lesson's " +
			"slug. Chapters and lessons that don't exist yet are created. " +
			"Lessons that already exist are updated unless --skip-existing is set.",
		Args: func(_ *cobra.Command, args []string) error {
			if opts.listCourses {
				return nil
			}
			if len(args) < 2 {
				return errors.NewFriendlyError(
					"A course and at least one lesson file are required.")
			}
			return nil
		},
		Run: func(_ *cobra.Command, args []string) {
			opts.skipExisting = opts.skipExisting || !overwrite

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go cancelOnInterrupt(ctx, cancel)

			if err := run(ctx, opts, args); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().BoolVarP(&overwrite, "overwrite", "o", true,
		"Update lessons that already exist on the course.")
	cmd.Flags().BoolVarP(&opts.skipExisting, "skip-existing", "s", false,
		"Leave lessons that already exist on the course untouched. "+
			"Same as --overwrite=false.")
	cmd.Flags().StringVarP(&opts.flags.URL, "url", "u", "",
		"The URL of the Mavenseed site. Defaults to $"+config.URLEnvKey+".")
	cmd.Flags().StringVarP(&opts.flags.Email, "email", "e", "",
		"The email of the Mavenseed admin account. Defaults to $"+config.EmailEnvKey+".")
	cmd.Flags().StringVarP(&opts.flags.Password, "password", "p", "",
		"The password of the Mavenseed admin account. Defaults to $"+config.PasswordEnvKey+".")
	cmd.Flags().StringVar(&opts.flags.CachePath, "cache", "",
		"The path of the course cache. Defaults to $"+config.CachePathEnvKey+
			" or "+config.DefaultCachePath+".")
	cmd.Flags().BoolVar(&opts.listCourses, "list-courses", false,
		"Print the ID and title of every course and exit.")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false,
		"Download the course data again, even if it's cached.")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false,
		"Print the changes without making them.")
	return cmd
}

// cancelOnInterrupt cancels the run on Ctrl-C. It returns when either the
// user interrupts or ctx is done.
func cancelOnInterrupt(ctx context.Context, cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	notifyInterrupt(signals)
	defer signal.Stop(signals)

	select {
	case <-signals:
		log.Info("Interrupted. Stopping after the current request.")
		cancel()
	case <-ctx.Done():
	}
}

func run(ctx context.Context, opts options, args []string) error {
	var local sync.LocalSnapshot
	if !opts.listCourses {
		var err error
		local, err = readLessons(args[1:])
		if err != nil {
			return err
		}
	}

	cfg, err := loadConfig(opts.flags)
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

	if opts.listCourses {
		for _, course := range courses {
			fmt.Fprintf(stdout, "%d - %s\n", course.ID, course.Title)
		}
		return nil
	}

	course, err := sync.ResolveCourse(courses, args[0])
	if err != nil {
		return err
	}
	log.WithField("id", course.ID).WithField("title", course.Title).
		Debug("Resolved course")

	remote, err := getRemoteCourse(ctx, snapshot.NewCache(cfg.CachePath, client),
		course.Title, opts.refresh)
	if err != nil {
		return err
	}

	res := local.Diff(remote)
	printPlan(stdout, res, !opts.skipExisting)
	if res.Empty() {
		fmt.Fprintln(stdout, "Nothing to publish.")
		return nil
	}

	summary, err := publish.New(client, publish.Options{
		Overwrite: !opts.skipExisting,
		DryRun:    opts.dryRun,
	}).Publish(ctx, course, remote, res)
	if err != nil {
		return errors.WithContext(err, "publish")
	}

	if opts.dryRun {
		fmt.Fprint(stdout, "Dry run. ")
	}
	fmt.Fprintf(stdout, "Created %d chapters and %d lessons. Updated %d lessons. Skipped %d lessons.\n",
		summary.ChaptersCreated, summary.LessonsCreated,
		summary.LessonsUpdated, summary.LessonsSkipped)
	return nil
}

// readLessons validates the given paths, and groups the valid lessons into
// chapters.
func readLessons(paths []string) (sync.LocalSnapshot, error) {
	valid, invalid := lesson.Validate(paths)
	for _, path := range invalid {
		log.WithField("path", path).Warn("Skipping file that isn't an HTML lesson")
	}
	if len(valid) == 0 {
		return nil, errors.ErrNoValidLessonFiles
	}

	local, err := sync.NewLocalSnapshot(valid)
	if err != nil {
		return nil, errors.WithContext(err, "read lessons")
	}

	for slug, paths := range local.DuplicateSlugs() {
		log.WithField("slug", slug).WithField("paths", paths).
			Warn("Multiple files share a slug. They will all be published to the same lesson.")
	}
	return local, nil
}

func getRemoteCourse(ctx context.Context, cache *snapshot.Cache, title string,
	refresh bool) (snapshot.Course, error) {

	exists, err := cache.Exists()
	if err != nil {
		return snapshot.Course{}, errors.WithContext(err, "check cache")
	}

	var snap snapshot.Snapshot
	if refresh || !exists {
		pp := util.NewProgressPrinter(stdout, "Downloading course data from Mavenseed..")
		go pp.Run()
		snap, err = cache.Refresh(ctx)
		pp.StopWithPrint(util.ClearProgress)
		if err != nil {
			return snapshot.Course{}, errors.WithContext(err, "refresh cache")
		}
		if len(snap) == 0 {
			return snapshot.Course{}, errors.ErrEmptyCache
		}
	} else {
		snap, err = cache.Get(ctx)
		if err != nil {
			return snapshot.Course{}, errors.WithContext(err, "read cache")
		}
	}

	remote, ok := snap.Course(title)
	if !ok {
		return snapshot.Course{}, errors.NewFriendlyError(
			"The course %q isn't in the cache at %s.\n"+
				"Run `lessonsync cache refresh` or pass --refresh to download it.",
			title, cache.Path())
	}
	return remote, nil
}

func printPlan(out io.Writer, res sync.Result, overwrite bool) {
	w := tabwriter.NewWriter(out, 0, 10, 3, ' ', 0)
	defer w.Flush()

	if len(res.ChaptersToCreate) != 0 {
		fmt.Fprintln(w, goterm.Color("Chapters to create:", goterm.GREEN))
		for _, chapter := range res.ChaptersToCreate {
			fmt.Fprintf(w, "  %s\n", chapter.Title)
		}
		fmt.Fprintln(w)
	}

	if len(res.LessonsToCreate) != 0 {
		fmt.Fprintln(w, goterm.Color("Lessons to create:", goterm.GREEN))
		fmt.Fprintln(w, "  SLUG\tTITLE\tCHAPTER\tFILE")
		for _, l := range res.LessonsToCreate {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", l.Slug, l.Title, l.Chapter, l.File.Path)
		}
		fmt.Fprintln(w)
	}

	if len(res.LessonsToUpdate) != 0 {
		header := goterm.Color("Lessons to update:", goterm.YELLOW)
		if !overwrite {
			header = goterm.Color("Existing lessons to skip (run without --skip-existing to update them):",
				goterm.BLACK)
		}
		fmt.Fprintln(w, header)
		fmt.Fprintln(w, "  SLUG\tID\tCHAPTER\tFILE")
		for _, l := range res.LessonsToUpdate {
			fmt.Fprintf(w, "  %s\t%d\t%s\t%s\n", l.Slug, l.LessonID, l.Chapter, l.File.Path)
		}
		fmt.Fprintln(w)
	}
}
