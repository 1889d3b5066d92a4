package util

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/lessonsync/ci/fake"
	"github.com/sidkik/lessonsync/pkg/config"
	"github.com/sidkik/lessonsync/pkg/errors"
)

// Credentials accepted by the fake site.
const (
	Email    = "admin@example.com"
	Password = "hunter2"
)

// commandTimeout bounds each run of the lessonsync binary.
const commandTimeout = time.Minute

// TestHelper contains methods commonly used during integration tests. Each
// helper has its own fake Mavenseed site, home directory, and course
// directory.
type TestHelper struct {
	Site *fake.Server

	// Root contains the home directory, the lesson files, and the cache.
	Root      string
	CachePath string
}

// Result is the outcome of running the lessonsync binary.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// NewTestHelper creates a new TestHelper.
func NewTestHelper() (*TestHelper, error) {
	root, err := ioutil.TempDir("", "lessonsync-ci")
	if err != nil {
		return nil, errors.WithContext(err, "create root")
	}

	return &TestHelper{
		Site:      fake.NewServer(Email, Password),
		Root:      root,
		CachePath: filepath.Join(root, "cache", "courses.json"),
	}, nil
}

// Close stops the fake site and removes the test's files.
func (helper *TestHelper) Close() {
	helper.Site.Close()
	if err := os.RemoveAll(helper.Root); err != nil {
		log.WithError(err).WithField("path", helper.Root).Warn("Failed to clean up")
	}
}

// WriteLesson writes a lesson file relative to the course directory, and
// returns its absolute path.
func (helper *TestHelper) WriteLesson(path, contents string) (string, error) {
	path = filepath.Join(helper.Root, "course", path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.WithContext(err, "create chapter directory")
	}
	if err := ioutil.WriteFile(path, []byte(contents), 0644); err != nil {
		return "", errors.WithContext(err, "write")
	}
	return path, nil
}

// Run runs the lessonsync binary with the given arguments against the fake
// site. A non-zero exit code isn't an error.
func (helper *TestHelper) Run(ctx context.Context, args ...string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "lessonsync", args...)
	cmd.Env = append(os.Environ(),
		"HOME="+helper.Root,
		config.URLEnvKey+"="+helper.Site.URL(),
		config.EmailEnvKey+"="+Email,
		config.PasswordEnvKey+"="+Password,
		config.CachePathEnvKey+"="+helper.CachePath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.WithField("args", args).Info("Running lessonsync")
	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if exitErr, ok := err.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}
