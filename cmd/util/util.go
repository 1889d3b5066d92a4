package util

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/sidkik/lessonsync/pkg/errors"
)

// ClearProgress is an escape sequence that erases the line written by a
// ProgressPrinter.
const ClearProgress = "\033[2K\r"

// Mocked for unit testing.
var (
	exit  = os.Exit
	stdin io.Reader = os.Stdin
)

// HandleFatalError prints the error and exits the process with the exit code
// that matches the error's category. Friendly errors are printed without
// their context.
func HandleFatalError(err error) {
	if msg, ok := errors.GetFriendlyMessage(err); ok {
		fmt.Fprintln(os.Stderr, msg)
		log.WithError(err).Debug("Fatal error")
	} else {
		log.WithError(err).Error("Fatal error")
	}
	exit(errors.ExitCode(err))
}

// HandlePanic logs the panic and its stack trace before exiting. It should be
// deferred at the top of main.
func HandlePanic() {
	if r := recover(); r != nil {
		log.WithField("panic", r).
			WithField("stack", string(debug.Stack())).
			Error("Unexpected panic")
		exit(errors.ExitFailure)
	}
}

// PromptYesOrNo asks the user a yes or no question on stdout, and returns
// whether they answered yes.
func PromptYesOrNo(prompt string) (bool, error) {
	fmt.Printf("%s (y/N) ", prompt)
	reply, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.WithContext(err, "read reply")
	}

	switch strings.ToLower(strings.TrimSpace(reply)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// PromptPassword reads a password from the terminal without echoing it.
func PromptPassword(prompt string) (string, error) {
	if !terminal.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.NewFriendlyError("A password is required.\n" +
			"Set it with --password or the MAVENSEED_PASSWORD environment variable.")
	}

	fmt.Print(prompt)
	password, err := terminal.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", errors.WithContext(err, "read password")
	}
	return string(password), nil
}

// ProgressPrinter prints a message followed by a growing line of dots until
// it's stopped.
type ProgressPrinter struct {
	out      io.Writer
	msg      string
	interval time.Duration

	stop    chan struct{}
	done    chan struct{}
	stopped sync.Once
}

// NewProgressPrinter returns a ProgressPrinter that writes to out. Run must be
// called to start printing.
func NewProgressPrinter(out io.Writer, msg string) *ProgressPrinter {
	return &ProgressPrinter{
		out:      out,
		msg:      msg,
		interval: 500 * time.Millisecond,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run prints the progress message until Stop is called. It blocks, so it
// should be run in a goroutine.
func (pp *ProgressPrinter) Run() {
	defer close(pp.done)

	fmt.Fprint(pp.out, pp.msg)
	ticker := time.NewTicker(pp.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fmt.Fprint(pp.out, ".")
		case <-pp.stop:
			return
		}
	}
}

// Stop stops printing, and moves the cursor to the next line.
func (pp *ProgressPrinter) Stop() {
	pp.StopWithPrint("\n")
}

// StopWithPrint stops printing, and then prints the given string. It's safe
// to call multiple times.
func (pp *ProgressPrinter) StopWithPrint(s string) {
	pp.stopped.Do(func() {
		close(pp.stop)
		<-pp.done
		fmt.Fprint(pp.out, s)
	})
}
