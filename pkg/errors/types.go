package errors

import (
	"fmt"
)

// Exit codes for the terminal conditions of a run. Each category gets its
// own code so that scripts can tell them apart.
const (
	ExitNoValidLessonFiles = 1
	ExitCourseNotFound     = 2
	ExitCacheEmpty         = 3
	ExitFailure            = 4
)

// ExitCoder is implemented by errors that terminate the process with a
// specific exit code.
type ExitCoder interface {
	ExitCode() int
}

// ExitCode returns the exit code for err, looking through the context chain.
func ExitCode(err error) int {
	if coder, ok := RootCause(err).(ExitCoder); ok {
		return coder.ExitCode()
	}
	return ExitFailure
}

type terminalError struct {
	msg  string
	code int
}

func (err terminalError) Error() string {
	return err.msg
}

func (err terminalError) FriendlyMessage() string {
	return err.msg
}

func (err terminalError) ExitCode() int {
	return err.code
}

var (
	// ErrNoValidLessonFiles is returned when none of the given paths is a
	// lesson file.
	ErrNoValidLessonFiles error = terminalError{
		"No valid lesson files found to upload in the provided list.",
		ExitNoValidLessonFiles,
	}

	// ErrEmptyCache is returned when the snapshot cache exists but contains
	// no courses.
	ErrEmptyCache error = terminalError{
		"The course cache is empty. Run `lessonsync cache refresh` to rebuild it.",
		ExitCacheEmpty,
	}
)

// CourseNotFound is returned when no remote course matches the title or
// slug given by the user.
type CourseNotFound struct {
	Query string
}

func (err CourseNotFound) Error() string {
	return fmt.Sprintf("No course found with the given title or url slug: %q.", err.Query)
}

// FriendlyMessage implements FriendlyError.
func (err CourseNotFound) FriendlyMessage() string {
	return err.Error() + "\nRun `lessonsync courses` to list the available courses."
}

// ExitCode implements ExitCoder.
func (err CourseNotFound) ExitCode() int {
	return ExitCourseNotFound
}

// MissingFieldError represents a missing required field.
type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", err.Field)
}

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// HTTPError is returned when the remote API responds with an unexpected
// status code.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (err HTTPError) Error() string {
	return fmt.Sprintf("%s %s: server responded with %d (%s)",
		err.Method, err.URL, err.StatusCode, err.Body)
}

// Temporary reports whether retrying the request may succeed.
func (err HTTPError) Temporary() bool {
	return err.StatusCode == 429 || err.StatusCode >= 500
}
