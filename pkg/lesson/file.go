// Package lesson turns the paths given on the command line into lesson files,
// and derives the identifiers used to match them against the remote course:
// the lesson slug and title, and the name of the chapter the lesson belongs
// to.
package lesson

import (
	"path/filepath"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/lessonsync/pkg/errors"
)

// Extension is the extension of lesson files. It's compared
// case-insensitively.
const Extension = ".html"

// fs is where lesson files are read from. Tests use a MemMapFs.
var fs = afero.NewOsFs()

var headingPattern = regexp.MustCompile(`(?is)<h1(\s[^>]*)?>.*?</h1>`)

// File is an HTML lesson document on the user's machine.
type File struct {
	// Path is the path to the file as given by the user.
	Path string

	content *string
}

// NewFile returns the lesson file at path. The file isn't read until its
// contents are needed.
func NewFile(path string) File {
	return File{Path: path}
}

// Folder returns the name of the directory containing the file. It's used to
// group lessons into chapters.
func (f File) Folder() string {
	return filepath.Base(filepath.Dir(f.Path))
}

// Content returns the contents of the file, reading it from disk the first
// time it's called.
func (f *File) Content() (string, error) {
	if f.content != nil {
		return *f.content, nil
	}

	contents, err := afero.ReadFile(fs, f.Path)
	if err != nil {
		return "", errors.WithContext(err, "read lesson")
	}
	str := string(contents)
	f.content = &str
	return str, nil
}

// Identifier derives the slug and title of the lesson.
func (f *File) Identifier() (Identifier, error) {
	content, err := f.Content()
	if err != nil {
		return Identifier{}, err
	}

	slug := Slug(f.Path)
	return Identifier{Slug: slug, Title: Title(slug, content)}, nil
}

// Validate returns the paths that are valid lesson files, and the paths that
// were rejected. A lesson file must exist, have the .html extension, and
// contain a top level heading. Each file is read once; the contents are
// kept in the returned Files.
func Validate(paths []string) (valid []File, invalid []string) {
	for _, path := range paths {
		f := NewFile(path)
		ok, err := f.isLesson()
		if err != nil {
			log.WithError(err).WithField("path", path).Debug("Failed to check lesson file")
		}
		if !ok {
			invalid = append(invalid, path)
			continue
		}
		valid = append(valid, f)
	}
	return valid, invalid
}

func (f *File) isLesson() (bool, error) {
	if !strings.EqualFold(filepath.Ext(f.Path), Extension) {
		return false, nil
	}

	info, err := fs.Stat(f.Path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}

	content, err := f.Content()
	if err != nil {
		return false, err
	}
	return headingPattern.MatchString(content), nil
}
