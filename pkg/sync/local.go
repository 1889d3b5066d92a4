package sync

import (
	"sort"

	"github.com/sidkik/lessonsync/pkg/errors"
	"github.com/sidkik/lessonsync/pkg/lesson"
)

// A LocalLesson is a validated lesson file on the user's machine, along with
// the identifiers used to match it against the remote course.
type LocalLesson struct {
	File lesson.File
	lesson.Identifier

	// Chapter is the normalized name of the folder containing the file.
	Chapter string
}

// LocalSnapshot is the set of local lessons, grouped by chapter.
type LocalSnapshot map[string][]LocalLesson

// NewLocalSnapshot derives the identifiers of each file and groups the files
// by chapter. Within a chapter, lessons keep the order they were given in.
func NewLocalSnapshot(files []lesson.File) (LocalSnapshot, error) {
	local := LocalSnapshot{}
	for _, f := range files {
		f := f
		id, err := f.Identifier()
		if err != nil {
			return nil, errors.WithContext(err, f.Path)
		}

		local.Add(LocalLesson{
			File:       f,
			Identifier: id,
			Chapter:    lesson.ChapterName(f.Folder()),
		})
	}
	return local, nil
}

// Add adds l to its chapter.
func (local LocalSnapshot) Add(l LocalLesson) {
	local[l.Chapter] = append(local[l.Chapter], l)
}

// Chapters returns the chapter names in sorted order.
func (local LocalSnapshot) Chapters() []string {
	var names []string
	for name := range local {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lessons returns all lessons, ordered by chapter.
func (local LocalSnapshot) Lessons() []LocalLesson {
	var lessons []LocalLesson
	for _, chapter := range local.Chapters() {
		lessons = append(lessons, local[chapter]...)
	}
	return lessons
}

// DuplicateSlugs returns the paths of the lesson files that share each slug,
// for every slug used by more than one file. Such files all match the same
// remote lesson.
func (local LocalSnapshot) DuplicateSlugs() map[string][]string {
	paths := map[string][]string{}
	for _, l := range local.Lessons() {
		paths[l.Slug] = append(paths[l.Slug], l.File.Path)
	}

	duplicates := map[string][]string{}
	for slug, slugPaths := range paths {
		if len(slugPaths) > 1 {
			duplicates[slug] = slugPaths
		}
	}
	return duplicates
}
