package sync

import (
	"github.com/sidkik/lessonsync/pkg/api"
	"github.com/sidkik/lessonsync/pkg/snapshot"
)

// NewChapter is a chapter that doesn't exist on the remote course yet.
type NewChapter struct {
	Title string
}

// LessonToCreate is a local lesson that has no remote counterpart.
type LessonToCreate struct {
	LocalLesson
}

// LessonToUpdate is a local lesson whose slug matches an existing remote
// lesson.
type LessonToUpdate struct {
	LocalLesson

	// LessonID is the ID of the matching remote lesson.
	LessonID int
}

// Result contains the operations needed to bring the remote course in line
// with the local lessons. Every local lesson is either in LessonsToCreate or
// in LessonsToUpdate.
type Result struct {
	ChaptersToCreate []NewChapter
	LessonsToCreate  []LessonToCreate
	LessonsToUpdate  []LessonToUpdate
}

// Empty returns whether there is nothing to do.
func (res Result) Empty() bool {
	return len(res.ChaptersToCreate) == 0 &&
		len(res.LessonsToCreate) == 0 &&
		len(res.LessonsToUpdate) == 0
}

// Diff returns the chapters and lessons that need to be created or updated in
// the remote course. The course snapshot isn't modified.
func (local LocalSnapshot) Diff(course snapshot.Course) (res Result) {
	remoteLessons := course.Lessons()
	for _, name := range local.Chapters() {
		if _, ok := FindChapter(course.Chapters, name); !ok {
			res.ChaptersToCreate = append(res.ChaptersToCreate, NewChapter{Title: name})
		}

		for _, l := range local[name] {
			remote, ok := FindLesson(remoteLessons, l.Slug)
			if !ok {
				res.LessonsToCreate = append(res.LessonsToCreate, LessonToCreate{l})
				continue
			}
			res.LessonsToUpdate = append(res.LessonsToUpdate, LessonToUpdate{
				LocalLesson: l,
				LessonID:    remote.ID,
			})
		}
	}
	return res
}

// FindChapter returns the first chapter with the given title.
func FindChapter(chapters []snapshot.Chapter, title string) (snapshot.Chapter, bool) {
	for _, chapter := range chapters {
		if chapter.Title == title {
			return chapter, true
		}
	}
	return snapshot.Chapter{}, false
}

// FindLesson returns the first lesson with the given slug.
func FindLesson(lessons []api.Lesson, slug string) (api.Lesson, bool) {
	for _, l := range lessons {
		if l.Slug == slug {
			return l, true
		}
	}
	return api.Lesson{}, false
}
