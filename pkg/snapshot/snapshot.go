// Package snapshot builds and caches an offline copy of the remote course
// tree. The snapshot is the baseline that local lessons are reconciled
// against, so it's downloaded once and then trusted until it's refreshed.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/lessonsync/pkg/api"
	"github.com/sidkik/lessonsync/pkg/errors"
)

// Snapshot maps the title of each course to its chapters, in the order
// returned by the API.
type Snapshot map[string][]Chapter

// Chapter is a remote chapter along with the lessons that belong to it.
type Chapter struct {
	api.Chapter
	Lessons []api.Lesson
}

// Course is the snapshot of a single course.
type Course struct {
	Title    string
	Chapters []Chapter
}

// Course returns the snapshot of the course with the given title.
func (s Snapshot) Course(title string) (Course, bool) {
	chapters, ok := s[title]
	if !ok {
		return Course{}, false
	}
	return Course{Title: title, Chapters: chapters}, true
}

// Lessons returns every lesson in the course, chapter by chapter.
func (c Course) Lessons() []api.Lesson {
	var lessons []api.Lesson
	for _, chapter := range c.Chapters {
		lessons = append(lessons, chapter.Lessons...)
	}
	return lessons
}

// LessonCount returns the number of lessons across all courses.
func (s Snapshot) LessonCount() (count int) {
	for _, chapters := range s {
		for _, chapter := range chapters {
			count += len(chapter.Lessons)
		}
	}
	return count
}

// MarshalJSON flattens the chapter's lessons into the chapter record.
func (c Chapter) MarshalJSON() ([]byte, error) {
	chapterBytes, err := json.Marshal(c.Chapter)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(chapterBytes, &fields); err != nil {
		return nil, err
	}

	lessons := c.Lessons
	if lessons == nil {
		lessons = []api.Lesson{}
	}
	fields["lessons"], err = json.Marshal(lessons)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Chapter) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &c.Chapter); err != nil {
		return err
	}
	delete(c.Chapter.Metadata, "lessons")
	if len(c.Chapter.Metadata) == 0 {
		c.Chapter.Metadata = nil
	}

	var withLessons struct {
		Lessons []api.Lesson `json:"lessons"`
	}
	if err := json.Unmarshal(data, &withLessons); err != nil {
		return err
	}
	c.Lessons = withLessons.Lessons
	return nil
}

// Build downloads every course, chapter and lesson on the site.
//
// Lessons can only be listed site wide, so all lessons are fetched once and
// then joined to their chapters locally, rather than making a request per
// chapter. Lesson contents aren't needed for reconciliation, and are
// dropped to keep the cache small.
func Build(ctx context.Context, client api.Client) (Snapshot, error) {
	log.Info("Downloading all lessons, chapters, and course data. This may take a while.")

	lessonsByChapter := map[int][]api.Lesson{}
	pages := api.NewLessonPages(client)
	for {
		log.Debugf("Getting lessons page %d", pages.Page())
		lessons, ok, err := pages.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		for _, lesson := range lessons {
			if lesson.LessonableType != "" && lesson.LessonableType != api.LessonableChapter {
				continue
			}
			lesson.Content = ""
			lessonsByChapter[lesson.LessonableID] = append(
				lessonsByChapter[lesson.LessonableID], lesson)
		}
	}

	courses, err := client.ListCourses(ctx)
	if err != nil {
		return nil, errors.WithContext(err, "list courses")
	}

	snapshot := Snapshot{}
	for _, course := range courses {
		if _, ok := snapshot[course.Title]; ok {
			log.WithField("course", course.Title).Warn(
				"Multiple courses share the same title. Only the first will be used.")
			continue
		}

		log.WithField("course", course.ID).Debug("Getting chapters")
		chapters, err := client.ListChapters(ctx, course.ID)
		if err != nil {
			return nil, errors.WithContext(err, fmt.Sprintf("list chapters of %q", course.Title))
		}

		courseChapters := []Chapter{}
		for _, chapter := range chapters {
			courseChapters = append(courseChapters, Chapter{
				Chapter: chapter,
				Lessons: lessonsByChapter[chapter.ID],
			})
		}
		snapshot[course.Title] = courseChapters
	}
	return snapshot, nil
}
