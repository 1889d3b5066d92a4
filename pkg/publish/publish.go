// Package publish applies the changes computed by the sync package to the
// remote course.
package publish

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/lessonsync/pkg/api"
	"github.com/sidkik/lessonsync/pkg/errors"
	"github.com/sidkik/lessonsync/pkg/snapshot"
	"github.com/sidkik/lessonsync/pkg/sync"
)

// Options control which changes get made.
type Options struct {
	// Overwrite enables updating lessons that already exist remotely.
	// Otherwise, they're skipped.
	Overwrite bool

	// DryRun logs the changes that would be made without calling the API.
	DryRun bool
}

// Summary counts the changes made by Publish.
type Summary struct {
	ChaptersCreated int
	LessonsCreated  int
	LessonsUpdated  int
	LessonsSkipped  int
}

// Publisher makes one API call per chapter or lesson in a sync.Result.
type Publisher struct {
	client api.Client
	opts   Options
}

// New returns a Publisher that makes changes with the given client. The
// client must already be logged in.
func New(client api.Client, opts Options) *Publisher {
	return &Publisher{client: client, opts: opts}
}

// Publish creates the missing chapters, then creates and updates lessons.
// The first failed call aborts the run.
func (p *Publisher) Publish(ctx context.Context, course api.Course,
	remote snapshot.Course, res sync.Result) (Summary, error) {

	var summary Summary
	chapterIDs := map[string]int{}
	lessonCounts := map[int]int{}
	nextOrdinal := 1
	for _, chapter := range remote.Chapters {
		if _, ok := chapterIDs[chapter.Title]; !ok {
			chapterIDs[chapter.Title] = chapter.ID
		}
		lessonCounts[chapter.ID] = len(chapter.Lessons)
		if chapter.Ordinal >= nextOrdinal {
			nextOrdinal = chapter.Ordinal + 1
		}
	}

	for i, chapter := range res.ChaptersToCreate {
		// Dry runs don't have real chapter IDs, so use negative placeholders
		// that can't collide with existing chapters.
		id := -(i + 1)
		if !p.opts.DryRun {
			created, err := p.client.CreateChapter(ctx, api.NewChapter{
				CourseID: course.ID,
				Title:    chapter.Title,
				Ordinal:  nextOrdinal,
			})
			if err != nil {
				return summary, errors.WithContext(err,
					"create chapter "+chapter.Title)
			}
			id = created.ID
		}

		log.WithField("chapter", chapter.Title).
			WithField("ordinal", nextOrdinal).
			WithField("dryRun", p.opts.DryRun).
			Info("Created chapter")
		chapterIDs[chapter.Title] = id
		nextOrdinal++
		summary.ChaptersCreated++
	}

	for _, l := range res.LessonsToCreate {
		chapterID, ok := chapterIDs[l.Chapter]
		if !ok {
			return summary, errors.New("no chapter for lesson %s: %s",
				l.Slug, l.Chapter)
		}

		content, err := readContent(l.LocalLesson)
		if err != nil {
			return summary, err
		}

		lessonCounts[chapterID]++
		if !p.opts.DryRun {
			_, err := p.client.CreateLesson(ctx, api.NewLesson{
				LessonableType: api.LessonableChapter,
				LessonableID:   chapterID,
				Slug:           l.Slug,
				Title:          l.Title,
				Content:        content,
				Ordinal:        lessonCounts[chapterID],
			})
			if err != nil {
				return summary, errors.WithContext(err, "create lesson "+l.Slug)
			}
		}

		log.WithField("lesson", l.Slug).
			WithField("chapter", l.Chapter).
			WithField("dryRun", p.opts.DryRun).
			Info("Created lesson")
		summary.LessonsCreated++
	}

	for _, l := range res.LessonsToUpdate {
		if !p.opts.Overwrite {
			log.WithField("lesson", l.Slug).
				Info("Skipping existing lesson. Run without --skip-existing to update it")
			summary.LessonsSkipped++
			continue
		}

		content, err := readContent(l.LocalLesson)
		if err != nil {
			return summary, err
		}

		if !p.opts.DryRun {
			_, err := p.client.UpdateLesson(ctx, l.LessonID, api.LessonUpdate{
				Title:   l.Title,
				Content: content,
			})
			if err != nil {
				return summary, errors.WithContext(err, "update lesson "+l.Slug)
			}
		}

		log.WithField("lesson", l.Slug).
			WithField("id", l.LessonID).
			WithField("dryRun", p.opts.DryRun).
			Info("Updated lesson")
		summary.LessonsUpdated++
	}
	return summary, nil
}

func readContent(l sync.LocalLesson) (string, error) {
	content, err := l.File.Content()
	if err != nil {
		return "", errors.WithContext(err, "read "+l.File.Path)
	}
	return content, nil
}
