package publish

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/lessonsync/pkg/api"
	"github.com/sidkik/lessonsync/pkg/api/mocks"
	"github.com/sidkik/lessonsync/pkg/errors"
	"github.com/sidkik/lessonsync/pkg/lesson"
	"github.com/sidkik/lessonsync/pkg/snapshot"
	"github.com/sidkik/lessonsync/pkg/sync"
)

var (
	course = api.Course{ID: 1, Title: "Intro", Slug: "intro-101"}
	remote = snapshot.Course{
		Title: "Intro",
		Chapters: []snapshot.Chapter{
			{
				Chapter: api.Chapter{ID: 10, CourseID: 1, Title: "Basics", Ordinal: 1},
				Lessons: []api.Lesson{{ID: 100, LessonableID: 10, Slug: "intro"}},
			},
		},
	}
)

func writeLessons(t *testing.T) (dir string, res sync.Result) {
	dir, err := ioutil.TempDir("", "lessonsync-publish-test")
	require.NoError(t, err)

	files := map[string]string{
		"01-basics/a.html":     "<title>Lesson A</title><h1>A</h1>",
		"01-basics/intro.html": "<h1>Intro</h1>",
		"02-loops/while.html":  "<h1>While</h1>",
	}
	var paths []string
	for _, name := range []string{"01-basics/a.html", "01-basics/intro.html", "02-loops/while.html"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, ioutil.WriteFile(path, []byte(files[name]), 0644))
		paths = append(paths, path)
	}

	valid, invalid := lesson.Validate(paths)
	require.Empty(t, invalid)

	local, err := sync.NewLocalSnapshot(valid)
	require.NoError(t, err)
	return dir, local.Diff(remote)
}

func TestPublish(t *testing.T) {
	dir, res := writeLessons(t)
	defer os.RemoveAll(dir)

	client := &mocks.Client{}
	client.On("CreateChapter", mock.Anything, api.NewChapter{
		CourseID: 1, Title: "Loops", Ordinal: 2,
	}).Return(api.Chapter{ID: 20, CourseID: 1, Title: "Loops", Ordinal: 2}, nil).Once()
	client.On("CreateLesson", mock.Anything, api.NewLesson{
		LessonableType: "Chapter",
		LessonableID:   10,
		Slug:           "a",
		Title:          "Lesson A",
		Content:        "<title>Lesson A</title><h1>A</h1>",
		Ordinal:        2,
	}).Return(api.Lesson{ID: 101}, nil).Once()
	client.On("CreateLesson", mock.Anything, api.NewLesson{
		LessonableType: "Chapter",
		LessonableID:   20,
		Slug:           "while",
		Title:          "While",
		Content:        "<h1>While</h1>",
		Ordinal:        1,
	}).Return(api.Lesson{ID: 102}, nil).Once()
	client.On("UpdateLesson", mock.Anything, 100, api.LessonUpdate{
		Title:   "Intro",
		Content: "<h1>Intro</h1>",
	}).Return(api.Lesson{ID: 100}, nil).Once()

	summary, err := New(client, Options{Overwrite: true}).
		Publish(context.Background(), course, remote, res)
	require.NoError(t, err)
	assert.Equal(t, Summary{ChaptersCreated: 1, LessonsCreated: 2, LessonsUpdated: 1}, summary)
	client.AssertExpectations(t)
}

func TestPublishWithoutOverwrite(t *testing.T) {
	dir, res := writeLessons(t)
	defer os.RemoveAll(dir)

	client := &mocks.Client{}
	client.On("CreateChapter", mock.Anything, mock.Anything).
		Return(api.Chapter{ID: 20}, nil)
	client.On("CreateLesson", mock.Anything, mock.Anything).
		Return(api.Lesson{}, nil)

	hook := logrusTest.NewGlobal()
	defer hook.Reset()

	summary, err := New(client, Options{}).
		Publish(context.Background(), course, remote, res)
	require.NoError(t, err)
	assert.Equal(t, Summary{ChaptersCreated: 1, LessonsCreated: 2, LessonsSkipped: 1}, summary)
	client.AssertNotCalled(t, "UpdateLesson", mock.Anything, mock.Anything, mock.Anything)

	var skipped []interface{}
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Skipping existing lesson. Run without --skip-existing to update it" {
			skipped = append(skipped, entry.Data["lesson"])
		}
	}
	assert.Equal(t, []interface{}{"intro"}, skipped)
}

func TestPublishDryRun(t *testing.T) {
	dir, res := writeLessons(t)
	defer os.RemoveAll(dir)

	client := &mocks.Client{}
	summary, err := New(client, Options{Overwrite: true, DryRun: true}).
		Publish(context.Background(), course, remote, res)
	require.NoError(t, err)
	assert.Equal(t, Summary{ChaptersCreated: 1, LessonsCreated: 2, LessonsUpdated: 1}, summary)
	assert.Empty(t, client.Calls)
}

func TestPublishAbortsOnError(t *testing.T) {
	dir, res := writeLessons(t)
	defer os.RemoveAll(dir)

	client := &mocks.Client{}
	client.On("CreateChapter", mock.Anything, mock.Anything).
		Return(api.Chapter{}, assert.AnError)

	summary, err := New(client, Options{Overwrite: true}).
		Publish(context.Background(), course, remote, res)
	assert.Equal(t, assert.AnError, errors.RootCause(err))
	assert.Equal(t, Summary{}, summary)
	client.AssertNotCalled(t, "CreateLesson", mock.Anything, mock.Anything)
}

func TestPublishNothing(t *testing.T) {
	client := &mocks.Client{}
	summary, err := New(client, Options{Overwrite: true}).
		Publish(context.Background(), course, remote, sync.Result{})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
	assert.Empty(t, client.Calls)
}
