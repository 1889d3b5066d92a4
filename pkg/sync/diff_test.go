package sync

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/lessonsync/pkg/api"
	"github.com/sidkik/lessonsync/pkg/errors"
	"github.com/sidkik/lessonsync/pkg/lesson"
	"github.com/sidkik/lessonsync/pkg/snapshot"
)

func localLesson(path, chapter string) LocalLesson {
	slug := lesson.Slug(path)
	return LocalLesson{
		File:       lesson.NewFile(path),
		Identifier: lesson.Identifier{Slug: slug, Title: lesson.Title(slug, "")},
		Chapter:    chapter,
	}
}

func localSnapshot(lessons ...LocalLesson) LocalSnapshot {
	local := LocalSnapshot{}
	for _, l := range lessons {
		local.Add(l)
	}
	return local
}

func TestDiff(t *testing.T) {
	introCourse := snapshot.Course{
		Title: "Intro",
		Chapters: []snapshot.Chapter{
			{
				Chapter: api.Chapter{ID: 10, CourseID: 1, Title: "Basics", Ordinal: 1},
				Lessons: []api.Lesson{
					{ID: 100, LessonableID: 10, Slug: "intro-to-x"},
					{ID: 101, LessonableID: 10, Slug: "dup"},
				},
			},
			{
				Chapter: api.Chapter{ID: 11, CourseID: 1, Title: "Loops", Ordinal: 2},
				Lessons: []api.Lesson{
					{ID: 102, LessonableID: 11, Slug: "for"},
					{ID: 103, LessonableID: 11, Slug: "dup"},
				},
			},
			{
				Chapter: api.Chapter{ID: 12, CourseID: 1, Title: "Basics", Ordinal: 3},
			},
		},
	}

	emptyChapterCourse := snapshot.Course{
		Title: "Intro",
		Chapters: []snapshot.Chapter{
			{Chapter: api.Chapter{ID: 10, CourseID: 1, Title: "Intro", Ordinal: 1}},
		},
	}

	a := localLesson("/course/01-basics/a.html", "Basics")
	b := localLesson("/course/01-basics/b.html", "Basics")
	introToX := localLesson("/course/01-basics/intro-to-x.html", "Basics")
	forLesson := localLesson("/course/loops/for.html", "Loops")
	forElsewhere := localLesson("/course/advanced/for.html", "Advanced")
	dup := localLesson("/course/loops/dup.html", "Loops")
	while := localLesson("/course/loops/while.html", "Loops")

	tests := []struct {
		name   string
		local  LocalSnapshot
		course snapshot.Course
		exp    Result
	}{
		{
			name:   "NoLocalFiles",
			local:  LocalSnapshot{},
			course: introCourse,
			exp:    Result{},
		},
		{
			name:   "NewChapterWithLesson",
			local:  localSnapshot(a),
			course: emptyChapterCourse,
			exp: Result{
				ChaptersToCreate: []NewChapter{{Title: "Basics"}},
				LessonsToCreate:  []LessonToCreate{{a}},
			},
		},
		{
			name:   "NewChapterCreatedOnce",
			local:  localSnapshot(a, b),
			course: emptyChapterCourse,
			exp: Result{
				ChaptersToCreate: []NewChapter{{Title: "Basics"}},
				LessonsToCreate:  []LessonToCreate{{a}, {b}},
			},
		},
		{
			name:   "ExistingLessonIsUpdated",
			local:  localSnapshot(introToX, a),
			course: introCourse,
			exp: Result{
				LessonsToCreate: []LessonToCreate{{a}},
				LessonsToUpdate: []LessonToUpdate{{LocalLesson: introToX, LessonID: 100}},
			},
		},
		{
			name:   "SlugsMatchAcrossChapters",
			local:  localSnapshot(forElsewhere),
			course: introCourse,
			exp: Result{
				ChaptersToCreate: []NewChapter{{Title: "Advanced"}},
				LessonsToUpdate:  []LessonToUpdate{{LocalLesson: forElsewhere, LessonID: 102}},
			},
		},
		{
			name:   "DuplicateRemoteSlugsUseFirst",
			local:  localSnapshot(dup),
			course: introCourse,
			exp: Result{
				LessonsToUpdate: []LessonToUpdate{{LocalLesson: dup, LessonID: 101}},
			},
		},
		{
			name:   "ChaptersSorted",
			local:  localSnapshot(forLesson, while, forElsewhere, a),
			course: snapshot.Course{Title: "Empty"},
			exp: Result{
				ChaptersToCreate: []NewChapter{
					{Title: "Advanced"}, {Title: "Basics"}, {Title: "Loops"},
				},
				LessonsToCreate: []LessonToCreate{
					{forElsewhere}, {a}, {forLesson}, {while},
				},
			},
		},
		{
			name: "ChapterTitlesAreCaseSensitive",
			local: localSnapshot(LocalLesson{
				File:       lesson.NewFile("/course/LOOPS/while.html"),
				Identifier: while.Identifier,
				Chapter:    "LOOPS",
			}),
			course: introCourse,
			exp: Result{
				ChaptersToCreate: []NewChapter{{Title: "LOOPS"}},
				LessonsToCreate: []LessonToCreate{{LocalLesson{
					File:       lesson.NewFile("/course/LOOPS/while.html"),
					Identifier: while.Identifier,
					Chapter:    "LOOPS",
				}}},
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			res := test.local.Diff(test.course)
			assert.Equal(t, test.exp, res)
			assert.Equal(t, len(test.local.Lessons()),
				len(res.LessonsToCreate)+len(res.LessonsToUpdate))
		})
	}
}

func TestDiffEmpty(t *testing.T) {
	assert.True(t, LocalSnapshot{}.Diff(snapshot.Course{}).Empty())
	assert.False(t, localSnapshot(localLesson("/a/b.html", "A")).Diff(snapshot.Course{}).Empty())
}

func TestNewLocalSnapshot(t *testing.T) {
	dir, err := ioutil.TempDir("", "lessonsync-sync-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	files := map[string]string{
		"01-basics/a.html":           "<h1>A</h1>",
		"01-basics/Hello World.html": "<title> Greetings </title><h1>Hi</h1>",
		"02_control_flow/if.html":    "<h1>If</h1>",
		"other/a.html":               "<h1>Another A</h1>",
	}
	var paths []string
	for _, name := range []string{
		"01-basics/a.html",
		"01-basics/Hello World.html",
		"02_control_flow/if.html",
		"other/a.html",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, ioutil.WriteFile(path, []byte(files[name]), 0644))
		paths = append(paths, path)
	}

	valid, invalid := lesson.Validate(paths)
	require.Empty(t, invalid)

	local, err := NewLocalSnapshot(valid)
	require.NoError(t, err)
	assert.Equal(t, []string{"Basics", "Control flow", "Other"}, local.Chapters())

	var ids []lesson.Identifier
	for _, l := range local.Lessons() {
		ids = append(ids, l.Identifier)
	}
	assert.Equal(t, []lesson.Identifier{
		{Slug: "a", Title: "A"},
		{Slug: "hello-world", Title: "Greetings"},
		{Slug: "if", Title: "If"},
		{Slug: "a", Title: "A"},
	}, ids)

	assert.Equal(t, map[string][]string{
		"a": {paths[0], paths[3]},
	}, local.DuplicateSlugs())
}

func TestNewLocalSnapshotUnreadable(t *testing.T) {
	_, err := NewLocalSnapshot([]lesson.File{lesson.NewFile("/does/not/exist.html")})
	assert.Error(t, err)
}

func TestResolveCourse(t *testing.T) {
	courses := []api.Course{
		{ID: 1, Title: "Intro", Slug: "intro-101"},
		{ID: 2, Title: "Advanced", Slug: "advanced"},
		{ID: 3, Title: "intro-101", Slug: "shadowed"},
	}

	tests := []struct {
		query  string
		expID  int
		expErr error
	}{
		{query: "Intro", expID: 1},
		{query: "intro-101", expID: 1},
		{query: "advanced", expID: 2},
		{query: "Advanced", expID: 2},
		{query: "intro", expErr: errors.CourseNotFound{Query: "intro"}},
		{query: "", expErr: errors.CourseNotFound{Query: ""}},
	}

	for _, test := range tests {
		course, err := ResolveCourse(courses, test.query)
		if test.expErr != nil {
			assert.Equal(t, test.expErr, err, test.query)
			assert.Equal(t, errors.ExitCourseNotFound, errors.ExitCode(err))
			continue
		}
		require.NoError(t, err, test.query)
		assert.Equal(t, test.expID, course.ID, test.query)
	}
}
