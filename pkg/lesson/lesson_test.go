package lesson

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	fs = afero.NewMemMapFs()

	files := map[string]string{
		"/course/01-basics/intro.html":      "<html><h1>Intro</h1></html>",
		"/course/01-basics/UPPER.HTML":      "<h1 class=\"big\">\nUpper\n</h1>",
		"/course/01-basics/no-heading.html": "<html><h2>Not a lesson</h2></html>",
		"/course/01-basics/notes.md":        "# <h1>Markdown</h1>",
	}
	for path, contents := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(contents), 0644))
	}
	require.NoError(t, fs.MkdirAll("/course/dir.html", 0755))

	valid, invalid := Validate([]string{
		"/course/01-basics/intro.html",
		"/course/01-basics/UPPER.HTML",
		"/course/01-basics/no-heading.html",
		"/course/01-basics/notes.md",
		"/course/01-basics/missing.html",
		"/course/dir.html",
	})

	var validPaths []string
	for _, f := range valid {
		validPaths = append(validPaths, f.Path)
	}
	assert.Equal(t, []string{
		"/course/01-basics/intro.html",
		"/course/01-basics/UPPER.HTML",
	}, validPaths)
	assert.Equal(t, []string{
		"/course/01-basics/no-heading.html",
		"/course/01-basics/notes.md",
		"/course/01-basics/missing.html",
		"/course/dir.html",
	}, invalid)
}

func TestValidateReadsOnce(t *testing.T) {
	fs = afero.NewMemMapFs()
	path := "/course/basics/intro.html"
	require.NoError(t, afero.WriteFile(fs, path, []byte("<h1>Intro</h1>"), 0644))

	valid, _ := Validate([]string{path})
	require.Len(t, valid, 1)

	// The contents read during validation are reused even if the file
	// disappears afterwards.
	require.NoError(t, fs.Remove(path))
	content, err := valid[0].Content()
	assert.NoError(t, err)
	assert.Equal(t, "<h1>Intro</h1>", content)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		path string
		exp  string
	}{
		{"intro-to-x.html", "intro-to-x"},
		{"/a/01-basics/Intro To X.html", "intro-to-x"},
		{"/b/other/Intro To X.HTML", "intro-to-x"},
		{"lesson.v2.html", "lesson.v2"},
		{"no-extension", "no-extension"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.path, func(t *testing.T) {
			assert.Equal(t, test.exp, Slug(test.path))
			assert.Equal(t, Slug(test.path), Slug(test.path))
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		content string
		exp     string
	}{
		{
			name:    "TitleElement",
			slug:    "intro",
			content: "<html><head><title>Welcome to the course</title></head><h1>Hi</h1></html>",
			exp:     "Welcome to the course",
		},
		{
			name:    "FirstTitleWins",
			slug:    "intro",
			content: "<title>First</title><title>Second</title>",
			exp:     "First",
		},
		{
			name:    "MultilineTitle",
			slug:    "intro",
			content: "<title>\n  Spread out\n</title>",
			exp:     "Spread out",
		},
		{
			name:    "FallbackToSlug",
			slug:    "intro-to-x",
			content: "<h1>Intro</h1>",
			exp:     "Intro To X",
		},
		{
			name:    "EmptyTitle",
			slug:    "getting-started",
			content: "<title> </title>",
			exp:     "Getting Started",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, Title(test.slug, test.content))
		})
	}
}

func TestIdentifier(t *testing.T) {
	fs = afero.NewMemMapFs()
	path := "/course/02.advanced/Deep Dive.html"
	require.NoError(t, afero.WriteFile(fs, path, []byte("<h1>Deep</h1>"), 0644))

	f := NewFile(path)
	id, err := f.Identifier()
	assert.NoError(t, err)
	assert.Equal(t, Identifier{Slug: "deep-dive", Title: "Deep Dive"}, id)
	assert.Equal(t, "02.advanced", f.Folder())

	missing := NewFile("/course/missing.html")
	_, err = missing.Identifier()
	assert.Error(t, err)
}

func TestChapterName(t *testing.T) {
	tests := []struct {
		folder string
		exp    string
	}{
		{"01-basics", "Basics"},
		{"02.getting_started", "Getting started"},
		{"1.2.advanced-topics", "Advanced topics"},
		{"Basics", "Basics"},
		{"basics", "Basics"},
		{"UPPER_CASE", "Upper case"},
		{"03 - spaced  out", "Spaced out"},
		{"..1 x", "X"},
		{"2020", "2020"},
		{"2020-recap", "2020 recap"},
		{"3-body-problem", "Body problem"},
		{"100_days", "Days"},
		{"", ""},
	}

	for _, test := range tests {
		test := test
		t.Run(test.folder, func(t *testing.T) {
			once := ChapterName(test.folder)
			assert.Equal(t, test.exp, once)
			assert.Equal(t, once, ChapterName(once), "normalization should be idempotent")
		})
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in, exp string
	}{
		{"", ""},
		{"hELLO", "Hello"},
		{"élan VITAL", "Élan vital"},
		{"\xffABC", "\xffabc"},
	}

	for _, test := range tests {
		once := capitalize(test.in)
		assert.Equal(t, test.exp, once, "%q", test.in)
		assert.Equal(t, once, capitalize(once), "%q", test.in)
	}
}
