package api

import (
	"context"

	"github.com/sidkik/lessonsync/pkg/errors"
)

// LessonPages iterates over the paginated lesson listing. The API doesn't
// report how many lessons or pages exist, so the iteration ends at the first
// empty page.
type LessonPages struct {
	client Client
	page   int
	done   bool
}

// NewLessonPages returns an iterator positioned at the first page.
func NewLessonPages(client Client) *LessonPages {
	return &LessonPages{client: client}
}

// Next fetches the next page of lessons. It returns false once an empty page
// has been returned by the API, and on every call after that.
func (pages *LessonPages) Next(ctx context.Context) ([]Lesson, bool, error) {
	if pages.done {
		return nil, false, nil
	}

	lessons, err := pages.client.ListLessons(ctx, pages.page)
	if err != nil {
		return nil, false, errors.WithContext(err, "list lessons")
	}

	if len(lessons) == 0 {
		pages.done = true
		return nil, false, nil
	}
	pages.page++
	return lessons, true, nil
}

// Page returns the index of the next page to be fetched.
func (pages *LessonPages) Page() int {
	return pages.page
}
