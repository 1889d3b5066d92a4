package sync

import (
	"github.com/sidkik/lessonsync/pkg/api"
	"github.com/sidkik/lessonsync/pkg/errors"
)

// ResolveCourse returns the first course whose title or URL slug is exactly
// query.
func ResolveCourse(courses []api.Course, query string) (api.Course, error) {
	for _, course := range courses {
		if course.Title == query || course.Slug == query {
			return course, nil
		}
	}
	return api.Course{}, errors.CourseNotFound{Query: query}
}
