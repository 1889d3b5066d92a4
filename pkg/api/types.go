package api

import (
	"encoding/json"
)

// Course is a course on the Mavenseed site.
type Course struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`

	// Metadata holds the fields returned by the API that lessonsync doesn't
	// use. They're kept so that records survive a round trip through the
	// snapshot cache unchanged.
	Metadata map[string]interface{} `json:"-"`
}

// Chapter is a chapter within a course.
type Chapter struct {
	ID       int    `json:"id"`
	CourseID int    `json:"course_id"`
	Title    string `json:"title"`
	Ordinal  int    `json:"ordinal"`

	Metadata map[string]interface{} `json:"-"`
}

// Lesson is a lesson within a chapter. The API calls the parent of a lesson
// its "lessonable", which for course lessons is always a chapter.
type Lesson struct {
	ID             int    `json:"id"`
	LessonableType string `json:"lessonable_type,omitempty"`
	LessonableID   int    `json:"lessonable_id"`
	Slug           string `json:"slug"`
	Title          string `json:"title"`
	Content        string `json:"content,omitempty"`
	Ordinal        int    `json:"ordinal"`

	Metadata map[string]interface{} `json:"-"`
}

// NewChapter is the payload for creating a chapter.
type NewChapter struct {
	CourseID int    `json:"course_id"`
	Title    string `json:"title"`
	Ordinal  int    `json:"ordinal,omitempty"`
}

// NewLesson is the payload for creating a lesson.
type NewLesson struct {
	LessonableType string `json:"lessonable_type"`
	LessonableID   int    `json:"lessonable_id"`
	Slug           string `json:"slug"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Ordinal        int    `json:"ordinal,omitempty"`
}

// LessonUpdate is the payload for overwriting an existing lesson.
type LessonUpdate struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// LessonableChapter is the lessonable type of lessons that belong to a
// chapter.
const LessonableChapter = "Chapter"

var (
	courseFields  = []string{"id", "title", "slug"}
	chapterFields = []string{"id", "course_id", "title", "ordinal"}
	lessonFields  = []string{"id", "lessonable_type", "lessonable_id", "slug",
		"title", "content", "ordinal"}
)

// UnmarshalJSON implements json.Unmarshaler.
func (c *Course) UnmarshalJSON(data []byte) error {
	type course Course
	if err := json.Unmarshal(data, (*course)(c)); err != nil {
		return err
	}
	return unmarshalMetadata(data, courseFields, &c.Metadata)
}

// MarshalJSON implements json.Marshaler.
func (c Course) MarshalJSON() ([]byte, error) {
	type course Course
	return marshalWithMetadata(course(c), c.Metadata)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Chapter) UnmarshalJSON(data []byte) error {
	type chapter Chapter
	if err := json.Unmarshal(data, (*chapter)(c)); err != nil {
		return err
	}
	return unmarshalMetadata(data, chapterFields, &c.Metadata)
}

// MarshalJSON implements json.Marshaler.
func (c Chapter) MarshalJSON() ([]byte, error) {
	type chapter Chapter
	return marshalWithMetadata(chapter(c), c.Metadata)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Lesson) UnmarshalJSON(data []byte) error {
	type lesson Lesson
	if err := json.Unmarshal(data, (*lesson)(l)); err != nil {
		return err
	}
	return unmarshalMetadata(data, lessonFields, &l.Metadata)
}

// MarshalJSON implements json.Marshaler.
func (l Lesson) MarshalJSON() ([]byte, error) {
	type lesson Lesson
	return marshalWithMetadata(lesson(l), l.Metadata)
}

// unmarshalMetadata collects the fields of the JSON object in data that
// aren't in known.
func unmarshalMetadata(data []byte, known []string, metadata *map[string]interface{}) error {
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	for _, key := range known {
		delete(fields, key)
	}
	if len(fields) == 0 {
		fields = nil
	}
	*metadata = fields
	return nil
}

// marshalWithMetadata flattens metadata into the JSON object for record.
// Fields of record take precedence over metadata with the same name.
func marshalWithMetadata(record interface{}, metadata map[string]interface{}) ([]byte, error) {
	recordBytes, err := json.Marshal(record)
	if err != nil || len(metadata) == 0 {
		return recordBytes, err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(recordBytes, &fields); err != nil {
		return nil, err
	}
	for key, val := range metadata {
		if _, ok := fields[key]; !ok {
			fields[key] = val
		}
	}
	return json.Marshal(fields)
}
