// Package fake implements an in-memory Mavenseed site for end-to-end tests of
// the lessonsync binary.
package fake

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/lessonsync/pkg/api"
)

const token = "fake-token"

// Server is a fake Mavenseed site. It serves the subset of the API used by
// lessonsync, and records every change so that tests can inspect the result.
type Server struct {
	email, password string
	pageSize        int

	lock     sync.Mutex
	nextID   int
	courses  []api.Course
	chapters []api.Chapter
	lessons  []api.Lesson

	server *httptest.Server
}

// NewServer starts a fake site that accepts the given credentials.
func NewServer(email, password string) *Server {
	s := &Server{
		email:    email,
		password: password,
		pageSize: 2,
		nextID:   100,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(api.LoginPath, s.login)
	mux.HandleFunc(api.CoursesPath, s.authenticated(s.listCourses))
	mux.HandleFunc(api.CourseChaptersPath+"/", s.authenticated(s.listChapters))
	mux.HandleFunc(api.ChaptersPath, s.authenticated(s.createChapter))
	mux.HandleFunc(api.LessonsPath, s.authenticated(s.lessonsHandler))
	mux.HandleFunc(api.LessonsPath+"/", s.authenticated(s.updateLesson))
	s.server = httptest.NewServer(mux)
	return s
}

// URL is the base URL of the site.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts down the site.
func (s *Server) Close() {
	s.server.Close()
}

// AddCourse adds a course, and returns its ID.
func (s *Server) AddCourse(title, slug string) int {
	s.lock.Lock()
	defer s.lock.Unlock()

	course := api.Course{ID: s.id(), Title: title, Slug: slug}
	s.courses = append(s.courses, course)
	return course.ID
}

// AddChapter adds a chapter to a course, and returns its ID.
func (s *Server) AddChapter(courseID int, title string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.addChapter(api.NewChapter{CourseID: courseID, Title: title}).ID
}

// AddLesson adds a lesson to a chapter, and returns its ID.
func (s *Server) AddLesson(chapterID int, slug, content string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.addLesson(api.NewLesson{
		LessonableType: api.LessonableChapter,
		LessonableID:   chapterID,
		Slug:           slug,
		Title:          slug,
		Content:        content,
	}).ID
}

// Chapters returns the chapters of the given course.
func (s *Server) Chapters(courseID int) []api.Chapter {
	s.lock.Lock()
	defer s.lock.Unlock()

	var chapters []api.Chapter
	for _, chapter := range s.chapters {
		if chapter.CourseID == courseID {
			chapters = append(chapters, chapter)
		}
	}
	return chapters
}

// Lesson returns the lesson with the given slug.
func (s *Server) Lesson(slug string) (api.Lesson, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, lesson := range s.lessons {
		if lesson.Slug == slug {
			return lesson, true
		}
	}
	return api.Lesson{}, false
}

func (s *Server) id() int {
	s.nextID++
	return s.nextID
}

func (s *Server) addChapter(req api.NewChapter) api.Chapter {
	chapter := api.Chapter{
		ID:       s.id(),
		CourseID: req.CourseID,
		Title:    req.Title,
		Ordinal:  req.Ordinal,
	}
	s.chapters = append(s.chapters, chapter)
	return chapter
}

func (s *Server) addLesson(req api.NewLesson) api.Lesson {
	lesson := api.Lesson{
		ID:             s.id(),
		LessonableType: req.LessonableType,
		LessonableID:   req.LessonableID,
		Slug:           req.Slug,
		Title:          req.Title,
		Content:        req.Content,
		Ordinal:        req.Ordinal,
	}
	s.lessons = append(s.lessons, lesson)
	return lesson
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if r.PostForm.Get("email") != s.email || r.PostForm.Get("password") != s.password {
		http.Error(w, `{"error": "invalid credentials"}`, http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]string{"auth_token": token})
}

func (s *Server) authenticated(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
			return
		}

		s.lock.Lock()
		defer s.lock.Unlock()
		handler(w, r)
	}
}

func (s *Server) listCourses(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.courses)
}

func (s *Server) listChapters(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, api.CourseChaptersPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	chapters := []api.Chapter{}
	for _, chapter := range s.chapters {
		if chapter.CourseID == courseID {
			chapters = append(chapters, chapter)
		}
	}
	writeJSON(w, chapters)
}

func (s *Server) createChapter(w http.ResponseWriter, r *http.Request) {
	var req api.NewChapter
	if !readJSON(w, r, http.MethodPost, &req) {
		return
	}
	writeJSON(w, s.addChapter(req))
}

func (s *Server) lessonsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.listLessons(w, r)
		return
	}

	var req api.NewLesson
	if !readJSON(w, r, http.MethodPost, &req) {
		return
	}
	writeJSON(w, s.addLesson(req))
}

// listLessons pages through the lessons. Pages past the end are empty.
func (s *Server) listLessons(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		http.Error(w, "bad page", http.StatusBadRequest)
		return
	}

	lessons := []api.Lesson{}
	for i := page * s.pageSize; i < len(s.lessons) && i < (page+1)*s.pageSize; i++ {
		lessons = append(lessons, s.lessons[i])
	}
	writeJSON(w, lessons)
}

func (s *Server) updateLesson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, api.LessonsPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var req api.LessonUpdate
	if !readJSON(w, r, http.MethodPut, &req) {
		return
	}

	for i, lesson := range s.lessons {
		if lesson.ID == id {
			s.lessons[i].Title = req.Title
			s.lessons[i].Content = req.Content
			writeJSON(w, s.lessons[i])
			return
		}
	}
	http.Error(w, "no such lesson", http.StatusNotFound)
}

func pathID(r *http.Request, prefix string) (int, error) {
	idStr := strings.TrimPrefix(r.URL.Path, prefix+"/")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("bad id %q", idStr)
	}
	return id, nil
}

func readJSON(w http.ResponseWriter, r *http.Request, method string, out interface{}) bool {
	if r.Method != method {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}
