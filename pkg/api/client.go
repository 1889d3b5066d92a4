// Package api is a client for the Mavenseed content API: it logs in, lists
// the courses, chapters and lessons of a site, and creates or updates
// chapters and lessons.
package api

//go:generate mockery -name Client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/sidkik/lessonsync/pkg/config"
	"github.com/sidkik/lessonsync/pkg/errors"
	"github.com/sidkik/lessonsync/pkg/version"
)

// API paths, relative to the site URL.
const (
	LoginPath          = "/api/login"
	CoursesPath        = "/api/v1/courses"
	ChaptersPath       = "/api/v1/chapters"
	CourseChaptersPath = "/api/v1/course_chapters"
	LessonsPath        = "/api/v1/lessons"
)

const (
	// How long to wait before retrying a failed request. The duration is
	// doubled after each failure, up to maxRetryWait.
	defaultRetryWait = 1 * time.Second
	maxRetryWait     = 30 * time.Second

	// requestsPerSecond caps the rate of requests so that downloading the
	// full lesson list doesn't trip the site's rate limiting.
	requestsPerSecond = 10

	// maxErrorBody is how much of an error response is kept for the error
	// message.
	maxErrorBody = 1024
)

// Client is used for communicating with the Mavenseed API. Login must be
// called before any other method.
type Client interface {
	Login(ctx context.Context, email, password string) error
	ListCourses(ctx context.Context) ([]Course, error)
	ListChapters(ctx context.Context, courseID int) ([]Chapter, error)
	ListLessons(ctx context.Context, page int) ([]Lesson, error)
	CreateChapter(ctx context.Context, chapter NewChapter) (Chapter, error)
	CreateLesson(ctx context.Context, lesson NewLesson) (Lesson, error)
	UpdateLesson(ctx context.Context, id int, update LessonUpdate) (Lesson, error)
}

// ErrInvalidCredentials is returned when the site rejects the login.
var ErrInvalidCredentials = errors.NewFriendlyError("Failed to log in to Mavenseed.\n" +
	"Check the email and password of your admin account.")

// Mocked for unit testing.
var clock = clockwork.NewRealClock()

type httpClient struct {
	baseURL string
	token   string
	retries int
	timeout time.Duration

	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a Client for the site configured in cfg.
func New(cfg config.Config) Client {
	return &httpClient{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		retries:    cfg.Retries,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(requestsPerSecond, 1),
	}
}

func (c *httpClient) Login(ctx context.Context, email, password string) error {
	form := url.Values{"email": {email}, "password": {password}}
	req := request{
		method:      http.MethodPost,
		path:        LoginPath,
		contentType: "application/x-www-form-urlencoded",
		body:        []byte(form.Encode()),
	}

	var resp struct {
		AuthToken string `json:"auth_token"`
	}
	if err := c.do(ctx, req, &resp); err != nil {
		if httpErr, ok := errors.RootCause(err).(errors.HTTPError); ok &&
			(httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
			return ErrInvalidCredentials
		}
		return err
	}

	if resp.AuthToken == "" {
		return ErrInvalidCredentials
	}
	c.token = resp.AuthToken
	return nil
}

func (c *httpClient) ListCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	err := c.do(ctx, request{method: http.MethodGet, path: CoursesPath}, &courses)
	return courses, err
}

func (c *httpClient) ListChapters(ctx context.Context, courseID int) ([]Chapter, error) {
	var chapters []Chapter
	req := request{
		method: http.MethodGet,
		path:   fmt.Sprintf("%s/%d", CourseChaptersPath, courseID),
	}
	err := c.do(ctx, req, &chapters)
	return chapters, err
}

func (c *httpClient) ListLessons(ctx context.Context, page int) ([]Lesson, error) {
	var lessons []Lesson
	req := request{
		method: http.MethodGet,
		path:   LessonsPath,
		query:  url.Values{"page": {fmt.Sprint(page)}},
	}
	err := c.do(ctx, req, &lessons)
	return lessons, err
}

func (c *httpClient) CreateChapter(ctx context.Context, chapter NewChapter) (Chapter, error) {
	req, err := jsonRequest(http.MethodPost, ChaptersPath, chapter)
	if err != nil {
		return Chapter{}, err
	}

	var created Chapter
	err = c.do(ctx, req, &created)
	return created, err
}

func (c *httpClient) CreateLesson(ctx context.Context, lesson NewLesson) (Lesson, error) {
	req, err := jsonRequest(http.MethodPost, LessonsPath, lesson)
	if err != nil {
		return Lesson{}, err
	}

	var created Lesson
	err = c.do(ctx, req, &created)
	return created, err
}

func (c *httpClient) UpdateLesson(ctx context.Context, id int, update LessonUpdate) (Lesson, error) {
	req, err := jsonRequest(http.MethodPut, fmt.Sprintf("%s/%d", LessonsPath, id), update)
	if err != nil {
		return Lesson{}, err
	}

	var updated Lesson
	err = c.do(ctx, req, &updated)
	return updated, err
}

type request struct {
	method      string
	path        string
	query       url.Values
	contentType string
	body        []byte
}

func jsonRequest(method, path string, payload interface{}) (request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return request{}, errors.WithContext(err, "create payload")
	}
	return request{
		method:      method,
		path:        path,
		contentType: "application/json",
		body:        body,
	}, nil
}

// do sends the request and decodes the JSON response into out. Transient
// failures are retried with an exponential backoff.
func (c *httpClient) do(ctx context.Context, req request, out interface{}) error {
	sleepTime := defaultRetryWait
	for attempt := 0; ; attempt++ {
		err := c.doOnce(ctx, req, out)
		if err == nil {
			return nil
		}

		if attempt >= c.retries || !isTemporary(err) || ctx.Err() != nil {
			return errors.WithContext(err, fmt.Sprintf("%s %s", req.method, req.path))
		}

		log.WithError(err).WithFields(log.Fields{
			"path":    req.path,
			"attempt": attempt + 1,
		}).Debugf("Request failed. Will retry in %s.", sleepTime)

		select {
		case <-ctx.Done():
			return errors.WithContext(ctx.Err(), fmt.Sprintf("%s %s", req.method, req.path))
		case <-clock.After(sleepTime):
		}

		sleepTime *= 2
		if sleepTime > maxRetryWait {
			sleepTime = maxRetryWait
		}
	}
}

func (c *httpClient) doOnce(ctx context.Context, req request, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.WithContext(err, "wait for rate limit")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reqURL := c.baseURL + req.path
	if len(req.query) != 0 {
		reqURL += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequest(req.method, reqURL, body)
	if err != nil {
		return errors.WithContext(err, "create request")
	}
	httpReq = httpReq.WithContext(ctx)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	// Close the body to avoid leaking resources.
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := ioutil.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.HTTPError{
			Method:     req.method,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(errBody)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WithContext(err, "decode response")
	}
	return nil
}

// isTemporary returns whether err might not happen again if the request is
// retried. Connection failures and server side errors are retried, but
// errors caused by the request itself aren't.
func isTemporary(err error) bool {
	switch err := errors.RootCause(err).(type) {
	case errors.HTTPError:
		return err.Temporary()
	case *url.Error:
		return true
	default:
		return false
	}
}
