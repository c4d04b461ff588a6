// Package catalog caches the last fetched course list.
package catalog

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/jask/coursedesk/internal/model"
)

// LoadError is the user-facing message shown when a refresh fails.
const LoadError = "Could not load courses. Try again."

var errPanicked = errors.New("catalog: fetch panicked")

// Fetcher loads the full catalog (api.Client). An empty credential means an
// unauthenticated request.
type Fetcher interface {
	ListCourses(ctx context.Context, credential string) ([]model.Course, error)
}

// State is a snapshot; Courses is a copy the caller may keep.
type State struct {
	Courses   []model.Course
	IsLoading bool
	Error     string
}

// Cache is safe for concurrent use. Every refresh takes a sequence number;
// a response is applied only if no newer refresh has started since, so a
// slow stale response never overwrites fresher data.
type Cache struct {
	fetch Fetcher
	log   *zap.SugaredLogger

	mu      sync.RWMutex
	courses []model.Course
	loading bool
	err     string
	seq     uint64
}

func New(fetch Fetcher, log *zap.SugaredLogger) *Cache {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Cache{fetch: fetch, log: log, courses: []model.Course{}}
}

// Refresh replaces the catalog with the backend's current list. On failure
// the previous courses are kept and Error is set. The loading flag is always
// cleared once the latest refresh settles, even if the fetch panics.
func (c *Cache) Refresh(ctx context.Context, credential string) {
	seq := c.begin()
	var (
		courses []model.Course
		err     error
		done    bool
	)
	defer func() {
		if !done {
			c.settle(seq, nil, errPanicked)
		}
	}()
	courses, err = c.fetch.ListCourses(ctx, credential)
	done = true
	c.settle(seq, courses, err)
}

// Reset empties the catalog and discards any in-flight response.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.courses = []model.Course{}
	c.loading = false
	c.err = ""
}

func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Course, len(c.courses))
	copy(out, c.courses)
	return State{Courses: out, IsLoading: c.loading, Error: c.err}
}

// Course looks up a course by id in the current snapshot.
func (c *Cache) Course(id int) (model.Course, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, course := range c.courses {
		if course.ID == id {
			return course, true
		}
	}
	return model.Course{}, false
}

func (c *Cache) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.loading = true
	c.err = ""
	return c.seq
}

func (c *Cache) settle(seq uint64, courses []model.Course, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		c.log.Debugw("discarding stale catalog response", "seq", seq, "latest", c.seq)
		return
	}
	c.loading = false
	if err != nil {
		c.log.Warnw("catalog refresh failed", "seq", seq, "error", err)
		c.err = LoadError
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	c.courses = courses
	c.log.Debugw("catalog refreshed", "seq", seq, "courses", len(courses))
}
