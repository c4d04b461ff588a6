// Package service orchestrates user actions across the session, catalog and
// navigator, and reports their outcomes.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/jask/coursedesk/internal/api"
	"github.com/jask/coursedesk/internal/catalog"
	"github.com/jask/coursedesk/internal/model"
	"github.com/jask/coursedesk/internal/navigator"
	"github.com/jask/coursedesk/internal/session"
)

var (
	ErrEnrollInFlight   = errors.New("service: enrollment already in progress for this course")
	ErrNoPendingEnroll  = errors.New("service: no enrollment awaiting confirmation")
	ErrWrongRole        = errors.New("service: action not available for this role")
	ErrCourseNotInCache = errors.New("service: course not in catalog")
	ErrSessionEnded     = errors.New("service: logged out before the action completed")
)

// User-facing messages.
const (
	MsgLoginFailed       = "Login failed. Check your username and password."
	MsgSessionExpired    = "Your saved session could not be used. Please log in again."
	MsgRegistered        = "Registration complete. You can log in now."
	MsgRegisterFailed    = "Registration failed. Please try again."
	MsgUsernameTaken     = "That username is already taken."
	MsgEnrollFailed      = "Enrollment failed. Please try again."
	MsgEnrolledFmt       = "Enrolled in %s."
	MsgRosterUnavailable = "Could not load the roster."
	MsgCourseCreatedFmt  = "Created %s."
	MsgCreateFailed      = "Could not create the course."
)

// Backend is the part of api.Client the coordinator calls directly.
type Backend interface {
	Register(ctx context.Context, reg model.Registration) error
	Enroll(ctx context.Context, credential string, courseID int) error
	Roster(ctx context.Context, credential string, courseID int) ([]model.RosterEntry, error)
	CreateCourse(ctx context.Context, credential string, nc model.NewCourse) (model.Course, error)
}

// Coordinator is safe for concurrent use; the TUI calls it from tea.Cmd goroutines.
type Coordinator struct {
	Session  *session.Store
	Catalog  *catalog.Cache
	Nav      *navigator.Navigator
	Backend  Backend
	Reporter Reporter
	Log      *zap.SugaredLogger

	mu        sync.Mutex
	gen       uint64 // bumped by Logout
	enrolling map[int]struct{}
	pending   *int
}

// Start restores a saved session. On success the dashboard opens and the
// catalog is fetched with the restored credential.
func (c *Coordinator) Start(ctx context.Context) (model.Identity, bool) {
	id, ok, err := c.Session.Restore(ctx)
	if err != nil {
		c.report(Inline, MsgSessionExpired, err)
	}
	if !ok {
		return model.Identity{}, false
	}
	if err := c.Nav.Restored(); err != nil {
		c.log().Warnw("restore transition", "error", err)
	}
	c.Refresh(ctx)
	return id, true
}

// Refresh re-fetches the catalog, attaching the credential when logged in.
// Course creation calls it once a course has been created.
func (c *Coordinator) Refresh(ctx context.Context) {
	c.Catalog.Refresh(ctx, c.Session.Credential())
}

// Login authenticates, opens the dashboard and fetches the catalog. Failures
// are reported as blocking notices and the login view stays open.
func (c *Coordinator) Login(ctx context.Context, creds model.Credentials) error {
	if err := model.Validate(creds); err != nil {
		c.report(Blocking, err.Error(), err)
		return err
	}
	if _, err := c.Session.Login(ctx, creds); err != nil {
		c.report(Blocking, MsgLoginFailed, err)
		return err
	}
	if err := c.Nav.LoginSucceeded(); err != nil {
		c.log().Warnw("login transition", "view", c.Nav.View(), "error", err)
	}
	c.Refresh(ctx)
	return nil
}

// Register creates an account and returns to the login view.
func (c *Coordinator) Register(ctx context.Context, reg model.Registration) error {
	if err := model.Validate(reg); err != nil {
		c.report(Blocking, err.Error(), err)
		return err
	}
	if err := c.Backend.Register(ctx, reg); err != nil {
		msg := MsgRegisterFailed
		if api.StatusOf(err) == http.StatusConflict {
			msg = MsgUsernameTaken
		}
		c.report(Blocking, msg, err)
		return err
	}
	c.log().Infow("registered", "username", reg.Username, "role", reg.Role)
	if err := c.Nav.ShowLogin(); err != nil {
		c.log().Warnw("register transition", "error", err)
	}
	c.report(Blocking, MsgRegistered, nil)
	return nil
}

// Logout forgets the session locally and resets every view-level state.
func (c *Coordinator) Logout(ctx context.Context) error {
	err := c.Session.Logout(ctx)
	if err != nil {
		c.log().Errorw("logout", "error", err)
	}
	c.Nav.Logout()
	c.Catalog.Reset()
	c.mu.Lock()
	c.gen++
	c.enrolling = nil
	c.pending = nil
	c.mu.Unlock()
	return err
}

// SelectCourse opens the detail view matching the current role.
func (c *Coordinator) SelectCourse(courseID int) error {
	id, ok := c.Session.Identity()
	if !ok {
		return session.ErrAuth
	}
	course, ok := c.Catalog.Course(courseID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrCourseNotInCache, courseID)
	}
	return c.Nav.SelectCourse(course, id.Role)
}

// Back leaves the detail view.
func (c *Coordinator) Back() error {
	return c.Nav.Back()
}

// RequestEnroll marks courseID as awaiting confirmation.
func (c *Coordinator) RequestEnroll(courseID int) error {
	if err := c.requireRole(model.RoleStudent); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.enrolling[courseID]; busy {
		return ErrEnrollInFlight
	}
	id := courseID
	c.pending = &id
	return nil
}

// PendingEnroll reports the course awaiting confirmation.
func (c *Coordinator) PendingEnroll() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return 0, false
	}
	return *c.pending, true
}

func (c *Coordinator) CancelEnroll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

// ConfirmEnroll enrolls in the course awaiting confirmation.
func (c *Coordinator) ConfirmEnroll(ctx context.Context) error {
	courseID, ok := c.PendingEnroll()
	if !ok {
		return ErrNoPendingEnroll
	}
	return c.Enroll(ctx, courseID)
}

// EnrollInFlight reports whether an enroll request for courseID is outstanding.
func (c *Coordinator) EnrollInFlight(courseID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.enrolling[courseID]
	return ok
}

// AnyEnrollInFlight reports whether any enroll request is outstanding.
func (c *Coordinator) AnyEnrollInFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.enrolling) > 0
}

// Enroll posts an enrollment. A second call for a course already in flight
// is a no-op returning ErrEnrollInFlight. Success is acknowledged and the
// catalog re-fetched; failure is acknowledged without a refresh. The
// in-flight entry and the confirmation marker are cleared either way. A
// response that lands after Logout is dropped with ErrSessionEnded.
func (c *Coordinator) Enroll(ctx context.Context, courseID int) error {
	if err := c.requireRole(model.RoleStudent); err != nil {
		return err
	}
	gen, ok := c.beginEnroll(courseID)
	if !ok {
		return ErrEnrollInFlight
	}
	defer c.finishEnroll(courseID, gen)

	err := c.Backend.Enroll(ctx, c.Session.Credential(), courseID)
	if !c.sameSession(gen) {
		c.log().Infow("enroll finished after logout", "course_id", courseID, "error", err)
		return ErrSessionEnded
	}
	if err != nil {
		c.report(Blocking, MsgEnrollFailed, err)
		return err
	}
	title := fmt.Sprintf("course %d", courseID)
	if course, ok := c.Catalog.Course(courseID); ok && course.Title != "" {
		title = course.Title
	}
	c.log().Infow("enrolled", "course_id", courseID)
	c.report(Blocking, fmt.Sprintf(MsgEnrolledFmt, title), nil)
	c.Refresh(ctx)
	return nil
}

// Roster loads the students of a course for the teacher view.
func (c *Coordinator) Roster(ctx context.Context, courseID int) ([]model.RosterEntry, error) {
	if err := c.requireRole(model.RoleTeacher); err != nil {
		return nil, err
	}
	roster, err := c.Backend.Roster(ctx, c.Session.Credential(), courseID)
	if err != nil {
		c.report(Inline, MsgRosterUnavailable, err)
		return nil, err
	}
	return roster, nil
}

// CreateCourse publishes a new course for the logged-in teacher and
// re-fetches the catalog.
func (c *Coordinator) CreateCourse(ctx context.Context, nc model.NewCourse) (model.Course, error) {
	if err := c.requireRole(model.RoleTeacher); err != nil {
		return model.Course{}, err
	}
	if err := model.Validate(nc); err != nil {
		c.report(Blocking, err.Error(), err)
		return model.Course{}, err
	}
	gen := c.generation()
	course, err := c.Backend.CreateCourse(ctx, c.Session.Credential(), nc)
	if !c.sameSession(gen) {
		c.log().Infow("course creation finished after logout", "title", nc.Title, "error", err)
		return model.Course{}, ErrSessionEnded
	}
	if err != nil {
		c.report(Blocking, MsgCreateFailed, err)
		return model.Course{}, err
	}
	c.log().Infow("course created", "course_id", course.ID)
	c.report(Inline, fmt.Sprintf(MsgCourseCreatedFmt, nc.Title), nil)
	c.Refresh(ctx)
	return course, nil
}

func (c *Coordinator) beginEnroll(courseID int) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.enrolling[courseID]; busy {
		return 0, false
	}
	if c.enrolling == nil {
		c.enrolling = map[int]struct{}{}
	}
	c.enrolling[courseID] = struct{}{}
	return c.gen, true
}

// finishEnroll leaves state alone when a logout happened since beginEnroll.
func (c *Coordinator) finishEnroll(courseID int, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	delete(c.enrolling, courseID)
	if c.pending != nil && *c.pending == courseID {
		c.pending = nil
	}
}

func (c *Coordinator) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *Coordinator) sameSession(gen uint64) bool {
	return c.generation() == gen
}

func (c *Coordinator) requireRole(role model.Role) error {
	id, ok := c.Session.Identity()
	if !ok {
		return session.ErrAuth
	}
	if id.Role != role {
		return fmt.Errorf("%w: need %s, have %s", ErrWrongRole, role, id.Role)
	}
	return nil
}

func (c *Coordinator) report(level Level, msg string, err error) {
	if err != nil {
		c.log().Infow("action failed", "notice", msg, "level", level.String(), "error", err)
	}
	r := c.Reporter
	if r == nil {
		r = discard{}
	}
	r.Report(Notice{Level: level, Message: msg, Err: err})
}

func (c *Coordinator) log() *zap.SugaredLogger {
	if c.Log == nil {
		return zap.NewNop().Sugar()
	}
	return c.Log
}
