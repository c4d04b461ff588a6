// Package navigator is the view state machine:
//
//	login -> dashboard (login succeeded)
//	login <-> register
//	dashboard -> teacherCourse | studentCourse (select course, by role)
//	teacherCourse | studentCourse -> dashboard (back)
//	any -> login (logout)
package navigator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jask/coursedesk/internal/model"
)

type View string

const (
	ViewLogin         View = "login"
	ViewRegister      View = "register"
	ViewDashboard     View = "dashboard"
	ViewTeacherCourse View = "teacherCourse"
	ViewStudentCourse View = "studentCourse"
)

// ErrInvalidTransition is returned when an event is not allowed from the
// current view; the state is left unchanged.
var ErrInvalidTransition = errors.New("navigator: invalid transition")

// Navigator is safe for concurrent use. Selected is a copy of a catalog
// entry; the catalog stays the source of truth.
type Navigator struct {
	mu       sync.RWMutex
	view     View
	selected *model.Course
}

// New starts on the login view.
func New() *Navigator {
	return &Navigator{view: ViewLogin}
}

func (n *Navigator) View() View {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.view
}

func (n *Navigator) Selected() (model.Course, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.selected == nil {
		return model.Course{}, false
	}
	return *n.selected, true
}

// Restored moves to the dashboard after a successful session restore at startup.
func (n *Navigator) Restored() error {
	return n.from("restore", ViewDashboard, ViewLogin)
}

// LoginSucceeded moves from login to the dashboard.
func (n *Navigator) LoginSucceeded() error {
	return n.from("login", ViewDashboard, ViewLogin)
}

// ShowRegister switches from login to the register form.
func (n *Navigator) ShowRegister() error {
	return n.from("show register", ViewRegister, ViewLogin)
}

// ShowLogin leaves the register form, by switching or after registration completes.
func (n *Navigator) ShowLogin() error {
	return n.from("show login", ViewLogin, ViewRegister)
}

// SelectCourse opens the role's detail view for c. Selecting while a detail
// view is open replaces the selection.
func (n *Navigator) SelectCourse(c model.Course, role model.Role) error {
	var target View
	switch role {
	case model.RoleTeacher:
		target = ViewTeacherCourse
	case model.RoleStudent:
		target = ViewStudentCourse
	default:
		return fmt.Errorf("%w: select course with role %q", ErrInvalidTransition, role)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.view != ViewDashboard && n.view != target {
		return fmt.Errorf("%w: select course from %s", ErrInvalidTransition, n.view)
	}
	course := c
	n.view = target
	n.selected = &course
	return nil
}

// Back closes the detail view and clears the selection.
func (n *Navigator) Back() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.view != ViewTeacherCourse && n.view != ViewStudentCourse {
		return fmt.Errorf("%w: back from %s", ErrInvalidTransition, n.view)
	}
	n.view = ViewDashboard
	n.selected = nil
	return nil
}

// Logout returns to login from any view.
func (n *Navigator) Logout() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.view = ViewLogin
	n.selected = nil
}

func (n *Navigator) from(event string, to View, allowed ...View) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, v := range allowed {
		if n.view == v {
			n.view = to
			n.selected = nil
			return nil
		}
	}
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, n.view)
}
