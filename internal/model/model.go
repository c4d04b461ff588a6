// Package model holds the client-side view of backend entities.
package model

import "fmt"

// Role distinguishes the two kinds of accounts.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// ParseRole converts a raw claim value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Identity is derived from the credential; it is never sent to the backend.
type Identity struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (i Identity) IsTeacher() bool { return i.Role == RoleTeacher }

// Course is a read-only snapshot from the backend.
// Enrolled is only populated for students; nil and false both mean not enrolled.
type Course struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TeacherID   int    `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	Enrolled    *bool  `json:"enrolled,omitempty"`
}

// IsEnrolled treats a missing flag as not enrolled.
func (c Course) IsEnrolled() bool {
	return c.Enrolled != nil && *c.Enrolled
}

// RosterEntry is one student row in a teacher's course view.
type RosterEntry struct {
	StudentID int     `json:"student_id"`
	Username  string  `json:"username"`
	Grade     *string `json:"grade"`
}

// Credentials is the login form payload. Only presence is checked; the
// backend decides whether they are valid.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is the register form payload.
type Registration struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"required,oneof=teacher student"`
}

// NewCourse is the create-course form payload.
type NewCourse struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
}
