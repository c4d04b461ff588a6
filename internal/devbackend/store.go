// Package devbackend is an in-memory implementation of the course-enrollment
// REST surface. It backs the test suites and `cmd/devbackend`.
package devbackend

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/jask/coursedesk/internal/model"
)

var (
	ErrUserExists      = errors.New("devbackend: username taken")
	ErrBadCredentials  = errors.New("devbackend: invalid credentials")
	ErrCourseNotFound  = errors.New("devbackend: course not found")
	ErrAlreadyEnrolled = errors.New("devbackend: already enrolled")
)

type user struct {
	identity model.Identity
	hash     []byte
}

type course struct {
	model.Course
	// student id -> grade
	students map[int]*string
}

// Store holds users, courses and enrollments.
type Store struct {
	mu         sync.Mutex
	users      map[string]*user
	usersByID  map[int]*user
	courses    map[int]*course
	nextUserID int
	nextCourse int
}

func NewStore() *Store {
	return &Store{
		users:      map[string]*user{},
		usersByID:  map[int]*user{},
		courses:    map[int]*course{},
		nextUserID: 1,
		nextCourse: 1,
	}
}

// AddUser registers an account with a bcrypt password hash.
func (s *Store) AddUser(username, password string, role model.Role) (model.Identity, error) {
	username = strings.TrimSpace(username)
	if !role.Valid() {
		return model.Identity{}, fmt.Errorf("devbackend: invalid role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return model.Identity{}, fmt.Errorf("hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(username)
	if _, ok := s.users[key]; ok {
		return model.Identity{}, ErrUserExists
	}
	u := &user{identity: model.Identity{ID: s.nextUserID, Username: username, Role: role}, hash: hash}
	s.nextUserID++
	s.users[key] = u
	s.usersByID[u.identity.ID] = u
	return u.identity, nil
}

// Authenticate checks a username/password pair.
func (s *Store) Authenticate(username, password string) (model.Identity, error) {
	s.mu.Lock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(username))]
	s.mu.Unlock()
	if !ok {
		return model.Identity{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return model.Identity{}, ErrBadCredentials
	}
	return u.identity, nil
}

// AddCourse creates a course owned by teacherID.
func (s *Store) AddCourse(teacherID int, title, description string) (model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.usersByID[teacherID]
	if !ok || t.identity.Role != model.RoleTeacher {
		return model.Course{}, fmt.Errorf("devbackend: user %d is not a teacher", teacherID)
	}
	c := &course{
		Course: model.Course{
			ID:          s.nextCourse,
			Title:       strings.TrimSpace(title),
			Description: strings.TrimSpace(description),
			TeacherID:   teacherID,
			TeacherName: t.identity.Username,
		},
		students: map[int]*string{},
	}
	s.nextCourse++
	s.courses[c.ID] = c
	return c.Course, nil
}

// Courses lists every course ordered by id. When viewer is a student the
// enrolled flag is filled in.
func (s *Store) Courses(viewer *model.Identity) []model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Course, 0, len(s.courses))
	for _, c := range s.courses {
		item := c.Course
		if viewer != nil && viewer.Role == model.RoleStudent {
			_, enrolled := c.students[viewer.ID]
			item.Enrolled = &enrolled
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Enroll adds studentID to courseID.
func (s *Store) Enroll(studentID, courseID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[courseID]
	if !ok {
		return ErrCourseNotFound
	}
	if _, ok := c.students[studentID]; ok {
		return ErrAlreadyEnrolled
	}
	c.students[studentID] = nil
	return nil
}

// SetGrade records a grade for an enrolled student.
func (s *Store) SetGrade(courseID, studentID int, grade string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[courseID]
	if !ok {
		return ErrCourseNotFound
	}
	if _, ok := c.students[studentID]; !ok {
		return fmt.Errorf("devbackend: student %d not enrolled in %d", studentID, courseID)
	}
	g := grade
	c.students[studentID] = &g
	return nil
}

// Roster returns the enrolled students of courseID and the owning teacher id.
func (s *Store) Roster(courseID int) ([]model.RosterEntry, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[courseID]
	if !ok {
		return nil, 0, ErrCourseNotFound
	}
	out := make([]model.RosterEntry, 0, len(c.students))
	for id, grade := range c.students {
		entry := model.RosterEntry{StudentID: id, Grade: grade}
		if u, ok := s.usersByID[id]; ok {
			entry.Username = u.identity.Username
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, c.TeacherID, nil
}
