// Package seed fills a dev backend store with sample accounts and courses.
package seed

import (
	"fmt"
	"math/rand"

	"github.com/jask/coursedesk/internal/devbackend"
	"github.com/jask/coursedesk/internal/model"
)

// Accounts created by Seed. Every password is "password".
const (
	TeacherUsername = "tess"
	StudentUsername = "alice"
	Password        = "password"
)

// Seeded reports what Seed created.
type Seeded struct {
	Teacher model.Identity
	Student model.Identity
	Courses []model.Course
}

var catalog = []struct {
	Title       string
	Description string
}{
	{"Intro to Go", "Types, interfaces, goroutines and the standard library."},
	{"Databases 101", "Relational modelling, SQL and transactions."},
	{"Distributed Systems", "Consensus, replication and failure handling."},
	{"Terminal UIs", "Building interactive programs for the command line."},
	{"Networking Basics", "TCP, HTTP and everything in between."},
}

var grades = []string{"A", "A-", "B+", "B", "C"}

// Seed creates one teacher, one student, a handful of courses and enrolls the
// student in the first course with a grade.
func Seed(store *devbackend.Store, rng *rand.Rand) (Seeded, error) {
	var out Seeded
	teacher, err := store.AddUser(TeacherUsername, Password, model.RoleTeacher)
	if err != nil {
		return out, fmt.Errorf("seed teacher: %w", err)
	}
	student, err := store.AddUser(StudentUsername, Password, model.RoleStudent)
	if err != nil {
		return out, fmt.Errorf("seed student: %w", err)
	}
	out.Teacher, out.Student = teacher, student

	for _, c := range catalog {
		course, err := store.AddCourse(teacher.ID, c.Title, c.Description)
		if err != nil {
			return out, fmt.Errorf("seed course %q: %w", c.Title, err)
		}
		out.Courses = append(out.Courses, course)
	}

	first := out.Courses[0].ID
	if err := store.Enroll(student.ID, first); err != nil {
		return out, err
	}
	if rng != nil {
		if err := store.SetGrade(first, student.ID, grades[rng.Intn(len(grades))]); err != nil {
			return out, err
		}
	}
	return out, nil
}
