package devbackend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/coursedesk/internal/model"
)

func TestStoreUsers(t *testing.T) {
	s := NewStore()
	alice, err := s.AddUser(" alice ", "pw", model.RoleStudent)
	require.NoError(t, err)
	require.Equal(t, model.Identity{ID: 1, Username: "alice", Role: model.RoleStudent}, alice)

	_, err = s.AddUser("ALICE", "other", model.RoleTeacher)
	require.ErrorIs(t, err, ErrUserExists)
	_, err = s.AddUser("bob", "pw", "admin")
	require.Error(t, err)

	got, err := s.Authenticate("Alice", "pw")
	require.NoError(t, err)
	require.Equal(t, alice, got)
	_, err = s.Authenticate("alice", "nope")
	require.ErrorIs(t, err, ErrBadCredentials)
	_, err = s.Authenticate("nobody", "pw")
	require.ErrorIs(t, err, ErrBadCredentials)
}

func TestStoreCoursesAndEnrollment(t *testing.T) {
	s := NewStore()
	alice, _ := s.AddUser("alice", "pw", model.RoleStudent)
	tess, _ := s.AddUser("tess", "pw", model.RoleTeacher)

	_, err := s.AddCourse(alice.ID, "Nope", "")
	require.Error(t, err)
	c1, err := s.AddCourse(tess.ID, " Algebra ", "")
	require.NoError(t, err)
	require.Equal(t, "Algebra", c1.Title)
	require.Equal(t, "tess", c1.TeacherName)
	c2, _ := s.AddCourse(tess.ID, "Poetry", "")

	require.NoError(t, s.Enroll(alice.ID, c2.ID))
	require.ErrorIs(t, s.Enroll(alice.ID, c2.ID), ErrAlreadyEnrolled)
	require.ErrorIs(t, s.Enroll(alice.ID, 99), ErrCourseNotFound)

	anon := s.Courses(nil)
	require.Len(t, anon, 2)
	require.Nil(t, anon[0].Enrolled)

	mine := s.Courses(&alice)
	require.Equal(t, []int{c1.ID, c2.ID}, []int{mine[0].ID, mine[1].ID})
	require.False(t, mine[0].IsEnrolled())
	require.True(t, mine[1].IsEnrolled())

	// teachers see no enrolled flag
	require.Nil(t, s.Courses(&tess)[1].Enrolled)

	require.NoError(t, s.SetGrade(c2.ID, alice.ID, "A"))
	require.Error(t, s.SetGrade(c1.ID, alice.ID, "B"))
	roster, owner, err := s.Roster(c2.ID)
	require.NoError(t, err)
	require.Equal(t, tess.ID, owner)
	require.Len(t, roster, 1)
	require.Equal(t, "alice", roster[0].Username)
	require.Equal(t, "A", *roster[0].Grade)

	_, _, err = s.Roster(99)
	require.ErrorIs(t, err, ErrCourseNotFound)
}
