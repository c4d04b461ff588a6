package seed

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/coursedesk/internal/devbackend"
)

func TestSeed(t *testing.T) {
	store := devbackend.NewStore()
	s, err := Seed(store, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Equal(t, TeacherUsername, s.Teacher.Username)
	require.Equal(t, StudentUsername, s.Student.Username)
	require.Len(t, s.Courses, 5)

	id, err := store.Authenticate(StudentUsername, Password)
	require.NoError(t, err)
	courses := store.Courses(&id)
	require.True(t, courses[0].IsEnrolled())
	require.False(t, courses[1].IsEnrolled())

	roster, owner, err := store.Roster(s.Courses[0].ID)
	require.NoError(t, err)
	require.Equal(t, s.Teacher.ID, owner)
	require.Len(t, roster, 1)
	require.NotNil(t, roster[0].Grade)

	_, err = Seed(store, nil)
	require.Error(t, err)
}
