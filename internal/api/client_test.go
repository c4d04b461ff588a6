package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/coursedesk/internal/devbackend"
	"github.com/jask/coursedesk/internal/model"
	"github.com/jask/coursedesk/internal/seed"
)

func newBackend(t *testing.T) (*devbackend.Server, seed.Seeded, *Client) {
	t.Helper()
	store := devbackend.NewStore()
	seeded, err := seed.Seed(store, nil)
	require.NoError(t, err)
	srv := devbackend.New(store, []byte("secret"), time.Hour, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, seeded, New(ts.URL, 2*time.Second, nil)
}

func TestLoginAndListCourses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, seeded, c := newBackend(t)

	tok, err := c.Login(ctx, model.Credentials{Username: seed.StudentUsername, Password: seed.Password})
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	courses, err := c.ListCourses(ctx, tok)
	require.NoError(t, err)
	require.Len(t, courses, len(seeded.Courses))
	require.True(t, courses[0].IsEnrolled())
	require.False(t, courses[1].IsEnrolled())

	anon, err := c.ListCourses(ctx, "")
	require.NoError(t, err)
	require.Nil(t, anon[0].Enrolled)

	reqs := srv.Requests()
	require.Equal(t, "Bearer "+tok, reqs[1].Authorization)
	require.Empty(t, reqs[2].Authorization)
}

func TestLoginBadCredentials(t *testing.T) {
	t.Parallel()
	_, _, c := newBackend(t)

	_, err := c.Login(context.Background(), model.Credentials{Username: "alice", Password: "nope"})
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, StatusOf(err))
}

func TestListCoursesNonSequence(t *testing.T) {
	t.Parallel()
	srv, _, c := newBackend(t)
	srv.RespondRaw(http.MethodGet, "/api/courses", []byte(`{"error":"boom"}`))

	courses, err := c.ListCourses(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, courses)
	require.Empty(t, courses)
}

func TestEnrollBackendError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, seeded, c := newBackend(t)
	tok, err := srv.IssueToken(seeded.Student)
	require.NoError(t, err)

	srv.FailNext(http.MethodPost, "/api/enroll", http.StatusInternalServerError)
	err = c.Enroll(ctx, tok, seeded.Courses[1].ID)
	var be *BackendError
	require.True(t, errors.As(err, &be))
	require.Equal(t, http.StatusInternalServerError, be.Status)

	require.NoError(t, c.Enroll(ctx, tok, seeded.Courses[1].ID))
	require.Equal(t, http.StatusConflict, StatusOf(c.Enroll(ctx, tok, seeded.Courses[1].ID)))
}

func TestNetworkError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := New(url, time.Second, nil).ListCourses(context.Background(), "")
	require.ErrorIs(t, err, ErrNetwork)
}

func TestTeacherEndpoints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv, seeded, c := newBackend(t)
	tok, err := srv.IssueToken(seeded.Teacher)
	require.NoError(t, err)

	created, err := c.CreateCourse(ctx, tok, model.NewCourse{Title: "Compilers", Description: "Parsing to codegen"})
	require.NoError(t, err)
	require.Equal(t, "Compilers", created.Title)
	require.Equal(t, seeded.Teacher.ID, created.TeacherID)

	roster, err := c.Roster(ctx, tok, seeded.Courses[0].ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	require.Equal(t, seed.StudentUsername, roster[0].Username)

	me, err := c.Me(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, seeded.Teacher, me)

	studentTok, err := srv.IssueToken(seeded.Student)
	require.NoError(t, err)
	_, err = c.CreateCourse(ctx, studentTok, model.NewCourse{Title: "Nope"})
	require.Equal(t, http.StatusForbidden, StatusOf(err))
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, _, c := newBackend(t)

	require.NoError(t, c.Register(ctx, model.Registration{Username: "carol", Password: "secret1", Role: model.RoleStudent}))
	require.Equal(t, http.StatusConflict, StatusOf(c.Register(ctx, model.Registration{Username: "carol", Password: "secret1", Role: model.RoleStudent})))

	_, err := c.Login(ctx, model.Credentials{Username: "carol", Password: "secret1"})
	require.NoError(t, err)
}
