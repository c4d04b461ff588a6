package devbackend

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/coursedesk/internal/model"
)

type fixture struct {
	srv   *Server
	url   string
	alice model.Identity
	tess  model.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := NewStore()
	alice, _ := store.AddUser("alice", "password", model.RoleStudent)
	tess, _ := store.AddUser("tess", "password", model.RoleTeacher)
	_, err := store.AddCourse(tess.ID, "Algebra", "")
	require.NoError(t, err)
	srv := New(store, []byte("secret"), time.Hour, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &fixture{srv: srv, url: ts.URL, alice: alice, tess: tess}
}

func (f *fixture) call(t *testing.T, method, path string, who *model.Identity, body string) (int, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, f.url+path, rd)
	require.NoError(t, err)
	if who != nil {
		tok, err := f.srv.IssueToken(*who)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestServerAuthRules(t *testing.T) {
	f := newFixture(t)

	status, body := f.call(t, http.MethodPost, "/api/login", nil, `{"username":"alice","password":"password"}`)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"token"`)
	status, _ = f.call(t, http.MethodPost, "/api/login", nil, `{"username":"alice","password":"bad"}`)
	require.Equal(t, http.StatusUnauthorized, status)

	status, body = f.call(t, http.MethodGet, "/api/courses", nil, "")
	require.Equal(t, http.StatusOK, status)
	require.NotContains(t, body, "enrolled")
	status, body = f.call(t, http.MethodGet, "/api/courses", &f.alice, "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"enrolled":false`)

	status, _ = f.call(t, http.MethodGet, "/api/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, status)
	status, body = f.call(t, http.MethodGet, "/api/me", &f.tess, "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"tess"`)
}

func TestServerEnrollAndRoster(t *testing.T) {
	f := newFixture(t)

	status, _ := f.call(t, http.MethodPost, "/api/enroll", &f.tess, `{"course_id":1}`)
	require.Equal(t, http.StatusForbidden, status)
	status, _ = f.call(t, http.MethodPost, "/api/enroll", &f.alice, `{"course_id":1}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = f.call(t, http.MethodPost, "/api/enroll", &f.alice, `{"course_id":1}`)
	require.Equal(t, http.StatusConflict, status)
	status, _ = f.call(t, http.MethodPost, "/api/enroll", &f.alice, `{"course_id":9}`)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = f.call(t, http.MethodGet, "/api/courses/1/roster", &f.alice, "")
	require.Equal(t, http.StatusForbidden, status)
	status, body := f.call(t, http.MethodGet, "/api/courses/1/roster", &f.tess, "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"alice"`)
}

func TestServerRegisterAndCreate(t *testing.T) {
	f := newFixture(t)

	status, _ := f.call(t, http.MethodPost, "/api/register", nil, `{"username":"bob","password":"secret1","role":"teacher"}`)
	require.Equal(t, http.StatusCreated, status)
	status, _ = f.call(t, http.MethodPost, "/api/register", nil, `{"username":"bob","password":"secret1","role":"teacher"}`)
	require.Equal(t, http.StatusConflict, status)
	status, _ = f.call(t, http.MethodPost, "/api/register", nil, `{"username":"carol","password":"x","role":"student"}`)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = f.call(t, http.MethodPost, "/api/courses", &f.alice, `{"title":"Mine"}`)
	require.Equal(t, http.StatusForbidden, status)
	status, body := f.call(t, http.MethodPost, "/api/courses", &f.tess, `{"title":"Geometry"}`)
	require.Equal(t, http.StatusCreated, status)
	require.Contains(t, body, `"Geometry"`)
}

func TestServerTestHooks(t *testing.T) {
	f := newFixture(t)

	f.srv.FailNext(http.MethodGet, "/api/courses", http.StatusServiceUnavailable)
	status, _ := f.call(t, http.MethodGet, "/api/courses", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, status)
	status, _ = f.call(t, http.MethodGet, "/api/courses", nil, "")
	require.Equal(t, http.StatusOK, status)

	f.srv.RespondRaw(http.MethodGet, "/api/courses", []byte(`{"oops":true}`))
	_, body := f.call(t, http.MethodGet, "/api/courses", nil, "")
	require.Equal(t, `{"oops":true}`, body)

	reqs := f.srv.Requests()
	require.Len(t, reqs, 3)
	require.Equal(t, "/api/courses", reqs[0].Path)
	require.Empty(t, reqs[0].Authorization)
}
