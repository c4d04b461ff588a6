package devbackend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/jask/coursedesk/internal/model"
	"github.com/jask/coursedesk/internal/token"
)

var json = sonic.ConfigStd

type contextKey string

const identityKey contextKey = "identity"

// Server serves the REST surface over a Store.
type Server struct {
	Store *Store

	secret []byte
	ttl    time.Duration
	log    *zap.SugaredLogger

	mu       sync.Mutex
	failures map[string][]int
	raw      map[string][]byte
	requests []Request
}

// Request is a record of one handled call, kept for assertions.
type Request struct {
	Method        string
	Path          string
	Authorization string
}

func New(store *Store, secret []byte, ttl time.Duration, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{
		Store:    store,
		secret:   secret,
		ttl:      ttl,
		log:      log,
		failures: map[string][]int{},
		raw:      map[string][]byte{},
	}
}

// FailNext makes the next call to method+path answer with status.
func (s *Server) FailNext(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], status)
}

// RespondRaw makes every later 2xx call to method+path answer with body.
func (s *Server) RespondRaw(method, path string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[method+" "+path] = body
}

// Requests returns the calls handled so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// IssueToken signs a credential the same way /api/login does.
func (s *Server) IssueToken(id model.Identity) (string, error) {
	return token.Issue(s.secret, id, s.ttl)
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(s.record)
	r.Use(s.injectFailures)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.optionalAuth)
			r.Get("/courses", s.handleListCourses)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleMe)
			r.Post("/enroll", s.handleEnroll)
			r.Post("/courses", s.handleCreateCourse)
			r.Get("/courses/{id}/roster", s.handleRoster)
		})
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Authorization: r.Header.Get("Authorization")})
		s.mu.Unlock()
		s.log.Infow("request", "method", r.Method, "path", r.URL.Path, "request_id", r.Header.Get("X-Request-ID"))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		var status int
		if q := s.failures[key]; len(q) > 0 {
			status, s.failures[key] = q[0], q[1:]
		}
		raw, hasRaw := s.raw[key]
		s.mu.Unlock()
		if status != 0 {
			writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
			return
		}
		if hasRaw {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(raw)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) identityFrom(r *http.Request) (model.Identity, bool, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return model.Identity{}, false, nil
	}
	raw, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || raw == "" {
		return model.Identity{}, false, errors.New("invalid authorization header")
	}
	id, err := token.Verify(s.secret, raw)
	if err != nil {
		return model.Identity{}, false, err
	}
	return id, true, nil
}

func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok, err := s.identityFrom(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if ok {
			r = r.WithContext(context.WithValue(r.Context(), identityKey, id))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok, err := s.identityFrom(r)
		if err != nil || !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	})
}

func identityOf(r *http.Request) (model.Identity, bool) {
	id, ok := r.Context().Value(identityKey).(model.Identity)
	return id, ok
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in model.Credentials
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	id, err := s.Store.Authenticate(in.Username, in.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	tok, err := s.IssueToken(id)
	if err != nil {
		s.log.Errorw("issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in model.Registration
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := model.Validate(in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.Store.AddUser(in.Username, in.Password, in.Role)
	switch {
	case errors.Is(err, ErrUserExists):
		writeError(w, http.StatusConflict, "username taken")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, id)
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	var viewer *model.Identity
	if id, ok := identityOf(r); ok {
		viewer = &id
	}
	writeJSON(w, http.StatusOK, s.Store.Courses(viewer))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := identityOf(r)
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	id, _ := identityOf(r)
	if id.Role != model.RoleStudent {
		writeError(w, http.StatusForbidden, "only students can enroll")
		return
	}
	var in struct {
		CourseID int `json:"course_id"`
	}
	if err := readJSON(r, &in); err != nil || in.CourseID <= 0 {
		writeError(w, http.StatusBadRequest, "course_id required")
		return
	}
	switch err := s.Store.Enroll(id.ID, in.CourseID); {
	case errors.Is(err, ErrCourseNotFound):
		writeError(w, http.StatusNotFound, "course not found")
	case errors.Is(err, ErrAlreadyEnrolled):
		writeError(w, http.StatusConflict, "already enrolled")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "enrolled"})
	}
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	id, _ := identityOf(r)
	if id.Role != model.RoleTeacher {
		writeError(w, http.StatusForbidden, "only teachers can create courses")
		return
	}
	var in model.NewCourse
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := model.Validate(in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.Store.AddCourse(id.ID, in.Title, in.Description)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	id, _ := identityOf(r)
	courseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid course id")
		return
	}
	roster, owner, err := s.Store.Roster(courseID)
	if errors.Is(err, ErrCourseNotFound) {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	if id.Role != model.RoleTeacher || owner != id.ID {
		writeError(w, http.StatusForbidden, "not your course")
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

func readJSON(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
