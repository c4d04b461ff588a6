// Package api is the HTTP/JSON client for the course-enrollment backend.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/coursedesk/internal/model"
)

const maxBody = 4 << 20

var json = sonic.ConfigStd

// Client talks to the backend. The zero value is not usable; use New.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.SugaredLogger
}

// New builds a client for baseURL. A nil logger disables logging.
func New(baseURL string, timeout time.Duration, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/login", "", creds)
	if err != nil {
		return "", err
	}
	var out loginResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("login: %w: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(out.Token) == "" {
		return "", fmt.Errorf("login: %w: empty token", ErrMalformedResponse)
	}
	return out.Token, nil
}

// Register creates an account. The response body is ignored.
func (c *Client) Register(ctx context.Context, reg model.Registration) error {
	_, err := c.do(ctx, http.MethodPost, "/api/register", "", reg)
	return err
}

// ListCourses fetches the full catalog. The Authorization header is sent only
// when credential is non-empty. A body that is not a JSON array yields an
// empty catalog rather than an error.
func (c *Client) ListCourses(ctx context.Context, credential string) ([]model.Course, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/courses", credential, nil)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.log.Warnw("courses response is not a list", "bytes", len(body))
		return []model.Course{}, nil
	}
	var out []model.Course
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("list courses: %w: %v", ErrMalformedResponse, err)
	}
	if out == nil {
		out = []model.Course{}
	}
	return out, nil
}

type enrollRequest struct {
	CourseID int `json:"course_id"`
}

// Enroll enrolls the credential's owner in courseID. Any 2xx is success.
func (c *Client) Enroll(ctx context.Context, credential string, courseID int) error {
	_, err := c.do(ctx, http.MethodPost, "/api/enroll", credential, enrollRequest{CourseID: courseID})
	return err
}

// CreateCourse creates a course owned by the credential's teacher.
func (c *Client) CreateCourse(ctx context.Context, credential string, nc model.NewCourse) (model.Course, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/courses", credential, nc)
	if err != nil {
		return model.Course{}, err
	}
	var out model.Course
	if len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return model.Course{}, fmt.Errorf("create course: %w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}

// Roster lists the students enrolled in a course.
func (c *Client) Roster(ctx context.Context, credential string, courseID int) ([]model.RosterEntry, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/courses/%d/roster", courseID), credential, nil)
	if err != nil {
		return nil, err
	}
	var out []model.RosterEntry
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("roster: %w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}

// Me asks the backend who owns credential.
func (c *Client) Me(ctx context.Context, credential string) (model.Identity, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/me", credential, nil)
	if err != nil {
		return model.Identity{}, err
	}
	var out model.Identity
	if err := json.Unmarshal(body, &out); err != nil {
		return model.Identity{}, fmt.Errorf("me: %w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path, credential string, in any) ([]byte, error) {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnw("request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w: %w", method, path, ErrNetwork, err)
	}
	c.log.Debugw("request done",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"elapsed", time.Since(start),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &BackendError{Method: method, Path: path, Status: resp.StatusCode}
	}
	return body, nil
}
