package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Gateway is the remote session collection: every call returns the
// service's latest state or a failure.
type Gateway interface {
	Login(ctx context.Context, req LoginRequest) (*SessionInformation, error)
	Register(ctx context.Context, req RegisterRequest) error
	ListSessions(ctx context.Context) ([]Session, error)
	GetSession(ctx context.Context, id int64) (*Session, error)
	CreateSession(ctx context.Context, fields SessionFields) (*Session, error)
	UpdateSession(ctx context.Context, id int64, fields SessionFields) (*Session, error)
	DeleteSession(ctx context.Context, id int64) error
	Participate(ctx context.Context, sessionID, userID int64) error
	Unparticipate(ctx context.Context, sessionID, userID int64) error
	GetUser(ctx context.Context, id int64) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListTeachers(ctx context.Context) ([]Teacher, error)
	GetTeacher(ctx context.Context, id int64) (*Teacher, error)
}

// TokenSource returns the bearer credential to attach, or "" for none.
type TokenSource func() string

// HTTPClient makes REST calls to the booking service.
type HTTPClient struct {
	baseURL string
	token   TokenSource
	client  *http.Client
	log     logrus.FieldLogger
}

var _ Gateway = (*HTTPClient)(nil)

// NewHTTPClient creates a client targeting the given base URL (e.g. "http://127.0.0.1:8080").
func NewHTTPClient(baseURL string, token TokenSource, timeout time.Duration, log logrus.FieldLogger) *HTTPClient {
	if token == nil {
		token = func() string { return "" }
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Login sends POST /api/auth/login.
func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (*SessionInformation, error) {
	var out SessionInformation
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register sends POST /api/auth/register.
func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", req, nil)
}

// ListSessions fetches /api/session.
func (c *HTTPClient) ListSessions(ctx context.Context) ([]Session, error) {
	var out []Session
	if err := c.do(ctx, http.MethodGet, "/api/session", nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].normalize()
	}
	return out, nil
}

// GetSession fetches /api/session/{id}.
func (c *HTTPClient) GetSession(ctx context.Context, id int64) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodGet, sessionPath(id), nil, &out); err != nil {
		return nil, err
	}
	out.normalize()
	return &out, nil
}

// CreateSession sends POST /api/session.
func (c *HTTPClient) CreateSession(ctx context.Context, fields SessionFields) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodPost, "/api/session", fields, &out); err != nil {
		return nil, err
	}
	out.normalize()
	return &out, nil
}

// UpdateSession sends PUT /api/session/{id}.
func (c *HTTPClient) UpdateSession(ctx context.Context, id int64, fields SessionFields) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodPut, sessionPath(id), fields, &out); err != nil {
		return nil, err
	}
	out.normalize()
	return &out, nil
}

// DeleteSession sends DELETE /api/session/{id}.
func (c *HTTPClient) DeleteSession(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, sessionPath(id), nil, nil)
}

// Participate sends POST /api/session/{id}/participate/{userId}.
func (c *HTTPClient) Participate(ctx context.Context, sessionID, userID int64) error {
	return c.do(ctx, http.MethodPost, participatePath(sessionID, userID), nil, nil)
}

// Unparticipate sends DELETE /api/session/{id}/participate/{userId}.
func (c *HTTPClient) Unparticipate(ctx context.Context, sessionID, userID int64) error {
	return c.do(ctx, http.MethodDelete, participatePath(sessionID, userID), nil, nil)
}

// GetUser fetches /api/user/{id}.
func (c *HTTPClient) GetUser(ctx context.Context, id int64) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/api/user/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser sends DELETE /api/user/{id}.
func (c *HTTPClient) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/user/"+strconv.FormatInt(id, 10), nil, nil)
}

// ListTeachers fetches /api/teacher.
func (c *HTTPClient) ListTeachers(ctx context.Context) ([]Teacher, error) {
	var out []Teacher
	if err := c.do(ctx, http.MethodGet, "/api/teacher", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTeacher fetches /api/teacher/{id}.
func (c *HTTPClient) GetTeacher(ctx context.Context, id int64) (*Teacher, error) {
	var out Teacher
	if err := c.do(ctx, http.MethodGet, "/api/teacher/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func sessionPath(id int64) string {
	return "/api/session/" + strconv.FormatInt(id, 10)
}

func participatePath(sessionID, userID int64) string {
	return sessionPath(sessionID) + "/participate/" + strconv.FormatInt(userID, 10)
}

// do performs one request. A nil body sends no payload; a nil out discards
// whatever the service returns.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	c.setAuth(req)

	log := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	log = log.WithFields(logrus.Fields{"status": resp.StatusCode, "elapsed": time.Since(start)})

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Warn("request rejected")
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(bytes.TrimSpace(respBody))}
	}
	log.Debug("request done")

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) setAuth(req *http.Request) {
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
