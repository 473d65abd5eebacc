// Package rest implements service.Gateway against the TaskFlow HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskflow/internal/config"
	"taskflow/internal/logging"
	"taskflow/internal/service"
)

// API paths.
const (
	pathTasks       = "/v1/task/getAllTasks"
	pathTaskCreate  = "/v1/task/create"
	pathTaskUpdate  = "/v1/task/update/"
	pathTaskDelete  = "/v1/task/delete/"
	pathLogin       = "/v1/auth/login"
	pathSignup      = "/v1/auth/signup"
	pathCurrentUser = "/v1/user/current"
	pathProfile     = "/v1/user/profile"
	pathPassword    = "/v1/user/password"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-Id"

// Fallback messages when the server gives none.
const (
	msgLoginFailed    = "login failed"
	msgSignupFailed   = "registration failed, please try again"
	msgProfileFailed  = "profile update failed"
	msgPasswordFailed = "password change failed"
	msgRequestFailed  = "request failed"
)

// Client implements service.Gateway over HTTP.
type Client struct {
	baseURL string
	hc      *http.Client
	timeout time.Duration
	logger  *log.Logger
}

// New creates a client for cfg.APIURL.
func New(cfg *config.Config, logger *log.Logger) *Client {
	c := NewWithHTTPClient(cfg.APIURL, http.DefaultClient, cfg.Timeout())
	if logger != nil {
		c.logger = logger
	}
	return c
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, hc *http.Client, timeout time.Duration) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = config.DefaultTimeoutSeconds * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      hc,
		timeout: timeout,
		logger:  logging.Discard(),
	}
}

// FetchTasks returns the raw task payload.
func (c *Client) FetchTasks(ctx context.Context, token string) (any, error) {
	var raw any
	if err := c.do(ctx, http.MethodGet, pathTasks, token, nil, &raw); err != nil {
		return nil, classify(err, service.ErrFailure, msgRequestFailed)
	}
	return raw, nil
}

// CreateTask creates a task and returns the raw created task.
func (c *Client) CreateTask(ctx context.Context, token string, in service.TaskInput) (any, error) {
	var raw any
	if err := c.do(ctx, http.MethodPost, pathTaskCreate, token, in, &raw); err != nil {
		return nil, classify(err, service.ErrFailure, msgRequestFailed)
	}
	return raw, nil
}

// UpdateTask updates the fields set in in and returns the raw updated task.
func (c *Client) UpdateTask(ctx context.Context, token, id string, in service.TaskInput) (any, error) {
	var raw any
	if err := c.do(ctx, http.MethodPut, pathTaskUpdate+url.PathEscape(id), token, in, &raw); err != nil {
		return nil, classify(err, service.ErrFailure, msgRequestFailed)
	}
	return raw, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	if err := c.do(ctx, http.MethodDelete, pathTaskDelete+url.PathEscape(id), token, nil, nil); err != nil {
		return classify(err, service.ErrFailure, msgRequestFailed)
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string         `json:"token"`
	User  map[string]any `json:"user"`
}

// Login exchanges email and password for a token.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.LoginResult, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, pathLogin, "", loginRequest{Email: creds.Email, Password: creds.Password}, &resp)
	if err != nil {
		return service.LoginResult{}, classifyAuth(err, msgLoginFailed)
	}
	if resp.Token == "" {
		return service.LoginResult{}, service.NewError(service.ErrAuthFailed, msgLoginFailed)
	}

	user := userFromMap(resp.User)
	if user.ID == "" {
		user, err = c.FetchCurrentUser(ctx, resp.Token)
		if err != nil {
			return service.LoginResult{}, fmt.Errorf("resolve user: %w", err)
		}
	}
	return service.LoginResult{Token: resp.Token, User: user}, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, in service.SignupInput) error {
	if err := c.do(ctx, http.MethodPost, pathSignup, "", in, nil); err != nil {
		return classifyAuth(err, msgSignupFailed)
	}
	return nil
}

// FetchCurrentUser returns the user the token belongs to.
func (c *Client) FetchCurrentUser(ctx context.Context, token string) (service.User, error) {
	var raw map[string]any
	if err := c.do(ctx, http.MethodGet, pathCurrentUser, token, nil, &raw); err != nil {
		return service.User{}, classify(err, service.ErrFailure, msgRequestFailed)
	}
	user := userFromMap(unwrapUser(raw))
	if user.ID == "" {
		return service.User{}, service.NewError(service.ErrFailure, "server returned no user")
	}
	return user, nil
}

// UpdateProfile updates the current user's name and email.
func (c *Client) UpdateProfile(ctx context.Context, token string, in service.ProfileInput) (service.User, error) {
	var raw map[string]any
	if err := c.do(ctx, http.MethodPut, pathProfile, token, in, &raw); err != nil {
		return service.User{}, classify(err, service.ErrFailure, msgProfileFailed)
	}
	user := userFromMap(unwrapUser(raw))
	if user.Name == "" && user.Email == "" {
		user.Name, user.Email = in.Name, in.Email
	}
	return user, nil
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword changes the current user's password.
func (c *Client) ChangePassword(ctx context.Context, token, current, next string) error {
	body := passwordRequest{CurrentPassword: current, NewPassword: next}
	if err := c.do(ctx, http.MethodPut, pathPassword, token, body, nil); err != nil {
		return classify(err, service.ErrFailure, msgPasswordFailed)
	}
	return nil
}

// httpClient returns a client that sends token as a bearer credential.
func (c *Client) httpClient(ctx context.Context, token string) *http.Client {
	if token == "" {
		return c.hc
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.hc)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

// do sends a JSON request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.httpClient(ctx, token).Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", reqID, "err", err)
		return &transportError{err: err}
	}
	defer res.Body.Close()
	c.logger.Debug("request", "method", method, "path", path, "status", res.StatusCode,
		"request_id", reqID, "duration", time.Since(start).Round(time.Millisecond))

	if err := googleapi.CheckResponse(res); err != nil {
		return err
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return &transportError{err: err}
	}
	if env, ok := decodeEnvelope(data); ok && env.Success != nil && !*env.Success {
		return &rejectedError{code: res.StatusCode, message: env.Message}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// envelope is the {success, message} wrapper the API puts on most replies.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func decodeEnvelope(data []byte) (envelope, bool) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return envelope{}, false
	}
	return env, true
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// rejectedError is a 2xx reply carrying success=false.
type rejectedError struct {
	code    int
	message string
}

func (e *rejectedError) Error() string {
	if e.message != "" {
		return e.message
	}
	return fmt.Sprintf("request rejected (status %d)", e.code)
}

// classify maps a transport or HTTP failure to a service error. A 401 is
// always Unauthorized; other failures get kind with the server's message.
func classify(err error, kind error, fallback string) error {
	if nerr := networkError(err); nerr != nil {
		return nerr
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := serverMessage(gerr, fallback)
		if gerr.Code == http.StatusUnauthorized {
			return service.WrapError(service.ErrUnauthorized, msg, err)
		}
		return service.WrapError(kind, msg, err)
	}
	var rerr *rejectedError
	if errors.As(err, &rerr) {
		msg := rerr.message
		if msg == "" {
			msg = fallback
		}
		return service.WrapError(kind, msg, err)
	}
	return service.WrapError(kind, fallback, err)
}

// classifyAuth maps failures of unauthenticated calls. A rejection is an
// authentication failure, never a forced logout.
func classifyAuth(err error, fallback string) error {
	if nerr := networkError(err); nerr != nil {
		return nerr
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return service.WrapError(service.ErrAuthFailed, serverMessage(gerr, fallback), err)
	}
	var rerr *rejectedError
	if errors.As(err, &rerr) && strings.TrimSpace(rerr.message) != "" {
		return service.WrapError(service.ErrAuthFailed, rerr.message, err)
	}
	return service.WrapError(service.ErrAuthFailed, fallback, err)
}

func networkError(err error) error {
	var terr *transportError
	if !errors.As(err, &terr) {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return service.WrapError(service.ErrNetwork, "request timed out", err)
	}
	return service.WrapError(service.ErrNetwork, "", err)
}

// serverMessage extracts the message of an error reply.
func serverMessage(gerr *googleapi.Error, fallback string) string {
	if env, ok := decodeEnvelope([]byte(gerr.Body)); ok && strings.TrimSpace(env.Message) != "" {
		return env.Message
	}
	if strings.TrimSpace(gerr.Message) != "" {
		return gerr.Message
	}
	return fallback
}

// unwrapUser returns the user object inside a {user} or {data} envelope.
func unwrapUser(raw map[string]any) map[string]any {
	for _, key := range []string{"user", "data"} {
		if m, ok := raw[key].(map[string]any); ok {
			return m
		}
	}
	return raw
}

func userFromMap(m map[string]any) service.User {
	var u service.User
	if m == nil {
		return u
	}
	for _, key := range []string{"id", "_id"} {
		switch v := m[key].(type) {
		case string:
			u.ID = v
		case float64:
			u.ID = fmt.Sprintf("%.0f", v)
		}
		if u.ID != "" {
			break
		}
	}
	u.Name, _ = m["name"].(string)
	u.Email, _ = m["email"].(string)
	return u
}
