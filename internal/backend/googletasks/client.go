// Package googletasks implements service.Gateway using the Google Tasks API.
// The session token is the OAuth refresh token; tasks of the default list
// are returned as a {tasks: [...]} payload.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskflow/internal/config"
	"taskflow/internal/logging"
	"taskflow/internal/service"
	"taskflow/internal/task"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// UserID identifies the account behind a refresh token. The Tasks scope
	// grants no profile access, so every session uses the same id.
	UserID = "@me"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.Gateway using Google Tasks API.
type Client struct {
	oauth    *oauth2.Config
	timeout  time.Duration
	logger   *log.Logger
	services func(ctx context.Context, token string) (*tasks.Service, error)
}

// New creates a new Google Tasks client.
// Requires oauth_client.json to exist.
func New(cfg *config.Config, logger *log.Logger) (*Client, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	c := &Client{oauth: oauthConfig, timeout: cfg.Timeout(), logger: logger}
	c.services = func(ctx context.Context, token string) (*tasks.Service, error) {
		// The refresh token yields a fresh access token on first use.
		src := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: token})
		return tasks.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, src)))
	}
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and API
// endpoint (for testing). Tokens are not sent.
func NewWithHTTPClient(httpClient *http.Client, endpoint string) *Client {
	return &Client{
		timeout: config.DefaultTimeoutSeconds * time.Second,
		logger:  logging.Discard(),
		services: func(ctx context.Context, _ string) (*tasks.Service, error) {
			return tasks.NewService(ctx, option.WithHTTPClient(httpClient), option.WithEndpoint(endpoint))
		},
	}
}

// AuthCodeURL returns the consent URL for the browser login flow.
func (c *Client) AuthCodeURL(redirectURL, verifier string) string {
	conf := *c.oauth
	conf.RedirectURL = redirectURL
	return conf.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)
}

func (c *Client) service(ctx context.Context, token string) (*tasks.Service, error) {
	svc, err := c.services(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return svc, nil
}

// FetchTasks returns every task of the default list, completed and hidden
// ones included.
func (c *Client) FetchTasks(ctx context.Context, token string) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	items := make([]any, 0)
	err = svc.Tasks.List(DefaultListID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				items = append(items, rawTask(t))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	c.logger.Debug("fetched tasks", "list", DefaultListID, "count", len(items))
	return map[string]any{"tasks": items}, nil
}

// CreateTask inserts a task into the default list.
func (c *Client) CreateTask(ctx context.Context, token string, in service.TaskInput) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}
	created, err := svc.Tasks.Insert(DefaultListID, apiTask(in)).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}
	return rawTask(created), nil
}

// UpdateTask patches the fields set in in. Priority is not stored by
// Google Tasks and is ignored.
func (c *Client) UpdateTask(ctx context.Context, token, id string, in service.TaskInput) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}
	patch := apiTask(in)
	if in.Completed != nil && !*in.Completed {
		// Clearing the completion date reopens the task.
		patch.NullFields = append(patch.NullFields, "Completed")
	}
	updated, err := svc.Tasks.Patch(DefaultListID, id, patch).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}
	return rawTask(updated), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := c.service(ctx, token)
	if err != nil {
		return err
	}
	if err := svc.Tasks.Delete(DefaultListID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// Login exchanges an authorization code for a refresh token.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.LoginResult, error) {
	if c.oauth == nil {
		return service.LoginResult{}, service.NewError(service.ErrUnsupported, "oauth client not configured")
	}
	if creds.AuthCode == "" {
		return service.LoginResult{}, service.NewError(service.ErrAuthFailed, "google tasks requires the browser login flow")
	}

	conf := *c.oauth
	conf.RedirectURL = creds.RedirectURL
	var opts []oauth2.AuthCodeOption
	if creds.CodeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(creds.CodeVerifier))
	}

	tok, err := conf.Exchange(ctx, creds.AuthCode, opts...)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.ErrorDescription != "" {
			return service.LoginResult{}, service.WrapError(service.ErrAuthFailed, rerr.ErrorDescription, err)
		}
		if isNetworkError(err) {
			return service.LoginResult{}, wrapError(err)
		}
		return service.LoginResult{}, service.WrapError(service.ErrAuthFailed, "failed to exchange code for token", err)
	}
	if tok.RefreshToken == "" {
		return service.LoginResult{}, service.NewError(service.ErrAuthFailed,
			"no refresh token returned; remove taskflow's access in your Google account and log in again")
	}
	return service.LoginResult{Token: tok.RefreshToken, User: service.User{ID: UserID}}, nil
}

// FetchCurrentUser verifies the refresh token by reading the default list.
func (c *Client) FetchCurrentUser(ctx context.Context, token string) (service.User, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := c.service(ctx, token)
	if err != nil {
		return service.User{}, err
	}
	list, err := svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return service.User{}, wrapError(err)
	}
	return service.User{ID: UserID, Name: list.Title}, nil
}

// Signup is not offered by Google Tasks.
func (c *Client) Signup(context.Context, service.SignupInput) error {
	return unsupported("signups")
}

// UpdateProfile is not offered by Google Tasks.
func (c *Client) UpdateProfile(context.Context, string, service.ProfileInput) (service.User, error) {
	return service.User{}, unsupported("profile updates")
}

// ChangePassword is not offered by Google Tasks.
func (c *Client) ChangePassword(context.Context, string, string, string) error {
	return unsupported("password changes")
}

func unsupported(what string) error {
	return service.NewError(service.ErrUnsupported, what+" are not available with the googletasks backend")
}

// rawTask renders an API task in the shape the normalizer reads.
func rawTask(t *tasks.Task) map[string]any {
	raw := map[string]any{
		"id":        t.Id,
		"title":     t.Title,
		"completed": t.Status == statusCompleted,
	}
	if t.Notes != "" {
		raw["description"] = t.Notes
	}
	if t.Due != "" {
		raw["dueDate"] = t.Due
	}
	return raw
}

// apiTask builds the API representation of the fields set in in.
func apiTask(in service.TaskInput) *tasks.Task {
	t := &tasks.Task{}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Notes = *in.Description
	}
	if in.DueDate != nil {
		if d, err := time.Parse(task.DateLayout, *in.DueDate); err == nil {
			t.Due = d.Format(time.RFC3339)
		}
	}
	if in.Completed != nil {
		t.Status = statusNeedsAction
		if *in.Completed {
			t.Status = statusCompleted
		}
	}
	return t
}

// wrapError classifies API errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	// A revoked or expired refresh token fails at the token endpoint.
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return service.WrapError(service.ErrUnauthorized, "token expired or revoked (run: taskflow login)", err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return service.WrapError(service.ErrUnauthorized, "token expired or revoked (run: taskflow login)", err)
		case http.StatusNotFound:
			return service.WrapError(service.ErrFailure, "not found", err)
		}
		if gerr.Message != "" {
			return service.WrapError(service.ErrFailure, gerr.Message, err)
		}
		return service.WrapError(service.ErrFailure, "", err)
	}

	if isNetworkError(err) {
		if errors.Is(err, context.DeadlineExceeded) {
			return service.WrapError(service.ErrNetwork, "request timed out", err)
		}
		return service.WrapError(service.ErrNetwork, "", err)
	}
	return service.WrapError(service.ErrFailure, "", err)
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr)
}
