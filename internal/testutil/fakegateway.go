// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"taskflow/internal/service"
)

// Payload shapes FetchTasks can answer with.
const (
	ShapeSequence = "sequence"
	ShapeTasks    = "tasks"
	ShapeData     = "data"
)

type account struct {
	password string
	user     service.User
}

// FakeGateway is an in-memory implementation of service.Gateway for testing.
// Tasks are kept as raw maps so every payload shape the normalizer accepts
// can be produced.
type FakeGateway struct {
	mu       sync.RWMutex
	accounts map[string]account // email -> account
	tokens   map[string]string  // token -> user id
	tasks    []map[string]any
	issued   int
	nextID   int
	calls    map[string]int

	// Shape selects the FetchTasks payload shape. Empty means ShapeTasks.
	Shape string

	// AckOnly makes CreateTask and UpdateTask answer with a bare
	// {success, message} acknowledgement instead of the stored task.
	AckOnly bool

	// Error injection for testing
	FetchErr       error
	CreateErr      error
	UpdateErr      error
	DeleteErr      error
	LoginErr       error
	SignupErr      error
	CurrentUserErr error
	ProfileErr     error
	PasswordErr    error

	// FetchGate, when set, blocks FetchTasks until it is closed or receives.
	// FetchStarted, when set, is signalled as each blocked fetch begins.
	FetchGate    chan struct{}
	FetchStarted chan struct{}

	// LoginGate and LoginStarted do the same for Login.
	LoginGate    chan struct{}
	LoginStarted chan struct{}
}

// NewFakeGateway creates an empty FakeGateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		accounts: make(map[string]account),
		tokens:   make(map[string]string),
		calls:    make(map[string]int),
	}
}

// AddUser registers an account that can log in.
func (f *FakeGateway) AddUser(email, password string, user service.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.Email == "" {
		user.Email = email
	}
	f.accounts[strings.ToLower(email)] = account{password: password, user: user}
}

// IssueToken makes token valid for userID, as if a login had happened.
func (f *FakeGateway) IssueToken(token, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = userID
}

// Revoke invalidates token. Later calls with it are unauthorized.
func (f *FakeGateway) Revoke(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
}

// AddTask adds a raw task as the server would store it.
func (f *FakeGateway) AddTask(raw map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, raw)
}

// RawTasks returns a copy of the stored raw tasks.
func (f *FakeGateway) RawTasks() []map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]map[string]any, len(f.tasks))
	for i, t := range f.tasks {
		out[i] = copyMap(t)
	}
	return out
}

// Calls returns how many times method was called.
func (f *FakeGateway) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

func (f *FakeGateway) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

func (f *FakeGateway) authorize(token string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	userID, ok := f.tokens[token]
	if !ok {
		return "", service.Unauthorized("invalid or expired token")
	}
	return userID, nil
}

func wait(ctx context.Context, started, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	if started != nil {
		started <- struct{}{}
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return service.WrapError(service.ErrNetwork, "request timed out", ctx.Err())
	}
}

// FetchTasks implements service.Gateway.
// The token is checked after the gate opens, so a token revoked while a
// fetch is blocked yields an unauthorized failure.
func (f *FakeGateway) FetchTasks(ctx context.Context, token string) (any, error) {
	f.record("FetchTasks")
	if err := wait(ctx, f.FetchStarted, f.FetchGate); err != nil {
		return nil, err
	}
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	if _, err := f.authorize(token); err != nil {
		return nil, err
	}

	f.mu.RLock()
	items := make([]any, len(f.tasks))
	for i, t := range f.tasks {
		items[i] = copyMap(t)
	}
	f.mu.RUnlock()

	switch f.Shape {
	case ShapeSequence:
		return items, nil
	case ShapeData:
		return map[string]any{"success": true, "data": items}, nil
	default:
		return map[string]any{"success": true, "tasks": items}, nil
	}
}

// CreateTask implements service.Gateway.
func (f *FakeGateway) CreateTask(ctx context.Context, token string, in service.TaskInput) (any, error) {
	f.record("CreateTask")
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if _, err := f.authorize(token); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	raw := map[string]any{"_id": fmt.Sprintf("t%d", f.nextID), "completed": false}
	applyInput(raw, in)
	f.tasks = append(f.tasks, raw)
	if f.AckOnly {
		return map[string]any{"success": true, "message": "Task created"}, nil
	}
	return map[string]any{"success": true, "task": copyMap(raw)}, nil
}

// UpdateTask implements service.Gateway.
func (f *FakeGateway) UpdateTask(ctx context.Context, token, id string, in service.TaskInput) (any, error) {
	f.record("UpdateTask")
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	if _, err := f.authorize(token); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, raw := range f.tasks {
		if rawID(raw) == id {
			applyInput(raw, in)
			if f.AckOnly {
				return map[string]any{"success": true, "message": "Task updated"}, nil
			}
			return map[string]any{"success": true, "task": copyMap(raw)}, nil
		}
	}
	return nil, service.NewError(service.ErrFailure, "Task not found")
}

// DeleteTask implements service.Gateway.
func (f *FakeGateway) DeleteTask(ctx context.Context, token, id string) error {
	f.record("DeleteTask")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, err := f.authorize(token); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, raw := range f.tasks {
		if rawID(raw) == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.NewError(service.ErrFailure, "Task not found")
}

// Login implements service.Gateway.
func (f *FakeGateway) Login(ctx context.Context, creds service.Credentials) (service.LoginResult, error) {
	f.record("Login")
	if err := wait(ctx, f.LoginStarted, f.LoginGate); err != nil {
		return service.LoginResult{}, err
	}
	if f.LoginErr != nil {
		return service.LoginResult{}, f.LoginErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[strings.ToLower(creds.Email)]
	if !ok || acct.password != creds.Password {
		return service.LoginResult{}, service.NewError(service.ErrAuthFailed, "Invalid credentials")
	}
	f.issued++
	token := fmt.Sprintf("token-%d", f.issued)
	f.tokens[token] = acct.user.ID
	return service.LoginResult{Token: token, User: acct.user}, nil
}

// Signup implements service.Gateway.
func (f *FakeGateway) Signup(ctx context.Context, in service.SignupInput) error {
	f.record("Signup")
	if f.SignupErr != nil {
		return f.SignupErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(in.Email)
	if _, exists := f.accounts[key]; exists {
		return service.NewError(service.ErrAuthFailed, "User already exists")
	}
	f.accounts[key] = account{
		password: in.Password,
		user:     service.User{ID: fmt.Sprintf("u%d", len(f.accounts)+1), Name: in.Name, Email: in.Email},
	}
	return nil
}

// FetchCurrentUser implements service.Gateway.
func (f *FakeGateway) FetchCurrentUser(ctx context.Context, token string) (service.User, error) {
	f.record("FetchCurrentUser")
	if f.CurrentUserErr != nil {
		return service.User{}, f.CurrentUserErr
	}
	userID, err := f.authorize(token)
	if err != nil {
		return service.User{}, err
	}
	return f.userByID(userID), nil
}

// UpdateProfile implements service.Gateway.
func (f *FakeGateway) UpdateProfile(ctx context.Context, token string, in service.ProfileInput) (service.User, error) {
	f.record("UpdateProfile")
	if f.ProfileErr != nil {
		return service.User{}, f.ProfileErr
	}
	userID, err := f.authorize(token)
	if err != nil {
		return service.User{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for email, acct := range f.accounts {
		if acct.user.ID == userID {
			delete(f.accounts, email)
			acct.user.Name, acct.user.Email = in.Name, in.Email
			f.accounts[strings.ToLower(in.Email)] = acct
			return acct.user, nil
		}
	}
	return service.User{ID: userID, Name: in.Name, Email: in.Email}, nil
}

// ChangePassword implements service.Gateway.
func (f *FakeGateway) ChangePassword(ctx context.Context, token, current, next string) error {
	f.record("ChangePassword")
	if f.PasswordErr != nil {
		return f.PasswordErr
	}
	userID, err := f.authorize(token)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for email, acct := range f.accounts {
		if acct.user.ID == userID {
			if acct.password != current {
				return service.NewError(service.ErrFailure, "Current password is incorrect")
			}
			acct.password = next
			f.accounts[email] = acct
			return nil
		}
	}
	return nil
}

func (f *FakeGateway) userByID(id string) service.User {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, acct := range f.accounts {
		if acct.user.ID == id {
			return acct.user
		}
	}
	return service.User{ID: id}
}

func applyInput(raw map[string]any, in service.TaskInput) {
	if in.Title != nil {
		raw["title"] = *in.Title
	}
	if in.Description != nil {
		raw["description"] = *in.Description
	}
	if in.Priority != nil {
		raw["priority"] = *in.Priority
	}
	if in.DueDate != nil {
		raw["dueDate"] = *in.DueDate
	}
	if in.Completed != nil {
		raw["completed"] = *in.Completed
	}
}

func rawID(raw map[string]any) string {
	if id, ok := raw["_id"].(string); ok {
		return id
	}
	id, _ := raw["id"].(string)
	return id
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
