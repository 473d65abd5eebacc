// Package lifecycle owns the session state machine: login, logout, forced
// logout on an unauthorized response, and the canonical task collection the
// stats and filtered views are derived from.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"taskflow/internal/cache"
	"taskflow/internal/filter"
	"taskflow/internal/logging"
	"taskflow/internal/service"
	"taskflow/internal/session"
	"taskflow/internal/stats"
	"taskflow/internal/task"
	"taskflow/internal/validation"
)

// Cache keeps the last committed collection for offline use.
type Cache interface {
	Store(ctx context.Context, userID string, tasks []task.Task) error
	Load(ctx context.Context, userID string) (cache.Snapshot, error)
	Clear(ctx context.Context) error
}

// ErrNoCache is returned by RestoreCached when no cache is configured.
var ErrNoCache = errors.New("offline cache is disabled")

// Option configures a Controller.
type Option func(*Controller)

// WithCache sets the task cache. It is written on every refresh and
// cleared on every logout.
func WithCache(c Cache) Option {
	return func(ctl *Controller) { ctl.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(ctl *Controller) {
		if l != nil {
			ctl.logger = l
		}
	}
}

// Controller is safe for concurrent use. Gateway calls are made without
// holding the lock; store and cache writes are made while holding it so a
// logout can never interleave with a commit.
type Controller struct {
	gw     service.Gateway
	store  session.Store
	cache  Cache
	logger *log.Logger

	mu    sync.Mutex
	state State
	// prev is the state to restore when a pending login fails.
	prev State
	sess session.Session
	user service.User
	// epoch identifies the current session instance. It changes whenever a
	// session starts or ends.
	epoch      uint64
	refreshing bool
	tasks      []task.Task

	listeners  map[int]func(Event)
	nextID     int
	pending    []Event
	delivering bool
}

// New returns a controller. It starts Authenticated when store holds a
// session, Unauthenticated otherwise.
func New(gw service.Gateway, store session.Store, opts ...Option) *Controller {
	c := &Controller{
		gw:        gw,
		store:     store,
		logger:    logging.Discard(),
		state:     Unauthenticated,
		listeners: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if s, ok := store.Load(); ok {
		c.sess = s
		c.user = service.User{ID: s.UserID}
		c.state = Authenticated
		c.epoch = 1
	}
	c.logger.Debug("controller ready", "state", c.state)
	return c
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it. Events are delivered in occurrence order, outside the
// controller lock.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// User returns the current user. Only ID is known until the user has been
// fetched or a login completed.
func (c *Controller) User() service.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Gateway returns the gateway the controller talks to.
func (c *Controller) Gateway() service.Gateway {
	return c.gw
}

// SubmitCredentials logs in. A second call while one is pending fails with
// ErrLoginInProgress. On failure the previous state is restored.
func (c *Controller) SubmitCredentials(ctx context.Context, creds service.Credentials) (service.User, error) {
	if err := validation.Credentials(creds); err != nil {
		return service.User{}, err
	}

	c.mu.Lock()
	if c.state == Authenticating {
		c.mu.Unlock()
		return service.User{}, ErrLoginInProgress
	}
	c.prev = c.state
	c.setStateLocked(Authenticating)
	epoch := c.epoch
	c.mu.Unlock()

	res, err := c.gw.Login(ctx, creds)
	if err == nil && (res.Token == "" || res.User.ID == "") {
		err = service.NewError(service.ErrAuthFailed, "")
	}

	c.mu.Lock()
	if err != nil {
		c.setStateLocked(c.prev)
		c.mu.Unlock()
		c.logger.Debug("login failed", "err", err)
		return service.User{}, err
	}
	if c.epoch != epoch {
		// A logout landed while the login was pending.
		c.setStateLocked(c.prev)
		c.mu.Unlock()
		return service.User{}, ErrSessionEnded
	}

	next := session.Session{Token: res.Token, UserID: res.User.ID}
	if err := c.store.Save(next); err != nil {
		c.setStateLocked(c.prev)
		c.mu.Unlock()
		return service.User{}, fmt.Errorf("save session: %w", err)
	}
	c.epoch++
	c.sess = next
	c.user = res.User
	c.tasks = nil
	c.refreshing = false
	c.setStateLocked(Authenticated)
	c.pending = append(c.pending, EventSessionEstablished{User: res.User})
	c.mu.Unlock()

	c.logger.Info("logged in", "user", res.User.ID)
	c.flush()
	return res.User, nil
}

// Signup registers an account. It needs no session and leaves state alone.
func (c *Controller) Signup(ctx context.Context, in service.SignupInput) error {
	if err := validation.Signup(in); err != nil {
		return err
	}
	return c.gw.Signup(ctx, in)
}

// Logout ends the session without contacting the gateway. Logging out
// with no session only clears storage.
func (c *Controller) Logout() error {
	c.mu.Lock()
	had := c.sess.Valid()
	err := c.store.Clear()
	c.endSessionLocked()
	if had {
		c.pending = append(c.pending, EventLoggedOut{Reason: ReasonUserLogout})
	}
	c.mu.Unlock()

	if had {
		c.logger.Info("logged out")
	}
	c.flush()
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// forceLogout ends the session identified by epoch after an unauthorized
// response. Later calls for the same epoch do nothing.
func (c *Controller) forceLogout(epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch || !c.sess.Valid() {
		c.mu.Unlock()
		return
	}
	if c.state != Authenticating {
		c.setStateLocked(SessionExpiring)
	}
	if err := c.store.Clear(); err != nil {
		c.logger.Error("clear session", "err", err)
	}
	c.endSessionLocked()
	c.pending = append(c.pending, EventLoggedOut{Reason: ReasonUnauthorized})
	c.mu.Unlock()

	c.logger.Warn("session expired, logged out")
	c.flush()
}

// endSessionLocked drops the session, the collection and the cache.
// The caller holds c.mu.
func (c *Controller) endSessionLocked() {
	c.epoch++
	c.sess = session.Session{}
	c.user = service.User{}
	c.tasks = nil
	c.refreshing = false
	if c.cache != nil {
		if err := c.cache.Clear(context.Background()); err != nil {
			c.logger.Error("clear task cache", "err", err)
		}
	}
	if c.state == Authenticating {
		// A pending login that fails now lands in Unauthenticated.
		c.prev = Unauthenticated
		return
	}
	c.setStateLocked(Unauthenticated)
}

func (c *Controller) setStateLocked(s State) {
	if c.state != s {
		c.logger.Debug("state", "from", c.state, "to", s)
	}
	c.state = s
}

// current returns the live session and its epoch.
func (c *Controller) current() (session.Session, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Authenticated || !c.sess.Valid() {
		return session.Session{}, 0, ErrNotAuthenticated
	}
	return c.sess, c.epoch, nil
}

// settle routes an unauthorized failure to the forced logout and reports
// ErrSessionEnded for successes that outlived their session.
func (c *Controller) settle(epoch uint64, err error) error {
	if err != nil {
		if service.IsUnauthorized(err) {
			c.forceLogout(epoch)
		}
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return ErrSessionEnded
	}
	return nil
}

// Refresh fetches the collection and replaces the canonical one wholesale.
// Only one refresh runs at a time; a concurrent call fails with
// ErrRefreshInProgress.
func (c *Controller) Refresh(ctx context.Context) ([]task.Task, error) {
	c.mu.Lock()
	if c.state != Authenticated || !c.sess.Valid() {
		c.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	if c.refreshing {
		c.mu.Unlock()
		return nil, ErrRefreshInProgress
	}
	c.refreshing = true
	epoch, sess := c.epoch, c.sess
	c.mu.Unlock()

	start := time.Now()
	raw, err := c.gw.FetchTasks(ctx, sess.Token)
	if err != nil {
		if service.IsUnauthorized(err) {
			c.forceLogout(epoch)
			return nil, err
		}
		c.mu.Lock()
		stale := c.epoch != epoch
		if !stale {
			c.refreshing = false
		}
		c.mu.Unlock()
		if stale {
			return nil, ErrSessionEnded
		}
		return nil, err
	}
	tasks := task.Normalize(raw)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.logger.Debug("discarding refresh result of ended session")
		return nil, ErrSessionEnded
	}
	c.refreshing = false
	c.tasks = tasks
	if c.cache != nil {
		if err := c.cache.Store(ctx, sess.UserID, tasks); err != nil {
			c.logger.Warn("write task cache", "err", err)
		}
	}
	c.pending = append(c.pending, EventTasksRefreshed{Tasks: clone(tasks)})
	c.mu.Unlock()

	c.logger.Debug("refreshed", "tasks", len(tasks), "took", time.Since(start).Round(time.Millisecond))
	c.flush()
	return clone(tasks), nil
}

// RestoreCached commits the session user's cached collection without
// contacting the gateway and returns when it was fetched.
func (c *Controller) RestoreCached(ctx context.Context) (time.Time, error) {
	if c.cache == nil {
		return time.Time{}, ErrNoCache
	}
	sess, epoch, err := c.current()
	if err != nil {
		return time.Time{}, err
	}
	snap, err := c.cache.Load(ctx, sess.UserID)
	if err != nil {
		return time.Time{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return time.Time{}, ErrSessionEnded
	}
	c.tasks = snap.Tasks
	return snap.RefreshedAt, nil
}

// CreateTask validates and creates a task and adds it to the collection.
func (c *Controller) CreateTask(ctx context.Context, in service.TaskInput) (task.Task, error) {
	if err := validation.TaskCreate(in); err != nil {
		return task.Task{}, err
	}
	sess, epoch, err := c.current()
	if err != nil {
		return task.Task{}, err
	}

	in = canonicalInput(in)
	raw, err := c.gw.CreateTask(ctx, sess.Token, in)
	if err := c.settle(epoch, err); err != nil {
		return task.Task{}, err
	}
	created, ok := task.NormalizeOne(raw)
	if !ok {
		created = applyInput(task.Task{}, in)
	}

	c.mu.Lock()
	if c.epoch == epoch && c.tasks != nil {
		c.tasks = append(c.tasks, created)
	}
	c.mu.Unlock()
	return created, nil
}

// UpdateTask validates and applies a partial update to task id.
func (c *Controller) UpdateTask(ctx context.Context, id string, in service.TaskInput) (task.Task, error) {
	if err := validation.TaskUpdate(in); err != nil {
		return task.Task{}, err
	}
	sess, epoch, err := c.current()
	if err != nil {
		return task.Task{}, err
	}

	in = canonicalInput(in)
	raw, err := c.gw.UpdateTask(ctx, sess.Token, id, in)
	if err := c.settle(epoch, err); err != nil {
		return task.Task{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	updated, ok := task.NormalizeOne(raw)
	idx := indexOf(c.tasks, id)
	if !ok {
		base := task.Task{ID: id}
		if idx >= 0 {
			base = c.tasks[idx]
		}
		updated = applyInput(base, in)
	}
	if updated.ID == "" {
		updated.ID = id
	}
	if c.epoch == epoch && idx >= 0 {
		c.tasks[idx] = updated
	}
	return updated, nil
}

// SetCompleted marks task id done or not done.
func (c *Controller) SetCompleted(ctx context.Context, id string, done bool) (task.Task, error) {
	return c.UpdateTask(ctx, id, service.TaskInput{Completed: service.Bool(done)})
}

// DeleteTask deletes task id and removes it from the collection.
func (c *Controller) DeleteTask(ctx context.Context, id string) error {
	sess, epoch, err := c.current()
	if err != nil {
		return err
	}
	err = c.gw.DeleteTask(ctx, sess.Token, id)
	if err := c.settle(epoch, err); err != nil {
		return err
	}

	c.mu.Lock()
	if idx := indexOf(c.tasks, id); c.epoch == epoch && idx >= 0 {
		c.tasks = append(c.tasks[:idx:idx], c.tasks[idx+1:]...)
	}
	c.mu.Unlock()
	return nil
}

// CurrentUser fetches the user the session belongs to.
func (c *Controller) CurrentUser(ctx context.Context) (service.User, error) {
	sess, epoch, err := c.current()
	if err != nil {
		return service.User{}, err
	}
	u, err := c.gw.FetchCurrentUser(ctx, sess.Token)
	if err := c.settle(epoch, err); err != nil {
		return service.User{}, err
	}
	c.mu.Lock()
	if c.epoch == epoch {
		c.user = u
	}
	c.mu.Unlock()
	return u, nil
}

// RestoreSession verifies a session loaded from storage. An unauthorized
// response ends it like any other.
func (c *Controller) RestoreSession(ctx context.Context) (service.User, error) {
	u, err := c.CurrentUser(ctx)
	if err != nil {
		return service.User{}, err
	}
	c.logger.Debug("session restored", "user", u.ID)
	return u, nil
}

// UpdateProfile validates and saves the user's name and email.
func (c *Controller) UpdateProfile(ctx context.Context, in service.ProfileInput) (service.User, error) {
	if err := validation.Profile(in); err != nil {
		return service.User{}, err
	}
	sess, epoch, err := c.current()
	if err != nil {
		return service.User{}, err
	}
	u, err := c.gw.UpdateProfile(ctx, sess.Token, in)
	if err := c.settle(epoch, err); err != nil {
		return service.User{}, err
	}
	if u.ID == "" {
		u.ID = sess.UserID
	}
	c.mu.Lock()
	if c.epoch == epoch {
		c.user = u
	}
	c.mu.Unlock()
	return u, nil
}

// ChangePassword validates the confirmation and changes the password.
func (c *Controller) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if err := validation.PasswordChange(current, next, confirm); err != nil {
		return err
	}
	sess, epoch, err := c.current()
	if err != nil {
		return err
	}
	err = c.gw.ChangePassword(ctx, sess.Token, current, next)
	return c.settle(epoch, err)
}

// Tasks returns a copy of the canonical collection.
func (c *Controller) Tasks() []task.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.tasks)
}

// Stats summarizes the canonical collection.
func (c *Controller) Stats() stats.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stats.Compute(c.tasks)
}

// View returns the canonical collection filtered by kind relative to ref.
func (c *Controller) View(kind filter.Kind, ref time.Time) []task.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return filter.Apply(c.tasks, kind, ref)
}

// flush delivers pending events. Whoever finds the queue idle delivers
// everything queued, including events raised by listeners themselves.
func (c *Controller) flush() {
	c.mu.Lock()
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true
	for len(c.pending) > 0 {
		ev := c.pending[0]
		c.pending = c.pending[1:]
		listeners := make([]func(Event), 0, len(c.listeners))
		for id := 0; id < c.nextID; id++ {
			if fn, ok := c.listeners[id]; ok {
				listeners = append(listeners, fn)
			}
		}
		c.mu.Unlock()
		for _, fn := range listeners {
			fn(ev)
		}
		c.mu.Lock()
	}
	c.delivering = false
	c.mu.Unlock()
}

// canonicalInput lowercases the priority so the gateway only sees
// canonical values.
func canonicalInput(in service.TaskInput) service.TaskInput {
	if in.Priority != nil {
		if p, ok := task.ParsePriority(*in.Priority); ok {
			in.Priority = service.String(string(p))
		}
	}
	return in
}

// applyInput returns t with the fields set in in.
func applyInput(t task.Task, in service.TaskInput) task.Task {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Priority != nil {
		p, _ := task.ParsePriority(*in.Priority)
		t.Priority = p
	}
	if in.DueDate != nil {
		if d, err := time.Parse(task.DateLayout, *in.DueDate); err == nil {
			t.Due = &d
		}
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	return t
}

func indexOf(tasks []task.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func clone(tasks []task.Task) []task.Task {
	if tasks == nil {
		return nil
	}
	out := make([]task.Task, len(tasks))
	copy(out, tasks)
	return out
}
