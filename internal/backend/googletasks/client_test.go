package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskflow/internal/service"
	"taskflow/internal/task"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewWithHTTPClient(ts.Client(), ts.URL+"/")
}

func TestFetchTasks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/lists/@default/tasks") {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("showCompleted") != "true" {
			t.Errorf("expected completed tasks to be requested, query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"items":[
			{"id":"a","title":"Done","status":"completed","due":"2024-06-10T00:00:00.000Z","notes":"n"},
			{"id":"b","title":"Open","status":"needsAction"}
		]}`)
	})

	raw, err := c.FetchTasks(context.Background(), "refresh")
	if err != nil {
		t.Fatalf("FetchTasks: %v", err)
	}
	got := task.Normalize(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	if !got[0].Completed || got[0].DueString() != "2024-06-10" || got[0].Description != "n" {
		t.Errorf("unexpected first task %+v", got[0])
	}
	if got[1].Completed || got[1].HasDue() {
		t.Errorf("unexpected second task %+v", got[1])
	}
}

func TestFetchTasks_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"code":401,"message":"Invalid Credentials"}}`)
	})

	_, err := c.FetchTasks(context.Background(), "revoked")
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUpdateTask_Reopen(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || !strings.HasSuffix(r.URL.Path, "/lists/@default/tasks/t1") {
			http.NotFound(w, r)
			return
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"t1","title":"Call","status":"needsAction"}`)
	})

	raw, err := c.UpdateTask(context.Background(), "refresh", "t1", service.TaskInput{Completed: service.Bool(false)})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if body["status"] != "needsAction" {
		t.Errorf("status = %v", body["status"])
	}
	if v, ok := body["completed"]; !ok || v != nil {
		t.Errorf("expected completed to be sent as null, body %v", body)
	}
	if got, ok := task.NormalizeOne(raw); !ok || got.Completed {
		t.Errorf("unexpected task %+v", got)
	}
}

func TestDeleteTask_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"code":404,"message":"Task not found"}}`)
	})

	err := c.DeleteTask(context.Background(), "refresh", "missing")
	if !errors.Is(err, service.ErrFailure) || err.Error() != "not found" {
		t.Fatalf("expected not found failure, got %v", err)
	}
}

func TestUnsupportedOperations(t *testing.T) {
	c := NewWithHTTPClient(http.DefaultClient, "http://127.0.0.1:1/")
	ctx := context.Background()

	err := c.Signup(ctx, service.SignupInput{})
	if !errors.Is(err, service.ErrUnsupported) {
		t.Errorf("Signup: %v", err)
	}
	if want := "signups are not available with the googletasks backend"; err == nil || err.Error() != want {
		t.Errorf("Signup message = %v, want %q", err, want)
	}
	if _, err := c.UpdateProfile(ctx, "t", service.ProfileInput{}); !errors.Is(err, service.ErrUnsupported) {
		t.Errorf("UpdateProfile: %v", err)
	}
	if err := c.ChangePassword(ctx, "t", "a", "b"); !errors.Is(err, service.ErrUnsupported) {
		t.Errorf("ChangePassword: %v", err)
	}
	if _, err := c.Login(ctx, service.Credentials{AuthCode: "x"}); !errors.Is(err, service.ErrUnsupported) {
		t.Errorf("Login without oauth config: %v", err)
	}
}

func TestAPITask(t *testing.T) {
	in := service.TaskInput{
		Title:       service.String("Report"),
		Description: service.String("Q3"),
		Priority:    service.String("high"),
		DueDate:     service.String("2024-06-10"),
		Completed:   service.Bool(true),
	}
	got := apiTask(in)
	if got.Title != "Report" || got.Notes != "Q3" {
		t.Errorf("unexpected title/notes %+v", got)
	}
	if got.Due != "2024-06-10T00:00:00Z" {
		t.Errorf("Due = %q", got.Due)
	}
	if got.Status != statusCompleted {
		t.Errorf("Status = %q", got.Status)
	}

	if empty := apiTask(service.TaskInput{}); empty.Status != "" || empty.Due != "" {
		t.Errorf("unset fields must stay empty, got %+v", empty)
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"retrieve error", &oauth2.RetrieveError{ErrorCode: "invalid_grant"}, service.ErrUnauthorized},
		{"forbidden", &googleapi.Error{Code: 403}, service.ErrUnauthorized},
		{"server error", &googleapi.Error{Code: 500, Message: "backend"}, service.ErrFailure},
		{"deadline", context.DeadlineExceeded, service.ErrNetwork},
		{"other", errors.New("boom"), service.ErrFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("wrapError(%v) = %v, want kind %v", tt.err, got, tt.want)
			}
		})
	}
	if wrapError(nil) != nil {
		t.Error("nil stays nil")
	}
}
