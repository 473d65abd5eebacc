package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"taskflow/internal/session"
)

func TestFileStore_SaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := session.NewFileStore(path)

	if _, ok := store.Load(); ok {
		t.Fatal("expected no session before save")
	}

	want := session.Session{Token: "tok-123", UserID: "u-1"}
	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok := store.Load()
	if !ok {
		t.Fatal("expected session after save")
	}
	if got != want {
		t.Errorf("loaded %+v, want %+v", got, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := store.Load(); ok {
		t.Error("expected no session after clear")
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second clear should be a no-op, got %v", err)
	}
}

func TestFileStore_LoadRejectsPartialOrMalformed(t *testing.T) {
	cases := map[string]string{
		"token only":   `{"token":"abc"}`,
		"user only":    `{"userId":"u-1"}`,
		"empty token":  `{"token":"","userId":"u-1"}`,
		"malformed":    `{"token":`,
		"wrong types":  `{"token":1,"userId":2}`,
		"empty object": `{}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session.json")
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatalf("write: %v", err)
			}
			if s, ok := session.NewFileStore(path).Load(); ok {
				t.Errorf("expected absent session, got %+v", s)
			}
		})
	}
}

func TestFileStore_SaveRejectsPartialSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := session.NewFileStore(path)
	if err := store.Save(session.Session{Token: "abc"}); err == nil {
		t.Fatal("expected error saving a session without user id")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("nothing should have been written")
	}
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := session.NewFileStore(filepath.Join(dir, "session.json"))
	for i := 0; i < 3; i++ {
		if err := store.Save(session.Session{Token: "t", UserID: "u"}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only session.json, found %d entries", len(entries))
	}
}

func TestMemoryStore(t *testing.T) {
	store := session.NewMemoryStore()
	if _, ok := store.Load(); ok {
		t.Fatal("expected empty store")
	}
	if err := store.Save(session.Session{Token: "t", UserID: "u"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if s, ok := store.Load(); !ok || s.Token != "t" {
		t.Errorf("unexpected load: %+v %v", s, ok)
	}
	_ = store.Clear()
	_ = store.Clear()
	if _, ok := store.Load(); ok {
		t.Error("expected empty store after clear")
	}
	if store.Saves() != 1 || store.Clears() != 2 {
		t.Errorf("saves=%d clears=%d", store.Saves(), store.Clears())
	}
}
