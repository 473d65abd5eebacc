package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every TASKFLOW_* variable for the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIURL, EnvBackend, EnvTimeout, EnvLogLevel, EnvLogFormat, EnvCache} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestNew_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, dir)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Backend != BackendREST {
		t.Errorf("Backend = %q", cfg.Backend)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout())
	}
	if !cfg.CacheEnabled() {
		t.Error("cache should default to enabled")
	}
}

func TestNew_DefaultDirUsesXDG(t *testing.T) {
	clearEnv(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfg, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if want := filepath.Join(xdg, AppName); cfg.Dir != want {
		t.Errorf("Dir = %q, want %q", cfg.Dir, want)
	}
}

func TestNew_Layering(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, SettingsFile), `
api_url = "https://tasks.example.com/"
timeout_seconds = 9
log_level = "info"
cache = false
`)
	writeFile(t, filepath.Join(dir, EnvFile), "TASKFLOW_TIMEOUT=12\nTASKFLOW_LOG_FORMAT=json\n")
	t.Setenv(EnvLogFormat, "logfmt")

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.APIURL != "https://tasks.example.com" {
		t.Errorf("APIURL = %q (toml value, trailing slash trimmed)", cfg.APIURL)
	}
	if cfg.TimeoutSeconds != 12 {
		t.Errorf("TimeoutSeconds = %d, want .env override 12", cfg.TimeoutSeconds)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "logfmt" {
		t.Errorf("LogFormat = %q, want process env to beat .env", cfg.LogFormat)
	}
	if cfg.CacheEnabled() {
		t.Error("cache disabled in toml")
	}
	if os.Getenv(EnvTimeout) != "" {
		t.Error(".env values must not leak into the process environment")
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		toml    string
		env     map[string]string
		wantErr string
	}{
		{"bad toml", "api_url = ", nil, "config.toml"},
		{"unknown backend", `backend = "jira"`, nil, "unknown backend"},
		{"zero timeout", "timeout_seconds = 0", nil, "timeout_seconds"},
		{"bad env timeout", "", map[string]string{EnvTimeout: "soon"}, EnvTimeout},
		{"bad env cache", "", map[string]string{EnvCache: "maybe"}, EnvCache},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			if tt.toml != "" {
				writeFile(t, filepath.Join(dir, SettingsFile), tt.toml)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := New(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := &Config{Dir: "/cfg"}
	tests := map[string]string{
		cfg.SessionPath():     "/cfg/session.json",
		cfg.OAuthClientPath(): "/cfg/oauth_client.json",
		cfg.CachePath():       "/cfg/tasks.db",
		cfg.SettingsPath():    "/cfg/config.toml",
		cfg.EnvFilePath():     "/cfg/.env",
	}
	for got, want := range tests {
		if filepath.ToSlash(got) != want {
			t.Errorf("path = %q, want %q", got, want)
		}
	}
}

func TestEnsureDir(t *testing.T) {
	cfg := &Config{Dir: filepath.Join(t.TempDir(), "nested", AppName)}
	if err := cfg.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory, got %v", err)
	}
	if cfg.HasOAuthClient() {
		t.Error("no oauth client file yet")
	}
}
