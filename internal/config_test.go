package internal

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/vocab/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestSessionConfig_File(t *testing.T) {
	for _, file := range []string{"", "animals.txt", "lists/animals.txt"} {
		cfg := SessionConfig{File: file}
		if err := cfg.Validate(); err != nil {
			t.Errorf("file %q should pass: %v", file, err)
		}
	}
	cfg := SessionConfig{File: "animals.md"}
	if err := cfg.Validate(); err == nil {
		t.Error("non-.txt session file should fail validation")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should be enabled by default")
	}
	if cfg.App.HTTP.Address() != ":8080" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
}

func TestHTTPConfig_AddressWithHost(t *testing.T) {
	cfg := HTTPConfig{Host: "127.0.0.1", Port: 9000}
	if got := cfg.Address(); got != "127.0.0.1:9000" {
		t.Errorf("address = %q", got)
	}
	cfg = HTTPConfig{Host: "::1", Port: 9000}
	if got := cfg.Address(); got != "[::1]:9000" {
		t.Errorf("address = %q", got)
	}
}

func TestEventsConfig_Throttle(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Events.IndexThrottle = 10 * time.Millisecond
	err := cfg.Validate()
	if err == nil || !strings.HasPrefix(err.Error(), "events:") {
		t.Fatalf("err = %v", err)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("VOCAB_SESSION_FILE", "lists/animals.txt")
	t.Setenv("VOCAB_SESSION_AUTOSAVE", "true")
	t.Setenv("VOCAB_APP_HTTP_PORT", "9090")
	t.Setenv("VOCAB_EVENTS_INDEX_THROTTLE", "5s")

	cfg := NewDefaultConfig()
	read, err := pkgconfig.LoadWithDefaults(filepath.Join(t.TempDir(), "none.yaml"), cfg, pkgconfig.WithEnvPrefix(EnvPrefix))
	if err != nil || read {
		t.Fatalf("read = %v, err = %v", read, err)
	}
	if cfg.Session.File != "lists/animals.txt" || !cfg.Session.Autosave ||
		cfg.App.HTTP.Port != 9090 || cfg.Events.IndexThrottle != 5*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
}
