package cliopt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	s, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Listen != ":8080" {
		t.Errorf("Expected default listen ':8080', got %q", s.Listen)
	}
	if len(s.Schemas) != 1 || s.Schemas[0] != "public" {
		t.Errorf("Expected default schemas [public], got %v", s.Schemas)
	}
	if s.TSQueryCacheSize != 1024 {
		t.Errorf("Expected default tsquery cache size 1024, got %d", s.TSQueryCacheSize)
	}
}

func TestLoad_EnvVars(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PGFULLTEXT_DATABASE_URL", "postgres://env/db")
	t.Setenv("PGFULLTEXT_SCHEMAS", "app, billing")
	t.Setenv("PGFULLTEXT_READ_CACHE", "true")

	s, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.DatabaseURL != "postgres://env/db" {
		t.Errorf("Expected database url from env, got %q", s.DatabaseURL)
	}
	if len(s.Schemas) != 2 || s.Schemas[0] != "app" || s.Schemas[1] != "billing" {
		t.Errorf("Expected schemas [app billing], got %v", s.Schemas)
	}
	if !s.ReadCache {
		t.Error("Expected read cache enabled")
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PGFULLTEXT_LISTEN", ":9000")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindGlobalFlags(fs)
	if err := fs.Parse([]string{"--listen", ":7000", "--schemas", "app"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	s, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Listen != ":7000" {
		t.Errorf("Expected flag listen ':7000', got %q", s.Listen)
	}
	if len(s.Schemas) != 1 || s.Schemas[0] != "app" {
		t.Errorf("Expected schemas [app], got %v", s.Schemas)
	}
}

func TestLoad_UnsetFlagKeepsEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PGFULLTEXT_LOG_LEVEL", "debug")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindGlobalFlags(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.LogLevel != "debug" {
		t.Errorf("Expected env log level 'debug', got %q", s.LogLevel)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfg := "database_url: postgres://file/db\nschemas: [app]\nlog_format: json\n"
	if err := os.WriteFile(filepath.Join(dir, "pgfulltext.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.DatabaseURL != "postgres://file/db" || s.LogFormat != "json" {
		t.Errorf("Expected config file values, got %+v", s)
	}
}

func TestLoad_MissingExplicitConfig(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindGlobalFlags(fs)
	_ = fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	if _, err := Load(fs); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err == nil {
		t.Error("Expected error without database url")
	}
	s.DatabaseURL = "postgres://x/db"
	if err := s.Validate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	s.Schemas = nil
	if err := s.Validate(); err == nil {
		t.Error("Expected error without schemas")
	}
}

// chdir is equivalent to testing.T.Chdir (Go 1.24+), which the local
// toolchain lacks: it changes the working directory for the test and
// restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
