package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadEnvFiles_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "AAISP_T_BASE=base\nAAISP_T_OVER=base\nAAISP_T_PROC=file\n")
	writeFile(t, dir, ".env.dev", "AAISP_T_OVER=dev\n")
	writeFile(t, dir, ".env.local", "AAISP_T_LOCAL=local\n")
	t.Chdir(dir)
	t.Setenv("AAISP_T_PROC", "process")
	for _, k := range []string{"AAISP_T_BASE", "AAISP_T_OVER", "AAISP_T_LOCAL"} {
		t.Cleanup(func() { _ = os.Unsetenv(k) })
	}

	if err := LoadEnvFiles("dev"); err != nil {
		t.Fatalf("LoadEnvFiles: %v", err)
	}

	want := map[string]string{
		"AAISP_T_BASE":  "base",
		"AAISP_T_OVER":  "dev",
		"AAISP_T_LOCAL": "local",
		"AAISP_T_PROC":  "process",
	}
	for k, v := range want {
		if got := os.Getenv(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestLoadEnvFiles_NoFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := LoadEnvFiles("prod"); err != nil {
		t.Errorf("expected no error without .env files, got %v", err)
	}
}

func TestCredentials(t *testing.T) {
	t.Setenv("AAISP_USERNAME", "env-user")
	t.Setenv("AAISP_PASSWORD", "env-pass")

	u, p := ChaosConfig{}.Credentials()
	if u != "env-user" || p != "env-pass" {
		t.Errorf("env fallback = %q/%q", u, p)
	}

	u, p = ChaosConfig{Username: "cfg-user", Password: "cfg-pass"}.Credentials()
	if u != "cfg-user" || p != "cfg-pass" {
		t.Errorf("config values = %q/%q", u, p)
	}
}
