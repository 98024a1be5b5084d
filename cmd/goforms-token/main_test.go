package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(stdout.String()), stderr.String(), err
}

func TestSignVerifyRoundTrip(t *testing.T) {
	token, _, err := run(t, "sign", "--secret", "cli-secret", "raw-value")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	raw, _, err := run(t, "verify", "--secret", "cli-secret", "--raw", "raw-value", token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if raw != "raw-value" {
		t.Fatalf("expected raw-value, got %q", raw)
	}
}

func TestSignGeneratesRawToken(t *testing.T) {
	token, stderr, err := run(t, "sign", "--secret", "cli-secret")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if token == "" || !strings.HasPrefix(stderr, "raw: ") {
		t.Fatalf("expected token and raw report, got %q / %q", token, stderr)
	}
	raw := strings.TrimSpace(strings.TrimPrefix(stderr, "raw: "))
	if len(raw) != 40 {
		t.Fatalf("expected 40 hex chars, got %q", raw)
	}
}

func TestVerifyRejects(t *testing.T) {
	token, _, err := run(t, "sign", "--secret", "cli-secret", "--field", "a", "raw-value")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"other secret", []string{"verify", "--secret", "other", "--field", "a", token}},
		{"other field", []string{"verify", "--secret", "cli-secret", "--field", "b", token}},
		{"other raw", []string{"verify", "--secret", "cli-secret", "--field", "a", "--raw", "nope", token}},
		{"garbage", []string{"verify", "--secret", "cli-secret", "not-a-token"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := run(t, tc.args...); err == nil {
				t.Fatal("expected verification failure")
			}
		})
	}
}

func TestSecretFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("CSRF_SECRET_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}

	token, _, err := run(t, "sign", "--env-file", envFile, "raw-value")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, _, err := run(t, "verify", "--secret", "from-dotenv", token); err != nil {
		t.Fatalf("verify with dotenv secret: %v", err)
	}
}

func TestSecretFromConfigAndEnviron(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(cfg, []byte("CSRF_SECRET_KEY: from-yaml\nCSRF_TIME_LIMIT: 60\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GOFORMS_CSRF_SECRET_KEY", "from-environ")

	token, _, err := run(t, "sign", "--config", cfg, "raw-value")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, _, err := run(t, "verify", "--secret", "from-environ", token); err != nil {
		t.Fatalf("environment must override the YAML file: %v", err)
	}
}

func TestMissingSecret(t *testing.T) {
	t.Setenv("GOFORMS_CSRF_SECRET_KEY", "")
	t.Setenv("GOFORMS_SECRET_KEY", "")
	_, _, err := run(t, "sign", "raw-value")
	if err == nil || !strings.Contains(err.Error(), "no secret") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestLoadtestSmall(t *testing.T) {
	out, _, err := run(t, "loadtest", "--secret", "cli-secret", "--sessions", "5", "--concurrency", "2", "--ops", "20")
	if err != nil {
		t.Fatalf("loadtest: %v", err)
	}
	if !strings.Contains(out, "validate: ops=20 failures=0") {
		t.Fatalf("expected clean validate phase, got:\n%s", out)
	}
	if !strings.Contains(out, "generate: ops=20 failures=0") {
		t.Fatalf("expected clean generate phase, got:\n%s", out)
	}
}

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(samples, 50); got != 5 {
		t.Fatalf("expected p50 5, got %v", got)
	}
	if got := percentile(samples, 100); got != 10 {
		t.Fatalf("expected p100 10, got %v", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("expected 0 for no samples, got %v", got)
	}
}
