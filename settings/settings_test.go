package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestParseYAMLTypes(t *testing.T) {
	m, err := ParseYAML([]byte(`
CSRF_ENABLED: false
CSRF_TIME_LIMIT: 600
CSRF_FIELD_NAME: token
CSRF_METHODS: [POST, PUT]
I18N_DOMAIN: null
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if v, _ := m.Lookup("CSRF_ENABLED"); v != false {
		t.Fatalf("expected bool false, got %#v", v)
	}
	if v, _ := m.Lookup("CSRF_TIME_LIMIT"); v != 600 {
		t.Fatalf("expected int 600, got %#v", v)
	}
	if v, _ := m.Lookup("CSRF_METHODS"); len(v.([]any)) != 2 {
		t.Fatalf("expected list, got %#v", v)
	}
	if v, ok := m.Lookup("I18N_DOMAIN"); !ok || v != nil {
		t.Fatalf("expected present nil value, got %#v ok=%v", v, ok)
	}
	if _, ok := m.Lookup("MISSING"); ok {
		t.Fatal("missing key must not be found")
	}
}

func TestParseYAMLEmpty(t *testing.T) {
	m, err := ParseYAML(nil)
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
	if _, err := ParseYAML([]byte("- a\n- b\n")); err == nil {
		t.Fatal("expected error for non-mapping document")
	}
}

func TestMergeOverrides(t *testing.T) {
	m := Merge(Map{"A": 1, "B": 2}, nil, Map{"B": 3})
	if m["A"] != 1 || m["B"] != 3 {
		t.Fatalf("unexpected merge result %v", m)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CSRF_SECRET_KEY=abc\nCSRF_ENABLED=false\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	m, err := LoadDotEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m["CSRF_SECRET_KEY"] != "abc" || m["CSRF_ENABLED"] != "false" {
		t.Fatalf("unexpected values %v", m)
	}
	if _, err := LoadDotEnv(filepath.Join(dir, "missing.env")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFromEnviron(t *testing.T) {
	t.Setenv("GOFORMS_TEST_CSRF_FIELD_NAME", "xsrf")
	t.Setenv("GOFORMS_TEST_", "ignored")

	m := FromEnviron("GOFORMS_TEST_")
	if m["CSRF_FIELD_NAME"] != "xsrf" {
		t.Fatalf("expected prefixed key stripped, got %v", m)
	}
	if _, ok := m[""]; ok {
		t.Fatal("bare prefix must not produce an empty key")
	}
}

func TestLiveWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("CSRF_FIELD_NAME: a\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	initial, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	live := NewLive(initial)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := live.Watch(ctx, path, LoadYAML, zap.NewNop()); err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := os.WriteFile(path, []byte("CSRF_FIELD_NAME: b\n"), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if v, _ := live.Lookup("CSRF_FIELD_NAME"); v == "b" {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("settings were not reloaded")
}

func TestLiveStoreNil(t *testing.T) {
	live := NewLive(nil)
	if len(live.Snapshot()) != 0 {
		t.Fatal("nil snapshot should read as empty")
	}
	live.Store(Map{"K": "v"})
	if v, ok := live.Lookup("K"); !ok || v != "v" {
		t.Fatalf("expected stored value, got %v", v)
	}
}
