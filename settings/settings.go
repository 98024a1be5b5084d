package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Map is an immutable-by-convention settings snapshot.
type Map map[string]any

// Lookup returns the raw value stored under key.
func (m Map) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// Merge layers maps left to right; later maps override earlier keys.
func Merge(layers ...Map) Map {
	out := Map{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

// LoadYAML reads a flat YAML mapping of setting keys to values.
func LoadYAML(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a flat YAML mapping. An empty document yields an empty Map.
func ParseYAML(data []byte) (Map, error) {
	out := Map{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if out == nil {
		out = Map{}
	}
	return out, nil
}

// LoadDotEnv reads .env files without touching the process environment. Values from
// later files override earlier ones.
func LoadDotEnv(paths ...string) (Map, error) {
	values, err := godotenv.Read(paths...)
	if err != nil {
		return nil, fmt.Errorf("read dotenv: %w", err)
	}

	out := make(Map, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out, nil
}

// FromEnviron collects environment variables that start with prefix, with the prefix
// stripped. An empty prefix collects everything.
func FromEnviron(prefix string) Map {
	out := Map{}
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		key = strings.TrimPrefix(key, prefix)
		if key == "" {
			continue
		}
		out[key] = value
	}
	return out
}
