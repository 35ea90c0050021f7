// Package persistence saves and loads the server's durable state — the
// credential store, the feed collections registry, and the app config — as
// YAML snapshot files, written with a write-then-rename so a crash mid-save
// never leaves a half-written file in place of a good one.
package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"gopkg.in/yaml.v3"

	"feedkeep/backend/pkg/logger"
)

// SaveYAML marshals v as YAML and writes it to filepath.Join(dir, name),
// via a temporary sibling file that is renamed into place once fully
// written and flushed.
func SaveYAML(dir, name string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persistence: create dir: %w", err)
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("persistence: marshal %s: %w", name, err)
	}

	target := filepath.Join(dir, name)
	tmp := target + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("persistence: create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("persistence: write %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("persistence: sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("persistence: close %s: %w", name, err)
	}

	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("persistence: rename %s: %w", name, err)
	}
	return nil
}

// LoadYAML reads filepath.Join(dir, name) into v. It returns
// os.ErrNotExist (wrapped) if the file does not exist, so callers can fall
// back to a default value.
func LoadYAML(dir, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("persistence: unmarshal %s: %w", name, err)
	}
	return nil
}

// LoadOrDefault loads name into v, leaving v untouched (at its caller-
// supplied default) if the file is missing or cannot be deserialized. Either
// case is logged but never fatal: a corrupted snapshot must not crash
// startup, only fall back to a fresh default.
func LoadOrDefault(dir, name string, v any) error {
	// Decode into a throwaway value first: yaml.v3 keeps filling its target
	// after a type mismatch, so decoding straight into v could leave it
	// half-loaded.
	probe := reflect.New(reflect.TypeOf(v).Elem()).Interface()
	err := LoadYAML(dir, name, probe)
	if err == nil {
		err = LoadYAML(dir, name, v)
	}
	switch {
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return nil
	default:
		logger.Error("failed to load persisted state, falling back to default", "file", name, "error", err)
		return nil
	}
}
