package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "retrace.db", cfg.Storage)
	assert.Equal(t, "retrace_cases", cfg.Output)
	assert.Equal(t, 0, cfg.Limit)
	assert.Equal(t, "text", cfg.Format)
}

func TestLoad_OverridesAndResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
storage: "data/calls.db"
output:  "cases"
limit:   5
format:  "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data/calls.db"), cfg.Storage)
	assert.Equal(t, filepath.Join(dir, "cases"), cfg.Output)
	assert.Equal(t, 5, cfg.Limit)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `limit: 2`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Limit)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, filepath.Join(dir, "retrace.db"), cfg.Storage)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		wantCode string
	}{
		{"syntax error", `storage: "unclosed`, ErrCodeCompileFailed},
		{"wrong type", `limit: "three"`, ErrCodeDecodeFailed},
		{"bad format value", `format: "xml"`, ErrCodeInvalidValue},
		{"negative limit", `limit: -1`, ErrCodeInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := filepath.Join(dir, tt.name)
			require.NoError(t, os.MkdirAll(sub, 0o755))
			path := writeConfig(t, sub, tt.content)

			_, err := Load(path)
			require.Error(t, err)
			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.wantCode, loadErr.Code)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeReadFailed, loadErr.Code)
}

func TestDiscover_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	want := writeConfig(t, root, `limit: 1`)

	got, err := Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDiscover_NoFile(t *testing.T) {
	got, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestResolve_FallsBackToDefault(t *testing.T) {
	cfg, err := Resolve(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
