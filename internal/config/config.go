package config

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// FileName is the configuration file looked up by Discover.
const FileName = ".retrace.cue"

// Config holds the settings for the retrace store and case generation.
type Config struct {
	// Storage is the SQLite database path holding recorded entries.
	Storage string `json:"storage"`
	// Output is the directory where generated case files are written.
	Output string `json:"output"`
	// Limit caps the number of entries processed per function during
	// generation. Zero means no limit.
	Limit int `json:"limit"`
	// Format is the default CLI output format, "text" or "json".
	Format string `json:"format"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Storage: "retrace.db",
		Output:  "retrace_cases",
		Limit:   0,
		Format:  "text",
	}
}

// LoadError describes a configuration load failure.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants for configuration loading.
const (
	ErrCodeReadFailed    = "C001" // File could not be read
	ErrCodeCompileFailed = "C002" // CUE compile error
	ErrCodeDecodeFailed  = "C003" // CUE value did not decode into Config
	ErrCodeInvalidValue  = "C004" // Decoded value failed validation
)

// Discover walks up from startDir looking for a .retrace.cue file.
// It returns the file's path, or "" if none exists up to the
// filesystem root.
func Discover(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", startDir, err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("checking %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load reads and decodes the configuration file at path. Fields left
// unset in the file keep their Default() values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, &LoadError{Code: ErrCodeReadFailed, Path: path, Message: err.Error()}
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return cfg, &LoadError{Code: ErrCodeCompileFailed, Path: path, Message: err.Error()}
	}

	if err := value.Decode(&cfg); err != nil {
		return cfg, &LoadError{Code: ErrCodeDecodeFailed, Path: path, Message: err.Error()}
	}

	if err := cfg.validate(); err != nil {
		return cfg, &LoadError{Code: ErrCodeInvalidValue, Path: path, Message: err.Error()}
	}

	// Relative paths in the file are resolved against its directory.
	base := filepath.Dir(path)
	if cfg.Storage != "" && !filepath.IsAbs(cfg.Storage) {
		cfg.Storage = filepath.Join(base, cfg.Storage)
	}
	if cfg.Output != "" && !filepath.IsAbs(cfg.Output) {
		cfg.Output = filepath.Join(base, cfg.Output)
	}
	return cfg, nil
}

// Resolve discovers and loads configuration starting from startDir,
// falling back to Default() when no file exists.
func Resolve(startDir string) (Config, error) {
	path, err := Discover(startDir)
	if err != nil {
		return Default(), err
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c Config) validate() error {
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("format must be \"text\" or \"json\", got %q", c.Format)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", c.Limit)
	}
	return nil
}
