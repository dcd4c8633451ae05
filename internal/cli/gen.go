package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/retrace/internal/engine"
	"github.com/roach88/retrace/internal/graph"
	"github.com/roach88/retrace/internal/harness"
	"github.com/roach88/retrace/internal/store"
)

// GenResult summarizes a generation run.
type GenResult struct {
	Written int      `json:"written"`
	Skipped int      `json:"skipped"`
	Files   []string `json:"files,omitempty"`
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	var funcFilter string
	var outputDir string
	var limit int

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate replayable case files from recorded entries",
		Long: `Generate one YAML case file per recorded entry.

Each case carries the entry's argument graphs plus a standalone
expected graph built by inlining cross-graph references. Entries
whose references cannot be resolved are skipped with a warning
rather than producing an unreplayable case.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(rootOpts, funcFilter, outputDir, limit, cmd)
		},
	}

	cmd.Flags().StringVar(&funcFilter, "func", "", "only generate cases for this function")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides config)")
	cmd.Flags().IntVar(&limit, "limit", -1, "max entries per function, -1 uses config")

	return cmd
}

func runGen(opts *RootOptions, funcFilter, outputDir string, limit int, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if outputDir == "" {
		outputDir = opts.Config.Output
	}
	if limit < 0 {
		limit = opts.Config.Limit
	}

	entries, err := loadEntries(cmd.Context(), opts, funcFilter)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			_ = formatter.Error(ErrCodeStoreOpen, exitErr.Error(), nil)
			return err
		}
		_ = formatter.Error(ErrCodeStoreRead, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading store", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "creating output directory", err)
	}

	logger := slog.New(slog.NewTextHandler(formatter.GetErrWriter(), &slog.HandlerOptions{
		Level: genLogLevel(opts.Verbose),
	}))

	result := GenResult{}
	perFunc := map[string]int{}
	for _, e := range entries {
		if limit > 0 && perFunc[e.Func] >= limit {
			continue
		}

		expected, err := engine.BuildExpected(e.Result, e.Args, e.Kwargs, e.Func, logger)
		if err != nil {
			// Orphan refs make the expected graph ambiguous. Skip the
			// entry rather than generate a case that cannot pass.
			if engine.IsOrphanError(err) {
				logger.Warn("skipping entry with unresolvable references",
					"entry", e.ID, "func", e.Func, "err", err)
				result.Skipped++
				continue
			}
			_ = formatter.Error(ErrCodeBadGraph, err.Error(), nil)
			return WrapExitError(ExitCommandError, fmt.Sprintf("building expected for entry %s", e.ID), err)
		}

		path, err := writeCaseFile(outputDir, e, expected)
		if err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "writing case file", err)
		}
		perFunc[e.Func]++
		result.Written++
		result.Files = append(result.Files, path)
		formatter.VerboseLog("wrote %s", path)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %d case(s) written to %s", result.Written, outputDir)
	if result.Skipped > 0 {
		fmt.Fprintf(formatter.Writer, " (%d skipped)", result.Skipped)
	}
	fmt.Fprintln(formatter.Writer)
	return nil
}

// writeCaseFile marshals one case and writes it atomically.
func writeCaseFile(dir string, e store.Entry, expected graph.Node) (string, error) {
	argsJSON, err := graphJSON(e.Args)
	if err != nil {
		return "", fmt.Errorf("entry %s args: %w", e.ID, err)
	}
	kwargsJSON, err := graphJSON(e.Kwargs)
	if err != nil {
		return "", fmt.Errorf("entry %s kwargs: %w", e.ID, err)
	}
	expectedJSON, err := graphJSON(expected)
	if err != nil {
		return "", fmt.Errorf("entry %s expected: %w", e.ID, err)
	}

	doc := harness.Case{
		Func:     e.Func,
		Entry:    e.ID,
		Args:     argsJSON,
		Kwargs:   kwargsJSON,
		Expected: expectedJSON,
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling case: %w", err)
	}

	path := filepath.Join(dir, caseFileName(e.Func, e.ID))
	tmp, err := os.CreateTemp(dir, ".case-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}

// caseFileName builds "<func>__<id8>.yaml" with path-hostile runes
// replaced by underscores.
func caseFileName(funcName, id string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, funcName)
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s__%s.yaml", sanitized, short)
}

func graphJSON(n graph.Node) (string, error) {
	if n == nil {
		return "null", nil
	}
	data, err := graph.MarshalCanonical(n)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func genLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
