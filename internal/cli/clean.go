package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// CleanResult summarizes what a clean run removed.
type CleanResult struct {
	EntriesDeleted int64 `json:"entries_deleted"`
	FilesRemoved   int   `json:"files_removed"`
}

// NewCleanCommand creates the clean command.
func NewCleanCommand(rootOpts *RootOptions) *cobra.Command {
	var funcFilter string
	var cases bool
	var outputDir string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete recorded entries and generated case files",
		Long: `Delete recorded entries for a function, and optionally the
case files generated from them.

--func is required so a bare invocation cannot wipe the store.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if funcFilter == "" {
				return NewExitError(ExitCommandError, "clean requires --func")
			}
			return runClean(rootOpts, funcFilter, cases, outputDir, cmd)
		},
	}

	cmd.Flags().StringVar(&funcFilter, "func", "", "function whose entries are deleted")
	cmd.Flags().BoolVar(&cases, "cases", false, "also remove generated case files")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "case directory (overrides config)")

	return cmd
}

func runClean(opts *RootOptions, funcFilter string, cases bool, outputDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	s, err := openStore(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreOpen, err.Error(), nil)
		return err
	}
	defer s.Close()

	deleted, err := s.DeleteFunc(cmd.Context(), funcFilter)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreRead, err.Error(), nil)
		return WrapExitError(ExitCommandError, "deleting entries", err)
	}

	result := CleanResult{EntriesDeleted: deleted}
	if cases {
		if outputDir == "" {
			outputDir = opts.Config.Output
		}
		removed, err := removeCaseFiles(outputDir, funcFilter)
		if err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "removing case files", err)
		}
		result.FilesRemoved = removed
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %d entr(ies) deleted", result.EntriesDeleted)
	if cases {
		fmt.Fprintf(formatter.Writer, ", %d case file(s) removed", result.FilesRemoved)
	}
	fmt.Fprintln(formatter.Writer)
	return nil
}

// removeCaseFiles deletes case files generated for funcName. File
// names follow the "<func>__<id8>.yaml" pattern gen writes.
func removeCaseFiles(dir, funcName string) (int, error) {
	prefix := strings.TrimSuffix(caseFileName(funcName, ""), "__.yaml") + "__"

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
