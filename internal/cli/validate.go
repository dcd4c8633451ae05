package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/retrace/internal/engine"
	"github.com/roach88/retrace/internal/graph"
	"github.com/roach88/retrace/internal/store"
)

// EntryIssue describes the unresolvable references found in one entry.
type EntryIssue struct {
	EntryID string   `json:"entry_id"`
	Func    string   `json:"func"`
	Graph   string   `json:"graph"` // "args", "kwargs" or "result"
	Orphans []string `json:"orphans"`
}

// ValidationResult holds validation results for a whole store.
type ValidationResult struct {
	Valid   bool         `json:"valid"`
	Entries int          `json:"entries"`
	Issues  []EntryIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var funcFilter string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check stored entries for unresolvable references",
		Long: `Validate every recorded entry in the store.

Each entry's argument, keyword and result graphs are checked for
references that no anchor in the entry resolves. Orphan references
make an entry unreplayable and fail validation.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, funcFilter, cmd)
		},
	}

	cmd.Flags().StringVar(&funcFilter, "func", "", "only validate entries for this function")

	return cmd
}

func runValidate(opts *RootOptions, funcFilter string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

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

	formatter.VerboseLog("Validating %d entr(ies) from %s", len(entries), opts.Store)

	var issues []EntryIssue
	for _, e := range entries {
		issues = append(issues, validateEntry(e)...)
	}

	if len(issues) > 0 {
		return outputValidationIssues(formatter, len(entries), issues)
	}
	return outputValidateSuccess(formatter, len(entries))
}

// validateEntry checks each of the entry's three graphs against the
// other two as donors, mirroring replay's reference resolution.
func validateEntry(e store.Entry) []EntryIssue {
	var issues []EntryIssue

	graphs := [3]graph.Node{e.Args, e.Kwargs, e.Result}
	names := [3]string{"args", "kwargs", "result"}

	for i, target := range graphs {
		if target == nil {
			continue
		}
		var donors []graph.Node
		for j, d := range graphs {
			if j != i && d != nil {
				donors = append(donors, d)
			}
		}
		orphans := engine.FindOrphanRefs(target, donors...)
		if len(orphans) > 0 {
			issues = append(issues, EntryIssue{
				EntryID: e.ID,
				Func:    e.Func,
				Graph:   names[i],
				Orphans: orphanStrings(orphans),
			})
		}
	}
	return issues
}

// loadEntries opens the store and reads the entries matching the
// optional function filter.
func loadEntries(ctx context.Context, opts *RootOptions, funcFilter string) ([]store.Entry, error) {
	if _, err := os.Stat(opts.Store); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("store not found: %s", opts.Store))
	}

	s, err := store.Open(opts.Store)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "opening store", err)
	}
	defer s.Close()

	if funcFilter != "" {
		return s.ReadByFunc(ctx, funcFilter)
	}
	return s.ReadAll(ctx)
}

func orphanStrings(orphans []engine.OrphanRef) []string {
	out := make([]string, len(orphans))
	for i, o := range orphans {
		out[i] = o.String()
	}
	return out
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, entries int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Entries: entries})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d entr(ies) valid\n", entries)
	return nil
}

// outputValidationIssues outputs the orphan references found.
func outputValidationIssues(formatter *OutputFormatter, entries int, issues []EntryIssue) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Entries: entries, Issues: issues},
			Error: &CLIError{
				Code:    ErrCodeOrphanRefs,
				Message: fmt.Sprintf("%d entr(ies) with unresolvable references", len(issues)),
			},
		}
		if err := encodeIndented(formatter.Writer, response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(issues)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range issues {
		fmt.Fprintf(formatter.Writer, "entry %s (%s) %s\n", issue.EntryID, issue.Func, issue.Graph)
		for _, o := range issue.Orphans {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", ErrCodeOrphanRefs, o)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(issues)))
}
