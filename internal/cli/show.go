package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/retrace/internal/store"
)

// EntryView is the YAML/JSON rendering of a stored entry.
type EntryView struct {
	ID     string `json:"id" yaml:"id"`
	Func   string `json:"func" yaml:"func"`
	Seq    int64  `json:"seq" yaml:"seq"`
	Args   string `json:"args" yaml:"args"`
	Kwargs string `json:"kwargs" yaml:"kwargs"`
	Result string `json:"result" yaml:"result"`
}

// FuncSummary lists a recorded function with its entry count.
type FuncSummary struct {
	Func    string `json:"func"`
	Entries int    `json:"entries"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [entry-id]",
		Short: "Show a stored entry, or list recorded functions",
		Long: `Show the captured graphs of one entry as YAML.

Without an entry id, lists the recorded functions and how many
entries each one has.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runShowFuncs(rootOpts, cmd)
			}
			return runShowEntry(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runShowEntry(opts *RootOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	s, err := openStore(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreOpen, err.Error(), nil)
		return err
	}
	defer s.Close()

	e, err := s.ReadEntry(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "entry not found", err)
		}
		_ = formatter.Error(ErrCodeStoreRead, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading entry", err)
	}

	view, err := entryView(e)
	if err != nil {
		_ = formatter.Error(ErrCodeBadGraph, err.Error(), nil)
		return WrapExitError(ExitCommandError, "rendering entry", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(view)
	}
	data, err := yaml.Marshal(view)
	if err != nil {
		return WrapExitError(ExitCommandError, "marshaling entry", err)
	}
	fmt.Fprint(formatter.Writer, string(data))
	return nil
}

func runShowFuncs(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	s, err := openStore(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreOpen, err.Error(), nil)
		return err
	}
	defer s.Close()

	funcs, err := s.Funcs(cmd.Context())
	if err != nil {
		_ = formatter.Error(ErrCodeStoreRead, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing functions", err)
	}

	summaries := make([]FuncSummary, 0, len(funcs))
	for _, f := range funcs {
		entries, err := s.ReadByFunc(cmd.Context(), f)
		if err != nil {
			_ = formatter.Error(ErrCodeStoreRead, err.Error(), nil)
			return WrapExitError(ExitCommandError, "listing functions", err)
		}
		summaries = append(summaries, FuncSummary{Func: f, Entries: len(entries)})
	}

	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(formatter.Writer, "no entries recorded")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(formatter.Writer, "%s  %d entr(ies)\n", s.Func, s.Entries)
	}
	return nil
}

func entryView(e store.Entry) (EntryView, error) {
	args, err := graphJSON(e.Args)
	if err != nil {
		return EntryView{}, err
	}
	kwargs, err := graphJSON(e.Kwargs)
	if err != nil {
		return EntryView{}, err
	}
	result, err := graphJSON(e.Result)
	if err != nil {
		return EntryView{}, err
	}
	return EntryView{
		ID:     e.ID,
		Func:   e.Func,
		Seq:    e.Seq,
		Args:   args,
		Kwargs: kwargs,
		Result: result,
	}, nil
}

func openStore(opts *RootOptions) (*store.Store, error) {
	s, err := store.Open(opts.Store)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "opening store", err)
	}
	return s, nil
}
