package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/invisreg/pkg/invis"
	"github.com/joshuapare/invisreg/pkg/manifest"
	"github.com/joshuapare/invisreg/pkg/printer"
)

var applyKeepGoing bool

func init() {
	cmd := newApplyCmd()
	cmd.Flags().BoolVar(&applyKeepGoing, "keep-going", false, "Run the remaining operations after a failure")
	rootCmd.AddCommand(cmd)
}

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <manifest>",
		Short: "Run the operations listed in a YAML, JSON or .reg manifest",
		Long: `The apply command runs a batch of operations in order. Each manifest entry
names exactly one of create, edit, delete or query. The whole manifest is
validated before the first operation runs.

Example manifest:
  operations:
    - create: HKCU:\SOFTWARE\X\Y
      type: dword
      value: "1337"
    - query: HKCU:\SOFTWARE\X

A .reg file is applied as its key headers and value lines. Entries that
follow the "; hidden:" marker of a --format reg export are hidden again.

Example:
  invisreg apply batch.yaml
  invisreg apply exported.reg
  invisreg apply batch.yaml --simulate --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.Context(), args)
		},
	}
	return cmd
}

func runApply(ctx context.Context, args []string) error {
	m, err := manifest.FromFile(args[0])
	if err != nil {
		return err
	}
	reqs, err := m.Requests()
	if err != nil {
		return err
	}
	pr, err := newPrinter(string(printer.FormatText), printer.DefaultMaxValueBytes)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	printVerbose("Applying %d operation(s) from %s\n", len(reqs), args[0])

	var errs []error
	done := 0
	for i, req := range reqs {
		if err := applyOne(ctx, s, pr, req); err != nil {
			err = fmt.Errorf("operation %d (%s %s): %w", i+1, req.Op, req.Path, err)
			if !applyKeepGoing {
				return err
			}
			printError("%v\n", err)
			errs = append(errs, err)
			continue
		}
		done++
	}

	if !jsonOut {
		printInfo("\n✓ %d of %d operation(s) applied\n", done, len(reqs))
	}
	return errors.Join(errs...)
}

func applyOne(ctx context.Context, s *session, pr *printer.Printer, req invis.Request) error {
	res, err := s.run(ctx, req)
	if err != nil {
		return err
	}
	defer res.Release()

	switch {
	case req.Op == invis.OpQuery:
		return pr.PrintResult(req.Path, res)
	case jsonOut:
		return printJSON(operationResult(req))
	default:
		printVerbose("%s %s %s: %s\n", req.Op, hiddenLabel(req.Visible), kindLabel(req.Container), req.Path)
		return nil
	}
}
