package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/invisreg/pkg/invis"
	"github.com/joshuapare/invisreg/pkg/printer"
)

var (
	queryVisible  bool
	queryFormat   string
	queryMaxBytes int
)

func init() {
	cmd := newQueryCmd()
	cmd.Flags().BoolVar(&queryVisible, "visible", false, "Look up only the plain name")
	cmd.Flags().StringVarP(&queryFormat, "format", "f", "text", "Output format (text, json, reg)")
	cmd.Flags().IntVar(&queryMaxBytes, "max-bytes", printer.DefaultMaxValueBytes,
		"Binary bytes shown per value in text and json output (0 for all)")
	rootCmd.AddCommand(cmd)
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query <path>",
		Aliases: []string{"get"},
		Short:   "Read a hidden value or list every value of a key",
		Long: `The query command reads the value named by the last path segment. When no
such value exists and the segment names a key instead, every value of that
key is listed, hidden ones included.

Example:
  invisreg query "HKCU:\SOFTWARE\X\Y"
  invisreg query "HKCU:\SOFTWARE\X" --format reg > hidden.reg
  invisreg query "HKCU:\SOFTWARE\X" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), args)
		},
	}
	return cmd
}

func runQuery(ctx context.Context, args []string) error {
	path, err := decodeArg(args[0])
	if err != nil {
		return err
	}
	pr, err := newPrinter(queryFormat, queryMaxBytes)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	res, err := s.run(ctx, invis.Request{Op: invis.OpQuery, Path: path, Visible: queryVisible})
	if err != nil {
		return err
	}
	defer res.Release()

	printVerbose("Found %d record(s)\n", res.Len())
	return pr.PrintResult(path, res)
}

// newPrinter builds a stdout printer. --json overrides format.
func newPrinter(format string, maxBytes int) (*printer.Printer, error) {
	opts := printer.DefaultOptions()
	f, err := printer.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if jsonOut {
		f = printer.FormatJSON
	}
	opts.Format = f
	opts.MaxValueBytes = maxBytes
	return printer.New(os.Stdout, opts), nil
}
