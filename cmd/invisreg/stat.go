package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/invisreg/pkg/printer"
)

var statVisible bool

func init() {
	cmd := newStatCmd()
	cmd.Flags().BoolVar(&statVisible, "visible", false, "Open the key by its plain name only")
	rootCmd.AddCommand(cmd)
}

func newStatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat <path>",
		Short: "Show counts and subkeys of a key",
		Long: `The stat command prints the last write time, value count and subkeys of a
key. Hidden subkeys are listed with their names marked hidden. Without
--visible the plain name is tried first, then the hidden one.

Example:
  invisreg stat "HKCU:\SOFTWARE\X"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStat(cmd.Context(), args)
		},
	}
	return cmd
}

func runStat(ctx context.Context, args []string) error {
	path, err := decodeArg(args[0])
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
	info, err := s.stat(ctx, path, statVisible)
	if err != nil {
		return err
	}
	return pr.PrintKeyInfo(info)
}
