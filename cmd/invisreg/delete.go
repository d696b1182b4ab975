package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/invisreg/pkg/invis"
)

var (
	deleteKey     bool
	deleteVisible bool
)

func init() {
	cmd := newDeleteCmd()
	cmd.Flags().BoolVarP(&deleteKey, "key", "k", false, "Delete a key and everything below it")
	cmd.Flags().BoolVar(&deleteVisible, "visible", false, "Use the plain name instead of the hidden one")
	rootCmd.AddCommand(cmd)
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <path>",
		Aliases: []string{"rm"},
		Short:   "Delete a hidden value or key",
		Long: `The delete command removes a value, or with --key a key and all of its
subkeys. Hidden subkeys below a deleted key are removed as well.

Example:
  invisreg delete "HKCU:\SOFTWARE\X\Y"
  invisreg delete "HKCU:\SOFTWARE\X\K" --key
  invisreg delete "HKCU:\SOFTWARE\X\Y" --visible`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.Context(), args)
		},
	}
	return cmd
}

func runDelete(ctx context.Context, args []string) error {
	path, err := decodeArg(args[0])
	if err != nil {
		return err
	}
	req := invis.Request{Op: invis.OpDelete, Path: path, Container: deleteKey, Visible: deleteVisible}

	s, err := openSession()
	if err != nil {
		return err
	}
	if _, err := s.run(ctx, req); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(operationResult(req))
	}
	printInfo("\nDeleted %s %s: %s\n", hiddenLabel(req.Visible), kindLabel(req.Container), path)
	printInfo("\n✓ Done\n")
	return nil
}
