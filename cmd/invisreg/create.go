package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/invisreg/pkg/invis"
	"github.com/joshuapare/invisreg/pkg/manifest"
)

var (
	createKey     bool
	createVisible bool
	createType    = onceString{name: "type"}
	createValue   = onceString{name: "value"}
	createHex     = onceString{name: "hex"}
	createFile    = onceString{name: "file"}
)

func init() {
	cmd := newCreateCmd()
	cmd.Flags().BoolVarP(&createKey, "key", "k", false, "Create a key instead of a value")
	cmd.Flags().BoolVar(&createVisible, "visible", false, "Use the plain name instead of the hidden one")
	cmd.Flags().VarP(&createType, "type", "t", "Value type (sz, dword, qword, binary)")
	cmd.Flags().Var(&createValue, "value", "Value data as text (decimal or 0x-prefixed for dword and qword)")
	cmd.Flags().Var(&createHex, "hex", "Binary value data as hex bytes")
	cmd.Flags().Var(&createFile, "file", "Read binary value data from a file")
	rootCmd.AddCommand(cmd)
}

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create <path>",
		Aliases: []string{"edit", "set"},
		Short:   "Create or overwrite a hidden value or key",
		Long: `The create command writes a value, or creates a key with --key, under a
name that starts with a NUL code unit. Writing an existing value replaces it.

Example:
  invisreg create "HKCU:\SOFTWARE\X\Y" --type dword --value 1337
  invisreg create "HKCU:\SOFTWARE\X\Y" --type sz --value "hello"
  invisreg create "HKCU:\SOFTWARE\X\Blob" --type binary --file payload.bin
  invisreg create "HKCU:\SOFTWARE\X\K" --key`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd.Context(), args)
		},
	}
	return cmd
}

func runCreate(ctx context.Context, args []string) error {
	path, err := decodeArg(args[0])
	if err != nil {
		return err
	}
	value := createValue.value
	if createValue.set {
		if value, err = decodeArg(value); err != nil {
			return err
		}
	}

	entry := manifest.Entry{
		Create:  path,
		Key:     createKey,
		Visible: createVisible,
		Type:    createType.value,
		Value:   value,
		Hex:     createHex.value,
		File:    createFile.value,
	}
	req, err := entry.Request("")
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	printVerbose("Creating %s %s\n", hiddenLabel(createVisible), kindLabel(createKey))
	if _, err := s.run(ctx, req); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(operationResult(req))
	}

	printInfo("\nCreated %s %s:\n", hiddenLabel(req.Visible), kindLabel(req.Container))
	printInfo("  Path: %s\n", path)
	if !req.Container {
		printInfo("  Type: %s\n", req.Type)
		printInfo("  Size: %d bytes\n", len(req.Data))
	}
	printInfo("\n✓ Done\n")
	return nil
}

func kindLabel(container bool) string {
	if container {
		return "key"
	}
	return "value"
}

// operationResult is the JSON summary of a create or delete.
func operationResult(req invis.Request) map[string]interface{} {
	result := map[string]interface{}{
		"op":      req.Op.String(),
		"path":    req.Path,
		"key":     req.Container,
		"hidden":  !req.Visible,
		"success": true,
	}
	if req.Op == invis.OpCreateOrSet && !req.Container {
		result["type"] = req.Type.String()
		result["size"] = len(req.Data)
	}
	return result
}
