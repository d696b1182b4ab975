package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/invisreg/cmd/invisreg/logger"
	"github.com/joshuapare/invisreg/internal/trickname"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	simulate bool
	logDir   string
	codepage string
)

var rootCmd = &cobra.Command{
	Use:   "invisreg",
	Short: "Create, delete and query hidden registry keys and values",
	Long: `invisreg manages registry keys and values whose names start with a NUL
code unit. The native NT registry API stores such names verbatim, while
regedit, reg.exe and the Win32 Reg* functions stop reading at the NUL and
cannot see or remove the entry.

Paths name a hive followed by the key path, for example HKCU:\SOFTWARE\X\Y.
The last segment is the value or key being operated on.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(logger.Options{Verbose: verbose && !quiet, LogDir: logDir})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		BoolVar(&simulate, "simulate", false, "Run against an in-memory registry instead of the live one")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write daily JSON log files to this directory")
	rootCmd.PersistentFlags().
		StringVar(&codepage, "codepage", "", "Codepage of path and value arguments ("+strings.Join(trickname.Codepages(), ", ")+")")
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// decodeArg converts a path or value argument from --codepage to UTF-8.
func decodeArg(s string) (string, error) {
	return trickname.FromCodepage([]byte(s), codepage)
}

// hiddenLabel describes the name form a request used.
func hiddenLabel(visible bool) string {
	if visible {
		return "visible"
	}
	return "hidden"
}
