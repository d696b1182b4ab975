package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/joshuapare/invisreg/pkg/ntreg"
	"github.com/joshuapare/invisreg/pkg/printer"
	"github.com/joshuapare/invisreg/pkg/types"
)

// useMemory points every command at a shared in-memory registry holding
// HKCU\SOFTWARE\X and resets all flags.
func useMemory(t *testing.T) *ntreg.Memory {
	t.Helper()
	resetFlags()

	mem := ntreg.NewMemory()
	mem.MkdirAll(types.HiveCurrentUser, `SOFTWARE\X`)

	orig := newProvider
	newProvider = func() (ntreg.Provider, error) { return mem, nil }
	t.Cleanup(func() {
		newProvider = orig
		resetFlags()
	})
	return mem
}

// resetFlags restores every flag variable to its default.
func resetFlags() {
	verbose, quiet, jsonOut, simulate = false, false, false, false
	logDir, codepage = "", ""

	createKey, createVisible = false, false
	createType.reset()
	createValue.reset()
	createHex.reset()
	createFile.reset()

	deleteKey, deleteVisible = false, false

	queryVisible = false
	queryFormat = string(printer.FormatText)
	queryMaxBytes = printer.DefaultMaxValueBytes

	statVisible = false
	applyKeepGoing = false
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Drain concurrently so large outputs cannot block the writer
	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout
	<-done

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}
