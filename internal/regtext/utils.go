package regtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/invisreg/pkg/types"
)

// unescapeRegString unescapes a string from .reg format.
// .reg files escape backslashes as \\ and quotes as \"
func unescapeRegString(s string) string {
	if strings.IndexByte(s, '\\') == -1 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '"') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// findClosingQuote finds the position of the closing quote in a line,
// accounting for escaped quotes (preceded by an odd number of backslashes).
// Returns -1 if no valid closing quote is found.
// The search starts at position 1 (assuming the opening quote is at position 0).
func findClosingQuote(line string) int {
	for i := 1; i < len(line); i++ {
		if line[i] != '"' {
			continue
		}
		numBackslashes := 0
		for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
			numBackslashes++
		}
		if numBackslashes%2 == 1 {
			continue
		}
		return i
	}
	return -1
}

// parseHexBytes parses comma-separated hex data following the first colon
// (hex:01,02 or hex(b):01,...). Whitespace and continuation backslashes are
// skipped; single-digit bytes are zero padded.
func parseHexBytes(data string) ([]byte, error) {
	colonPos := strings.IndexByte(data, ':')
	if colonPos == -1 {
		return nil, fmt.Errorf("invalid hex data format: missing colon")
	}
	data = data[colonPos+1:]

	result := make([]byte, 0, len(data)/3+1)
	i := 0
	for i < len(data) {
		for i < len(data) && isHexSkipChar(data[i]) {
			i++
		}
		if i >= len(data) {
			break
		}

		hiVal := hexCharToNibble(data[i])
		if hiVal == 0xFF {
			return nil, fmt.Errorf("invalid hex digit %q at position %d", data[i], i)
		}
		i++

		// Single hex digit - pad with leading zero
		loVal := hiVal
		hiVal = 0
		if i < len(data) && !isHexSkipChar(data[i]) {
			lo := hexCharToNibble(data[i])
			if lo == 0xFF {
				return nil, fmt.Errorf("invalid hex digit %q at position %d", data[i], i)
			}
			hiVal, loVal = loVal, lo
			i++
		}
		result = append(result, (hiVal<<4)|loVal)
	}
	return result, nil
}

// parseHexValueType extracts the type number of a hex(N): prefix. N is hex,
// so "hex(b):" is REG_QWORD.
func parseHexValueType(data string) (types.RegType, bool) {
	closeParen := strings.IndexByte(data, ')')
	if !strings.HasPrefix(data, HexTypedPrefix) || closeParen < len(HexTypedPrefix) {
		return 0, false
	}
	n, err := strconv.ParseUint(data[len(HexTypedPrefix):closeParen], 16, 32)
	if err != nil {
		return 0, false
	}
	return types.RegType(n), true
}

// hexCharToNibble converts a hex character to its 4-bit value
// Returns 0xFF for invalid characters.
func hexCharToNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0xFF
	}
}

// isHexSkipChar returns true for characters to skip during hex parsing.
func isHexSkipChar(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',' || c == '\\'
}
