package regtext

const (
	// RegFileHeader is the required header line for .reg files version 5.00
	RegFileHeader = "Windows Registry Editor Version 5.00"

	// HiddenComment marks the next key or value line as hidden: its stored
	// name carries a leading NUL code unit that .reg syntax cannot express.
	HiddenComment = "; hidden: stored name is prefixed with a NUL code unit"

	// hiddenMarker is the prefix of HiddenComment that the parser matches.
	hiddenMarker = "; hidden:"

	// KeyOpenBracket marks the start of a registry key path
	KeyOpenBracket = "["

	// KeyCloseBracket marks the end of a registry key path
	KeyCloseBracket = "]"

	// DeleteKeyPrefix marks a key for deletion (e.g., [-HKEY_LOCAL_MACHINE\...])
	DeleteKeyPrefix = "-"

	// DeleteValueData marks a value for deletion ("Name"=-)
	DeleteValueData = "-"

	// DefaultValuePrefix marks the default (unnamed) value
	DefaultValuePrefix = "@="

	// CommentPrefix marks a comment line
	CommentPrefix = ";"

	// Quote is the double-quote character for value names and string data
	Quote = "\""

	// Backslash is used for escaping, path separators and line continuation
	Backslash = "\\"

	// EscapedQuote is the escaped double-quote sequence
	EscapedQuote = "\\\""

	// EscapedBackslash is the escaped backslash sequence
	EscapedBackslash = "\\\\"

	// DWORDPrefix identifies a DWORD value in .reg format
	DWORDPrefix = "dword:"

	// HexPrefix identifies binary data in .reg format
	HexPrefix = "hex:"

	// HexTypedPrefix starts typed hex data such as hex(b): for REG_QWORD
	HexTypedPrefix = "hex("
)

const (
	// ScannerInitialBufferSize is the initial line buffer.
	ScannerInitialBufferSize = 64 * 1024

	// ScannerMaxLineSize bounds a single logical line, continuations included.
	ScannerMaxLineSize = 16 * 1024 * 1024
)
