package typical

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType     = "invalid_type"
	CodeRequired        = "required"
	CodeUnknownField    = "unknown_field"
	CodeIllegalLiteral  = "illegal_literal"
	CodeUnresolvedRef   = "unresolved_ref"
	CodeFieldCollision  = "field_collision"
	CodeNotTranslatable = "not_translatable"
	CodeNotIterable     = "not_iterable"
	CodeInvalidEnum     = "invalid_enum"
	CodeTooSmall        = "too_small"
	CodeTooBig          = "too_big"
	CodeTooShort        = "too_short"
	CodeTooLong         = "too_long"
	CodePattern         = "pattern"
	CodeParseError      = "parse_error"
)

// Issue represents a single resolution or validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, offending tokens, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"expected":"string",
	// "got":"int"}) for i18n and observability.
	Params map[string]any
}

// Issues is a collection of errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func singleIssue(code, msg string) Issues {
	return Issues{Issue{Path: "/", Code: code, Message: msg}}
}

// rebase prefixes child issue paths with /field so nested failures report
// their full location.
func rebase(field string, err error) Issues {
	base := "/" + field
	child, ok := AsIssues(err)
	if !ok {
		return Issues{Issue{Path: base, Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	out := make(Issues, 0, len(child))
	for _, it := range child {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}
