// Error kinds and the fatal-error type shared by every xmk component.

package xmk

import (
	"fmt"
	"runtime"
)

// Kind tags an Error with one of the fatal conditions from the xmk
// error-handling design. Every xmk error is fatal; Kind exists so callers
// can distinguish conditions without string-matching messages.
type Kind int

const (
	KindIO Kind = iota
	KindLex
	KindUndefinedSymbol
	KindScopeViolation
	KindIndexOutOfRange
	KindDuplicateTarget
	KindDuplicateBuild
	KindMissingBuild
	KindEmptyTarget
	KindCommandFailed
	KindPostBuildMissing
	KindUnknownTarget
	KindSyntax
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindLex:
		return "lex"
	case KindUndefinedSymbol:
		return "undefined_symbol"
	case KindScopeViolation:
		return "scope_violation"
	case KindIndexOutOfRange:
		return "index_out_of_range"
	case KindDuplicateTarget:
		return "duplicate_target"
	case KindDuplicateBuild:
		return "duplicate_build"
	case KindMissingBuild:
		return "missing_build"
	case KindEmptyTarget:
		return "empty_target"
	case KindCommandFailed:
		return "command_failed"
	case KindPostBuildMissing:
		return "post_build_missing"
	case KindUnknownTarget:
		return "unknown_target"
	case KindSyntax:
		return "syntax"
	}
	return "unknown"
}

// Error is the single error type raised by xmk's core. Site is captured at
// construction time (by errAt/errLine) and names the function and line that
// raised the error; Logger.Fatal decides whether to print it.
type Error struct {
	Kind Kind
	Msg  string
	Site string // "function:line"
	Line int    // source line, 0 if not applicable
	Code int    // process exit code, meaningful for KindCommandFailed
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Kind, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is lets errors.Is(err, xmk.ErrKind(KindLex)) style comparisons work by
// matching on Kind alone, ignoring message and site.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// errAt constructs an *Error without a line number, with Site captured at
// the caller's frame.
func errAt(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Site: callerSite(2)}
}

// errLine constructs an *Error tagged with a source line, with Site captured
// at the caller's frame.
func errLine(kind Kind, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Line: line, Site: callerSite(2)}
}

// ErrKind returns a sentinel *Error carrying only a Kind, suitable as the
// target of errors.Is. It has no Site: it is never raised from real code.
func ErrKind(k Kind) error {
	return &Error{Kind: k}
}

// callerSite walks up skip frames and renders "function:line" for the
// verbose error-site annotation. Called from errAt/errLine, skip=2 always
// resolves to their caller — the function that actually raised the error —
// regardless of how deep that call is nested inside the lexer, parser,
// model or resolver.
func callerSite(skip int) string {
	pc, _, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	fn := runtime.FuncForPC(pc)
	name := "?"
	if fn != nil {
		name = fn.Name()
	}
	return fmt.Sprintf("%s:%d", name, line)
}
