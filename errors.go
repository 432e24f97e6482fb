// errors.go
//
// Typed errors for the Forthic engine, plus a caret-snippet renderer that
// turns located errors into readable diagnostics:
//
//	UNKNOWN WORD at 2:8 in <input>: SWAPP
//
//	   1 | : DOUBLE   DUP + ;
//	   2 | [ 1 2 ] SWAPP
//	     |         ^
//
// Every error that can carry a source location does, 1-based. The renderer
// clamps out-of-range coordinates so it never panics on short sources.
// ErrorTypeName maps any engine error to its stable taxonomy name, which is
// what crosses the remote bridge in ErrorInfo.error_type.
package forthic

import (
	"errors"
	"fmt"
	"strings"
)

// TokenizeError reports a malformed token.
type TokenizeError struct {
	Source string
	Line   int
	Col    int
	Msg    string
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("tokenize error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// UnknownWordError reports a word that resolved in no module and matched no
// literal handler.
type UnknownWordError struct {
	Name string
	Loc  CodeLocation
}

func (e *UnknownWordError) Error() string {
	return fmt.Sprintf("unknown word %q at %d:%d", e.Name, e.Loc.Line, e.Loc.Col)
}

// StackUnderflowError reports a pop from an empty operand stack.
type StackUnderflowError struct {
	Word string // word being executed, if known
}

func (e *StackUnderflowError) Error() string {
	if e.Word != "" {
		return fmt.Sprintf("stack underflow in %s", e.Word)
	}
	return "stack underflow"
}

// MissingSemicolonError reports end of source inside a definition.
type MissingSemicolonError struct {
	DefName string
	Loc     CodeLocation
}

func (e *MissingSemicolonError) Error() string {
	return fmt.Sprintf("missing ';' for definition %q started at %d:%d", e.DefName, e.Loc.Line, e.Loc.Col)
}

// ExtraSemicolonError reports a ";" outside any definition.
type ExtraSemicolonError struct {
	Loc CodeLocation
}

func (e *ExtraSemicolonError) Error() string {
	return fmt.Sprintf("';' at %d:%d without a matching ':'", e.Loc.Line, e.Loc.Col)
}

// NestedDefinitionError reports a ":" inside a definition.
type NestedDefinitionError struct {
	DefName string
	Loc     CodeLocation
}

func (e *NestedDefinitionError) Error() string {
	return fmt.Sprintf("definition %q at %d:%d begins inside another definition", e.DefName, e.Loc.Line, e.Loc.Col)
}

// ModuleImportError reports USE-MODULES naming an unregistered module.
type ModuleImportError struct {
	Name string
}

func (e *ModuleImportError) Error() string {
	return fmt.Sprintf("no registered module named %q", e.Name)
}

// OptionsError reports a malformed options construction (~> on an
// odd-length array, non-string key, ...).
type OptionsError struct {
	Msg string
}

func (e *OptionsError) Error() string { return "invalid options: " + e.Msg }

// WordTypeError reports a native word receiving an argument of the wrong
// variant.
type WordTypeError struct {
	Word string
	Want string
	Got  ValueTag
}

func (e *WordTypeError) Error() string {
	return fmt.Sprintf("%s expects %s, got %s", e.Word, e.Want, TagName(e.Got))
}

// WordExecutionError wraps a failure inside a word with the location of the
// call site and the module it resolved in.
type WordExecutionError struct {
	WordName   string
	ModuleName string
	Loc        CodeLocation
	Err        error
}

func (e *WordExecutionError) Error() string {
	return fmt.Sprintf("error in word %s at %d:%d: %v", e.WordName, e.Loc.Line, e.Loc.Col, e.Err)
}

func (e *WordExecutionError) Unwrap() error { return e.Err }

// ErrorTypeName returns the stable taxonomy name for an engine error. It is
// the value carried by the bridge's ErrorInfo.error_type field.
func ErrorTypeName(err error) string {
	var (
		tokErr   *TokenizeError
		unkErr   *UnknownWordError
		underErr *StackUnderflowError
		missErr  *MissingSemicolonError
		extraErr *ExtraSemicolonError
		nestErr  *NestedDefinitionError
		impErr   *ModuleImportError
		optErr   *OptionsError
		typErr   *WordTypeError
		wexErr   *WordExecutionError
	)
	switch {
	case errors.As(err, &tokErr):
		return "TokenizeError"
	case errors.As(err, &unkErr):
		return "UnknownWordError"
	case errors.As(err, &underErr):
		return "StackUnderflowError"
	case errors.As(err, &missErr):
		return "MissingSemicolonError"
	case errors.As(err, &extraErr):
		return "ExtraSemicolonError"
	case errors.As(err, &nestErr):
		return "NestedDefinitionError"
	case errors.As(err, &impErr):
		return "ModuleImportError"
	case errors.As(err, &optErr):
		return "OptionsError"
	case errors.As(err, &typErr):
		return "WordTypeError"
	case errors.As(err, &wexErr):
		return "WordExecutionError"
	default:
		return "RuntimeError"
	}
}

// ErrorLocation extracts the source location attached to an engine error,
// if any.
func ErrorLocation(err error) (CodeLocation, bool) {
	var (
		tokErr   *TokenizeError
		unkErr   *UnknownWordError
		missErr  *MissingSemicolonError
		extraErr *ExtraSemicolonError
		nestErr  *NestedDefinitionError
		wexErr   *WordExecutionError
	)
	switch {
	case errors.As(err, &wexErr):
		return wexErr.Loc, true
	case errors.As(err, &unkErr):
		return unkErr.Loc, true
	case errors.As(err, &tokErr):
		return CodeLocation{Source: tokErr.Source, Line: tokErr.Line, Col: tokErr.Col}, true
	case errors.As(err, &missErr):
		return missErr.Loc, true
	case errors.As(err, &extraErr):
		return extraErr.Loc, true
	case errors.As(err, &nestErr):
		return nestErr.Loc, true
	default:
		return CodeLocation{}, false
	}
}

/* ===========================
   Caret-snippet rendering
   =========================== */

// RenderError returns err's message augmented with a caret-annotated
// snippet of src when err carries a source location. Errors without a
// location render as err.Error().
func RenderError(err error, src string) string {
	return RenderErrorWithName(err, "", src)
}

// RenderErrorWithName is RenderError with a source label ("in <name>") in
// the header.
func RenderErrorWithName(err error, name, src string) string {
	loc, ok := ErrorLocation(err)
	if !ok {
		return err.Error()
	}
	header := strings.ToUpper(spacedTypeName(ErrorTypeName(err)))
	where := fmt.Sprintf("%d:%d", loc.Line, loc.Col)
	if name != "" {
		where += " in " + name
	} else if loc.Source != "" {
		where += " in " + loc.Source
	}
	return fmt.Sprintf("%s at %s: %v\n\n%s", header, where, rootMessage(err), snippet(src, loc.Line, loc.Col))
}

// spacedTypeName turns "UnknownWordError" into "Unknown Word Error".
func spacedTypeName(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// rootMessage unwraps a WordExecutionError chain down to the underlying
// cause so the header does not repeat the location.
func rootMessage(err error) string {
	for {
		var wex *WordExecutionError
		if errors.As(err, &wex) && wex.Err != nil {
			err = wex.Err
			continue
		}
		return err.Error()
	}
}

// snippet renders up to one line of context before and after the error
// line, with a caret under the 1-based column.
func snippet(src string, line, col int) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		return ""
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}
	width := numWidth(minInt(line+1, len(lines)))

	var sb strings.Builder
	writeLine := func(n int) {
		sb.WriteString(fmt.Sprintf("  %*d | %s\n", width, n, lines[n-1]))
	}
	if line > 1 {
		writeLine(line - 1)
	}
	writeLine(line)
	errLine := lines[line-1]
	if col > len(errLine)+1 {
		col = len(errLine) + 1
	}
	sb.WriteString(fmt.Sprintf("  %*s | %s^\n", width, "", strings.Repeat(" ", col-1)))
	if line < len(lines) {
		writeLine(line + 1)
	}
	return sb.String()
}

func numWidth(n int) int {
	w := 1
	for n >= 10 {
		n /= 10
		w++
	}
	return w
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
