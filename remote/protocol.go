// protocol.go
//
// Request and response messages for the execution bridge. Both the server
// handlers and the HTTP client marshal these, so the two sides cannot drift.
package remote

import (
	"errors"
	"fmt"

	"github.com/forthic-lang/forthic"
)

// Runtime is the identity this implementation reports in ErrorInfo.
const Runtime = "go"

// ExecuteWordRequest asks a peer to run one word against a seed stack.
type ExecuteWordRequest struct {
	Word  string      `json:"word"`
	Stack []WireValue `json:"stack"`
}

// ExecuteSequenceRequest asks a peer to run words in order, fail-fast.
type ExecuteSequenceRequest struct {
	Words []string    `json:"words"`
	Stack []WireValue `json:"stack"`
}

// ExecuteResponse carries the resulting stack, or an error. Exactly one of
// the two is set.
type ExecuteResponse struct {
	Stack []WireValue `json:"stack,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
}

// ModuleSummary describes one module a peer offers.
type ModuleSummary struct {
	Name            string `json:"name"`
	WordCount       int    `json:"word_count"`
	RuntimeSpecific bool   `json:"runtime_specific"`
	Description     string `json:"description,omitempty"`
}

// ListModulesResponse lists a peer's registered modules.
type ListModulesResponse struct {
	Modules []ModuleSummary `json:"modules"`
}

// WordInfo describes one exported word of a module.
type WordInfo struct {
	Name        string `json:"name"`
	StackEffect string `json:"stack_effect,omitempty"`
	Description string `json:"description,omitempty"`
}

// ModuleInfoResponse describes one module and its exported words.
type ModuleInfoResponse struct {
	Module ModuleSummary `json:"module"`
	Words  []WordInfo    `json:"words"`
}

// ErrorInfo is the structured error a peer returns instead of a stack.
// StackTrace lists the chain of failing words, outermost first.
type ErrorInfo struct {
	Message      string            `json:"message"`
	Runtime      string            `json:"runtime"`
	ErrorType    string            `json:"error_type"`
	StackTrace   []string          `json:"stack_trace,omitempty"`
	WordLocation string            `json:"word_location,omitempty"`
	ModuleName   string            `json:"module_name,omitempty"`
	Context      map[string]string `json:"context,omitempty"`
}

// NewErrorInfo builds an ErrorInfo from an engine error. Context names what
// the peer was asked to do, e.g. the word being executed.
func NewErrorInfo(err error, context map[string]string) *ErrorInfo {
	info := &ErrorInfo{
		Message:    err.Error(),
		Runtime:    Runtime,
		ErrorType:  forthic.ErrorTypeName(err),
		StackTrace: errorTrace(err),
		Context:    context,
	}
	if loc, ok := forthic.ErrorLocation(err); ok {
		info.WordLocation = fmt.Sprintf("%s:%d:%d", loc.Source, loc.Line, loc.Col)
	}
	var wex *forthic.WordExecutionError
	if errors.As(err, &wex) {
		info.ModuleName = wex.ModuleName
	}
	return info
}

// errorTrace unwinds nested word execution failures into one frame per
// failing word.
func errorTrace(err error) []string {
	var trace []string
	for err != nil {
		var wex *forthic.WordExecutionError
		if !errors.As(err, &wex) {
			trace = append(trace, err.Error())
			break
		}
		trace = append(trace, fmt.Sprintf("%s (%s:%d:%d)", wex.WordName, wex.Loc.Source, wex.Loc.Line, wex.Loc.Col))
		err = wex.Err
	}
	return trace
}

// RemoteExecutionError is what a client surfaces when a peer reports
// failure. It keeps the peer's structured report intact.
type RemoteExecutionError struct {
	Info ErrorInfo
}

func (e *RemoteExecutionError) Error() string {
	return fmt.Sprintf("remote %s runtime: %s: %s", e.Info.Runtime, e.Info.ErrorType, e.Info.Message)
}

// ModuleLoadError reports a module that could not be constructed from
// configuration.
type ModuleLoadError struct {
	Name    string
	Factory string
	Err     error
}

func (e *ModuleLoadError) Error() string {
	return fmt.Sprintf("loading module %s (factory %s): %v", e.Name, e.Factory, e.Err)
}

func (e *ModuleLoadError) Unwrap() error { return e.Err }
