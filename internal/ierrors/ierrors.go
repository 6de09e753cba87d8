// Package ierrors provides the small, line-aware error types shared by
// every stage of the compiler pipeline.
//
// Each stage (lexer, parser, preprocessor, semantic analyzer, code
// generator) has its own error kind so a caller can tell which phase
// aborted compilation without parsing message text. All of them embed a
// line number where one is known; the generator frequently doesn't have
// one (it operates on an already-parsed tree) and leaves it zero.
package ierrors

import "fmt"

// Stage identifies which pipeline phase raised an error.
type Stage string

const (
	StageLex      Stage = "lex"
	StageParse    Stage = "parse"
	StagePreproc  Stage = "preprocess"
	StageSemantic Stage = "semantic"
	StageCodegen  Stage = "codegen"
)

// Error is a single stage-tagged, optionally line-tagged compiler error.
type Error struct {
	Stage   Stage
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d)", e.Stage, e.Message, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// New creates a stage error with no position information.
func New(stage Stage, format string, args ...any) *Error {
	return &Error{Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// NewAt creates a stage error at a specific source line.
func NewAt(stage Stage, line int, format string, args ...any) *Error {
	return &Error{Stage: stage, Line: line, Message: fmt.Sprintf(format, args...)}
}
