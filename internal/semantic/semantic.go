// Package semantic performs the single pass of whole-program checking
// Oxylang does before codegen: every top-level declaration must be one
// the language recognizes, and main must exist with the right shape.
//
// Grounded on original_source/src/semantic.py's SemanticAnalyzer --
// _collect_globals and _check_main map directly onto collectGlobals and
// checkMain below.
package semantic

import (
	"github.com/capfund/oxylang/internal/ast"
	"github.com/capfund/oxylang/internal/ierrors"
)

// mainReturnTypes are the return types a "main" function is allowed to
// declare; the generator's exit-code convention only makes sense for
// these.
var mainReturnTypes = map[string]bool{
	"INT":   true,
	"INT32": true,
}

// Analyze walks the top level of program, rejecting declarations that
// aren't FUNCTION, VAR_DECL, INCLUDE or EXTERN, then verifies main.
func Analyze(program *ast.Node) error {
	functions, err := collectGlobals(program)
	if err != nil {
		return err
	}
	return checkMain(functions)
}

func collectGlobals(program *ast.Node) (map[string]*ast.Node, error) {
	functions := make(map[string]*ast.Node)
	for _, child := range program.Children {
		switch child.Kind {
		case ast.FUNCTION:
			functions[child.StringValue()] = child
		case ast.VAR_DECL, ast.INCLUDE, ast.EXTERN:
			// fine at top level; nothing further to check here
		default:
			return nil, ierrors.New(ierrors.StageSemantic, "illegal top-level declaration: %s", child.Kind)
		}
	}
	return functions, nil
}

func checkMain(functions map[string]*ast.Node) error {
	main, ok := functions["main"]
	if !ok {
		return ierrors.New(ierrors.StageSemantic, "missing main function")
	}

	params := main.Child(1)
	if params != nil && len(params.Children) > 0 {
		return ierrors.New(ierrors.StageSemantic, "main must not take parameters")
	}

	retType := main.Child(0)
	if retType == nil || !mainReturnTypes[retType.StringValue()] {
		return ierrors.New(ierrors.StageSemantic, "main must return int or int32")
	}

	return nil
}
