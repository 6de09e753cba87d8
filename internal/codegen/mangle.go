package codegen

import (
	"strings"

	"github.com/capfund/oxylang/internal/ast"
)

// unmangledNames never get a type suffix no matter how many overloads
// share the name: main is the program entry point nasm/gcc expect to
// find unmodified, puts is the libc symbol linked in by gcc, and the
// three runtime helpers are emitted once, by name, regardless of who
// calls them.
var unmangledNames = map[string]bool{
	"main":                 true,
	"puts":                 true,
	"display_number":       true,
	"display_number_nonl":  true,
	"print_char":           true,
}

// mangledLabel returns the assembly label for a function declaration.
// Every name outside the unmangled allowlist gets a NAME__T1_T2 suffix
// built from its declared parameter types, regardless of whether the
// name is overloaded -- matching original_source/src/compiler/
// x86_64_linux.py's mangle(), which is unconditional once base isn't
// one of the allowlisted names.
func (g *Generator) mangledLabel(name string, paramTypes []string) string {
	if unmangledNames[name] {
		return name
	}
	return name + "__" + strings.Join(paramTypes, "_")
}

// mangledCallTarget resolves the label a CALL node should jump to,
// approximating each argument expression's type from its AST shape
// since the generator does no separate type-checking pass.
func (g *Generator) mangledCallTarget(name string, args []*ast.Node) string {
	if unmangledNames[name] {
		return name
	}

	shapes := make([]string, len(args))
	for i, arg := range args {
		shapes[i] = g.argShape(arg)
	}
	return name + "__" + strings.Join(shapes, "_")
}

// argShape approximates the static type of a call argument expression
// well enough to pick the right overload: a string literal always
// decays to a char pointer, a char literal to CHAR, an identifier to
// its recorded local type (or INT if unknown, e.g. a global), a
// floating literal to FLOAT, and anything else to INT.
func (g *Generator) argShape(node *ast.Node) string {
	switch node.Kind {
	case ast.STRING:
		return "CHAR_PTR"
	case ast.CHAR_LIT:
		return "CHAR"
	case ast.IDENTIFIER:
		if local, ok := g.locals[node.StringValue()]; ok {
			return local.typ
		}
		return "INT"
	case ast.NUMBER:
		if nv, ok := node.Value.(*ast.NumberValue); ok && nv.IsFloat {
			return "FLOAT"
		}
		return "INT"
	default:
		return "INT"
	}
}
