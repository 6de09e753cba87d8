// Package codegen lowers a preprocessed, semantically checked Oxylang
// AST into NASM-syntax x86_64 Linux/SysV assembly text.
//
// Grounded on original_source/src/compiler/x86_64_linux.py for the
// lowering rules themselves, and on skx-math-compiler/compiler's
// header/body/footer string-assembly shape and its one-gen-func-per-
// node-kind style for how the Go code is organized.
package codegen

import (
	"fmt"
	"strings"

	"github.com/capfund/oxylang/internal/ast"
	"github.com/capfund/oxylang/internal/ierrors"
	"github.com/capfund/oxylang/internal/stack"
)

// loopLabels is what the generator pushes on entry to a loop so BREAK
// and CONTINUE know where to jump without threading the target labels
// through every statement-lowering call.
type loopLabels struct {
	continueLabel string
	breakLabel    string
}

// Generator holds all per-compilation state: the ordered lines emitted
// so far, the label/string-literal bookkeeping that must stay globally
// unique and deduplicated across the whole program, and the per-
// function frame state that gets reset at the start of each function.
type Generator struct {
	lines []string

	labelCounter int

	stringLabels map[string]string
	stringOrder  []string

	floatLabels map[string]string
	floatOrder  []float64

	globals     map[string]string // name -> type, for top-level VAR_DECLs
	globalOrder []string
	globalInit  map[string]string // name -> constant initializer literal, if any

	locals    map[string]localVar
	frameSize int

	loopStack *stack.Stack[loopLabels]
}

// New creates an empty Generator.
func New() *Generator {
	return &Generator{
		stringLabels: make(map[string]string),
		floatLabels:  make(map[string]string),
		globals:      make(map[string]string),
		globalInit:   make(map[string]string),
		loopStack:    stack.New[loopLabels](),
	}
}

// Generate lowers program to assembly text, or returns the first
// CodegenError it hits.
func Generate(program *ast.Node) (string, error) {
	g := New()
	return g.generate(program)
}

func (g *Generator) generate(program *ast.Node) (string, error) {
	var externs []string
	seenExtern := make(map[string]bool)
	var body strings.Builder

	for _, decl := range program.Children {
		switch decl.Kind {
		case ast.EXTERN:
			name := decl.StringValue()
			if !seenExtern[name] {
				seenExtern[name] = true
				externs = append(externs, name)
			}

		case ast.VAR_DECL:
			typeNode := decl.Child(0)
			name := decl.StringValue()
			typ := typeNode.StringValue()
			if _, exists := g.globals[name]; !exists {
				g.globalOrder = append(g.globalOrder, name)
			}
			g.globals[name] = typ
			if init := decl.Child(1); init != nil {
				val, err := constantInitializerValue(init)
				if err != nil {
					return "", err
				}
				g.globalInit[name] = val
			}

		case ast.FUNCTION:
			fnAsm, err := g.genFunction(decl)
			if err != nil {
				return "", err
			}
			body.WriteString(fnAsm)
		}
	}

	var out strings.Builder
	out.WriteString("global main\n")
	for _, name := range externs {
		if name != "puts" { // puts is declared once, unconditionally, below
			out.WriteString(fmt.Sprintf("extern %s\n", name))
		}
	}
	out.WriteString("extern puts\n")
	out.WriteString("extern exit\n\n")

	out.WriteString("section .text\n\n")
	out.WriteString(runtimeHelpers)
	out.WriteString(body.String())

	out.WriteString("\nsection .rodata\n")
	out.WriteString("align 8\n")
	for _, f := range g.floatOrder {
		out.WriteString(fmt.Sprintf("%s: dq %g\n", g.floatLabels[floatKey(f)], f))
	}
	for _, lit := range g.stringOrder {
		out.WriteString(fmt.Sprintf("%s: db %s, 0\n", g.stringLabels[lit], nasmStringBytes(lit)))
	}

	out.WriteString("\nsection .data\n")
	out.WriteString("numbuf: times 24 db 0\n")
	for _, name := range g.globalOrder {
		typ := g.globals[name]
		init, hasInit := g.globalInit[name]
		switch {
		case !hasInit:
			out.WriteString(fmt.Sprintf("%s: times %d db 0\n", name, sizeof(typ)))
		case sizeof(typ) == 1:
			out.WriteString(fmt.Sprintf("%s: db %s\n", name, init))
		default:
			out.WriteString(fmt.Sprintf("%s: dq %s\n", name, init))
		}
	}

	return peephole(out.String()), nil
}

// constantInitializerValue extracts the literal value of a global's
// initializer as NASM directive text. A global's initial value has to
// be known at assembly time -- unlike a local's, which is stored by
// instructions run at function entry -- so only a (possibly negated)
// literal is a legal initializer here, matching
// original_source/src/compiler/x86_64_linux.py's gen_global, which reads
// the initializer straight off the AST node's value rather than
// evaluating an expression.
func constantInitializerValue(node *ast.Node) (string, error) {
	neg := false
	for node.Kind == ast.UNARY_MINUS {
		neg = !neg
		node = node.Child(0)
	}

	switch node.Kind {
	case ast.NUMBER:
		nv, ok := node.Value.(*ast.NumberValue)
		if ok && nv.IsFloat {
			v := nv.Float
			if neg {
				v = -v
			}
			return fmt.Sprintf("%g", v), nil
		}
		v := node.IntValue()
		if neg {
			v = -v
		}
		return fmt.Sprintf("%d", v), nil

	case ast.CHAR_LIT:
		v := node.IntValue()
		if neg {
			v = -v
		}
		return fmt.Sprintf("%d", v), nil
	}

	return "", unexpected(ierrors.StageCodegen, "global initializer must be a constant expression")
}

func (g *Generator) emit(format string, args ...any) {
	g.lines = append(g.lines, fmt.Sprintf(format, args...))
}

func (g *Generator) emitLabel(label string) {
	g.lines = append(g.lines, label+":")
}

func (g *Generator) newLabel(prefix string) string {
	g.labelCounter++
	return fmt.Sprintf(".L%s%d", prefix, g.labelCounter)
}

// internLiteral returns the rodata label for a string literal,
// allocating and remembering a new one the first time the literal is
// seen so each distinct string is emitted exactly once.
func (g *Generator) internLiteral(value string) string {
	if label, ok := g.stringLabels[value]; ok {
		return label
	}
	label := fmt.Sprintf("str%d", len(g.stringOrder))
	g.stringLabels[value] = label
	g.stringOrder = append(g.stringOrder, value)
	return label
}

// internFloatConstant returns the rodata label for a floating literal,
// deduplicating by exact value the same way internLiteral dedupes
// strings.
func (g *Generator) internFloatConstant(v float64) string {
	key := floatKey(v)
	if label, ok := g.floatLabels[key]; ok {
		return label
	}
	label := fmt.Sprintf("flt%d", len(g.floatOrder))
	g.floatLabels[key] = label
	g.floatOrder = append(g.floatOrder, v)
	return label
}

func floatKey(v float64) string {
	return fmt.Sprintf("%x", v)
}

func nasmStringBytes(s string) string {
	var parts []string
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			parts = append(parts, fmt.Sprintf("%q", run.String()))
			run.Reset()
		}
	}
	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			flush()
			parts = append(parts, fmt.Sprintf("%d", r))
			continue
		}
		run.WriteRune(r)
	}
	flush()
	if len(parts) == 0 {
		return `""`
	}
	return strings.Join(parts, ", ")
}

func unexpected(stage ierrors.Stage, format string, args ...any) error {
	return ierrors.New(stage, format, args...)
}
