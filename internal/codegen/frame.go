package codegen

import "github.com/capfund/oxylang/internal/ast"

// localVar records where a function-local variable lives relative to
// rbp, how big it is, and its declared type (the latter feeds both
// sizeof for nested declarations and argShape for mangling).
type localVar struct {
	offset int
	size   int
	typ    string
}

// sizeof returns the storage size in bytes of typeName per the
// generator's simplified model: a pointer of any element type is
// always a full machine word, CHAR is a single byte, FLOAT is an
// 8-byte double, and every other scalar (INT/INT16/INT32/INT64/VOID) is
// also treated as a machine word -- the generator does not distinguish
// integer widths, matching spec.
func sizeof(typeName string) int {
	switch {
	case len(typeName) > 4 && typeName[len(typeName)-4:] == "_PTR":
		return 8
	case typeName == "CHAR":
		return 1
	case typeName == "FLOAT":
		return 8
	default:
		return 8
	}
}

// arraySize returns the element count of a TYPE node's ARRAY_SIZE
// child, or 1 if the type isn't an array.
func arraySize(typeNode *ast.Node) int64 {
	if typeNode == nil || len(typeNode.Children) == 0 {
		return 1
	}
	return typeNode.Child(0).IntValue()
}

// collectLocals walks a function body recursively, allocating a stack
// slot for every VAR_DECL it finds (including ones nested inside IF,
// WHILE, FOR and UNSAFE_BLOCK bodies -- Oxylang has no lexical
// scoping-driven slot reuse, every VAR_DECL that executes gets its own
// permanent slot for the life of the call). Parameters are allocated
// first, in declaration order, before any body-declared local.
func (g *Generator) collectLocals(params []*ast.Node, body []*ast.Node) {
	g.locals = make(map[string]localVar)
	g.frameSize = 0

	for _, p := range params {
		typeNode := p.Child(0)
		g.allocLocal(p.StringValue(), typeNode.StringValue(), arraySize(typeNode))
	}

	g.walkForLocals(body)
}

func (g *Generator) walkForLocals(nodes []*ast.Node) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		switch n.Kind {
		case ast.VAR_DECL:
			typeNode := n.Child(0)
			g.allocLocal(n.StringValue(), typeNode.StringValue(), arraySize(typeNode))

		case ast.IF:
			g.walkForLocals(n.Child(1).Children) // THEN
			if els := n.Child(2); els != nil {
				g.walkForLocals(els.Children)
			}

		case ast.WHILE:
			g.walkForLocals(n.Child(1).Children) // BODY

		case ast.FOR:
			g.walkForLocals(n.Child(3).Children) // BODY

		case ast.UNSAFE_BLOCK, ast.BODY, ast.THEN, ast.ELSE:
			g.walkForLocals(n.Children)
		}
	}
}

// allocLocal reserves a new stack slot for name below the current
// frame, growing the frame and recording the slot's negative rbp
// offset, size and type.
func (g *Generator) allocLocal(name, typ string, count int64) {
	size := sizeof(typ) * int(count)
	g.frameSize += size
	g.locals[name] = localVar{offset: -g.frameSize, size: size, typ: typ}
}

// alignedFrameSize rounds the frame up to a 16-byte multiple so every
// call made from inside the function leaves rsp 16-byte aligned per
// the SysV ABI.
func (g *Generator) alignedFrameSize() int {
	if g.frameSize == 0 {
		return 0
	}
	return (g.frameSize + 15) &^ 15
}
