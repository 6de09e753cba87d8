package codegen

import (
	"github.com/capfund/oxylang/internal/ast"
	"github.com/capfund/oxylang/internal/ierrors"
)

// valueType tracks which register an expression's result landed in:
// every integer/pointer-valued expression accumulates into rax, every
// floating one into xmm0. This is the same single-accumulator
// convention x86_64_linux.py's gen_expr uses; the Go type here just
// makes the convention explicit instead of leaving it implicit in
// comments.
type valueType int

const (
	valueInt valueType = iota
	valueFloat
)

// genExpr lowers an expression node, leaving its result in rax (int)
// or xmm0 (float), and reports which one it used.
func (g *Generator) genExpr(node *ast.Node) (valueType, error) {
	switch node.Kind {
	case ast.NUMBER:
		return g.genNumber(node)

	case ast.STRING:
		label := g.internLiteral(node.StringValue())
		g.emit("        lea rax, [rel %s]", label)
		return valueInt, nil

	case ast.CHAR_LIT:
		g.emit("        mov rax, %d", node.IntValue())
		return valueInt, nil

	case ast.IDENTIFIER:
		return g.genIdentifier(node)

	case ast.UNARY_MINUS:
		return g.genUnaryMinus(node)

	case ast.DEREF:
		return g.genDeref(node)

	case ast.ADDROF:
		return g.genAddrOf(node)

	case ast.ARRAY_INDEX:
		return g.genArrayIndex(node)

	case ast.PRE_INC:
		return g.genIncDec(node, "PLUS", true)
	case ast.PRE_DEC:
		return g.genIncDec(node, "MINUS", true)
	case ast.POST_INC:
		return g.genIncDec(node, "PLUS", false)
	case ast.POST_DEC:
		return g.genIncDec(node, "MINUS", false)

	case ast.BIN_OP:
		return g.genBinOp(node)

	case ast.CALL:
		return g.genCall(node)
	}

	return valueInt, unexpected(ierrors.StageCodegen, "unsupported expression: %s", node.Kind)
}

func (g *Generator) genNumber(node *ast.Node) (valueType, error) {
	nv, ok := node.Value.(*ast.NumberValue)
	if !ok {
		g.emit("        mov rax, %d", node.IntValue())
		return valueInt, nil
	}
	if nv.IsFloat {
		label := g.internFloatConstant(nv.Float)
		g.emit("        movsd xmm0, [rel %s]", label)
		return valueFloat, nil
	}
	g.emit("        mov rax, %d", nv.Int)
	return valueInt, nil
}

func (g *Generator) genIdentifier(node *ast.Node) (valueType, error) {
	name := node.StringValue()
	if local, ok := g.locals[name]; ok {
		if local.typ == "FLOAT" {
			g.emit("        movsd xmm0, [rbp%+d]", local.offset)
			return valueFloat, nil
		}
		if local.size == 1 {
			g.emit("        movzx rax, byte [rbp%+d]", local.offset)
		} else {
			g.emit("        mov rax, [rbp%+d]", local.offset)
		}
		return valueInt, nil
	}
	if typ, ok := g.globals[name]; ok {
		if typ == "FLOAT" {
			g.emit("        movsd xmm0, [rel %s]", name)
			return valueFloat, nil
		}
		if sizeof(typ) == 1 {
			g.emit("        movzx rax, byte [rel %s]", name)
		} else {
			g.emit("        mov rax, [rel %s]", name)
		}
		return valueInt, nil
	}
	return valueInt, unexpected(ierrors.StageCodegen, "undefined variable: %s", name)
}

func (g *Generator) genUnaryMinus(node *ast.Node) (valueType, error) {
	typ, err := g.genExpr(node.Child(0))
	if err != nil {
		return valueInt, err
	}
	if typ == valueFloat {
		g.emit("        pxor xmm1, xmm1")
		g.emit("        subsd xmm1, xmm0")
		g.emit("        movsd xmm0, xmm1")
		return valueFloat, nil
	}
	g.emit("        neg rax")
	return valueInt, nil
}

// lvalueAddress computes the address of an assignable expression into
// rax, reporting the pointed-to element's type so the caller knows
// whether to store through a byte or a qword.
func (g *Generator) lvalueAddress(node *ast.Node) (elemType string, err error) {
	switch node.Kind {
	case ast.IDENTIFIER:
		name := node.StringValue()
		if local, ok := g.locals[name]; ok {
			g.emit("        lea rax, [rbp%+d]", local.offset)
			return local.typ, nil
		}
		if typ, ok := g.globals[name]; ok {
			g.emit("        lea rax, [rel %s]", name)
			return typ, nil
		}
		return "", unexpected(ierrors.StageCodegen, "undefined variable: %s", name)

	case ast.DEREF:
		if _, err := g.genExpr(node.Child(0)); err != nil {
			return "", err
		}
		return "CHAR", nil

	case ast.ARRAY_INDEX:
		return g.arrayElementAddress(node)
	}

	return "", unexpected(ierrors.StageCodegen, "invalid assignment target: %s", node.Kind)
}

func (g *Generator) genDeref(node *ast.Node) (valueType, error) {
	if _, err := g.genExpr(node.Child(0)); err != nil {
		return valueInt, err
	}
	g.emit("        movzx rax, byte [rax]")
	return valueInt, nil
}

func (g *Generator) genAddrOf(node *ast.Node) (valueType, error) {
	if _, err := g.lvalueAddress(node.Child(0)); err != nil {
		return valueInt, err
	}
	return valueInt, nil
}

// arrayElementAddress computes base + index*elemSize into rax for an
// ARRAY_INDEX node, returning the element type.
//
// base is either an array-typed local (lvalueAddress already returns
// the array's own storage address, so the element type is whatever
// type that storage was declared with) or a pointer-typed local/deref
// (lvalueAddress returns the address of the pointer *variable*, so the
// pointer's value has to be loaded before indexing, and the element
// type is the pointer's type with its _PTR suffix stripped).
func (g *Generator) arrayElementAddress(node *ast.Node) (string, error) {
	base := node.Child(0)
	index := node.Child(1)

	elemType, err := g.lvalueAddress(base)
	if err != nil {
		return "", err
	}
	if isPointer(elemType) {
		g.emit("        mov rax, [rax]")
		elemType = trimPtr(elemType)
	}

	g.emit("        push rax")
	if _, err := g.genExpr(index); err != nil {
		return "", err
	}
	g.emit("        mov rcx, rax")
	g.emit("        pop rax")

	size := sizeof(elemType)
	if size != 1 {
		g.emit("        imul rcx, rcx, %d", size)
	}
	g.emit("        add rax, rcx")
	return elemType, nil
}

func (g *Generator) genArrayIndex(node *ast.Node) (valueType, error) {
	elemType, err := g.arrayElementAddress(node)
	if err != nil {
		return valueInt, err
	}
	if elemType == "FLOAT" {
		g.emit("        movsd xmm0, [rax]")
		return valueFloat, nil
	}
	if sizeof(elemType) == 1 {
		g.emit("        movzx rax, byte [rax]")
	} else {
		g.emit("        mov rax, [rax]")
	}
	return valueInt, nil
}

func isPointer(typ string) bool {
	return len(typ) > 4 && typ[len(typ)-4:] == "_PTR"
}

func trimPtr(typ string) string {
	if isPointer(typ) {
		return typ[:len(typ)-4]
	}
	return typ
}

// genIncDec lowers ++/-- in both prefix and postfix form. The address
// of the operand is computed once, the old value is loaded, a new
// value is stored back, and rax/xmm0 is left holding whichever of the
// two (old for postfix, new for prefix) the expression's value should
// be.
func (g *Generator) genIncDec(node *ast.Node, op string, pre bool) (valueType, error) {
	target := node.Child(0)

	elemType, err := g.lvalueAddress(target)
	if err != nil {
		return valueInt, err
	}
	g.emit("        push rax") // save the address

	if elemType == "FLOAT" {
		g.emit("        mov rax, [rsp]")
		g.emit("        movsd xmm0, [rax]") // old value
		g.emit("        movsd xmm1, xmm0")
		g.emit("        mov rax, 1")
		g.emit("        cvtsi2sd xmm2, rax")
		if op == "PLUS" {
			g.emit("        addsd xmm1, xmm2")
		} else {
			g.emit("        subsd xmm1, xmm2")
		}
		g.emit("        mov rax, [rsp]")
		g.emit("        movsd [rax], xmm1") // store new value
		g.emit("        add rsp, 8")
		if pre {
			g.emit("        movsd xmm0, xmm1")
		}
		return valueFloat, nil
	}

	g.emit("        mov rax, [rsp]")
	if sizeof(elemType) == 1 {
		g.emit("        movzx rcx, byte [rax]") // old value
	} else {
		g.emit("        mov rcx, [rax]")
	}
	g.emit("        mov rdx, rcx")
	if op == "PLUS" {
		g.emit("        add rdx, 1")
	} else {
		g.emit("        sub rdx, 1")
	}
	if sizeof(elemType) == 1 {
		g.emit("        mov byte [rax], dl")
	} else {
		g.emit("        mov [rax], rdx")
	}
	if pre {
		g.emit("        mov rax, rdx")
	} else {
		g.emit("        mov rax, rcx")
	}
	g.emit("        add rsp, 8")

	return valueInt, nil
}
