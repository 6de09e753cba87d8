package codegen

import (
	"github.com/capfund/oxylang/internal/ast"
	"github.com/capfund/oxylang/internal/ierrors"
)

// genFunction lowers one FUNCTION node: prologue, body, epilogue. The
// frame is computed up front by collectLocals so the prologue's "sub
// rsp" is a single known constant rather than something patched in
// after the fact.
func (g *Generator) genFunction(fn *ast.Node) (string, error) {
	retType := fn.Child(0).StringValue()
	paramsNode := fn.Child(1)
	bodyNode := fn.Child(2)

	var paramTypes []string
	for _, p := range paramsNode.Children {
		paramTypes = append(paramTypes, p.Child(0).StringValue())
	}

	g.lines = nil
	g.collectLocals(paramsNode.Children, bodyNode.Children)

	label := g.mangledLabel(fn.StringValue(), paramTypes)
	frame := g.alignedFrameSize()

	g.emitLabel(label)
	g.emit("        push rbp")
	g.emit("        mov rbp, rsp")
	if frame > 0 {
		g.emit("        sub rsp, %d", frame)
	}

	if err := g.storeIncomingParams(paramsNode.Children); err != nil {
		return "", err
	}

	for _, stmt := range bodyNode.Children {
		if err := g.genStmt(stmt); err != nil {
			return "", err
		}
	}

	// Fallback return for a function whose last statement wasn't a
	// RETURN (e.g. a void function, or main falling off the end).
	g.emitEpilogue()
	if retType == "VOID" {
		g.emit("        ret")
	} else {
		g.emit("        xor rax, rax")
		g.emit("        ret")
	}

	out := ""
	for _, l := range g.lines {
		out += l + "\n"
	}
	return out + "\n", nil
}

var intArgRegs = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
var floatArgRegs = []string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7"}

// storeIncomingParams spills each SysV argument register into its
// parameter's stack slot at function entry.
func (g *Generator) storeIncomingParams(params []*ast.Node) error {
	intIdx, floatIdx := 0, 0
	for _, p := range params {
		typ := p.Child(0).StringValue()
		local := g.locals[p.StringValue()]

		if typ == "FLOAT" {
			if floatIdx >= len(floatArgRegs) {
				return unexpected(ierrors.StageCodegen, "too many float arguments to %s", p.StringValue())
			}
			g.emit("        movsd [rbp%+d], %s", local.offset, floatArgRegs[floatIdx])
			floatIdx++
			continue
		}

		if intIdx >= len(intArgRegs) {
			return unexpected(ierrors.StageCodegen, "too many arguments to %s", p.StringValue())
		}
		g.emit("        mov [rbp%+d], %s", local.offset, intArgRegs[intIdx])
		intIdx++
	}
	return nil
}

func (g *Generator) emitEpilogue() {
	g.emit("        mov rsp, rbp")
	g.emit("        pop rbp")
}

func (g *Generator) genStmt(node *ast.Node) error {
	switch node.Kind {
	case ast.VAR_DECL:
		return g.genVarDecl(node)

	case ast.RETURN:
		return g.genReturn(node)

	case ast.IF:
		return g.genIf(node)

	case ast.WHILE:
		return g.genWhile(node)

	case ast.FOR:
		return g.genFor(node)

	case ast.UNSAFE_BLOCK:
		return g.genStmtList(node.Children)

	case ast.BREAK:
		top, err := g.loopStack.Top()
		if err != nil {
			return unexpected(ierrors.StageCodegen, "break outside of a loop")
		}
		g.emit("        jmp %s", top.breakLabel)
		return nil

	case ast.CONTINUE:
		top, err := g.loopStack.Top()
		if err != nil {
			return unexpected(ierrors.StageCodegen, "continue outside of a loop")
		}
		g.emit("        jmp %s", top.continueLabel)
		return nil

	default:
		// A bare expression statement; evaluate and discard the result.
		_, err := g.genExpr(node)
		return err
	}
}

func (g *Generator) genStmtList(nodes []*ast.Node) error {
	for _, n := range nodes {
		if err := g.genStmt(n); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) genVarDecl(node *ast.Node) error {
	if len(node.Children) < 2 {
		return nil // no initializer
	}
	local := g.locals[node.StringValue()]
	init := node.Children[1]

	typ, err := g.genExpr(init)
	if err != nil {
		return err
	}
	return g.storeAccumulator(local, typ)
}

func (g *Generator) storeAccumulator(local localVar, typ valueType) error {
	if typ == valueFloat {
		if local.typ != "FLOAT" {
			g.emit("        cvttsd2si rax, xmm0")
			g.storeIntAccumulator(local)
			return nil
		}
		g.emit("        movsd [rbp%+d], xmm0", local.offset)
		return nil
	}
	if local.typ == "FLOAT" {
		g.emit("        cvtsi2sd xmm0, rax")
		g.emit("        movsd [rbp%+d], xmm0", local.offset)
		return nil
	}
	g.storeIntAccumulator(local)
	return nil
}

// storeIntAccumulator stores rax into local's slot, narrowing to a
// single byte store for a 1-byte (CHAR) local so the write can't spill
// past its slot into whatever sits above it on the frame.
func (g *Generator) storeIntAccumulator(local localVar) {
	if local.size == 1 {
		g.emit("        mov byte [rbp%+d], al", local.offset)
		return
	}
	g.emit("        mov [rbp%+d], rax", local.offset)
}

func (g *Generator) genReturn(node *ast.Node) error {
	if len(node.Children) > 0 {
		if _, err := g.genExpr(node.Children[0]); err != nil {
			return err
		}
	}
	g.emitEpilogue()
	g.emit("        ret")
	return nil
}

func (g *Generator) genIf(node *ast.Node) error {
	cond := node.Child(0)
	then := node.Child(1)
	els := node.Child(2)

	elseLabel := g.newLabel("else")
	endLabel := g.newLabel("endif")

	if err := g.genCondJumpIfFalse(cond, elseLabel); err != nil {
		return err
	}
	if err := g.genStmtList(then.Children); err != nil {
		return err
	}
	g.emit("        jmp %s", endLabel)
	g.emitLabel(elseLabel)
	if els != nil {
		if err := g.genStmtList(els.Children); err != nil {
			return err
		}
	}
	g.emitLabel(endLabel)
	return nil
}

func (g *Generator) genWhile(node *ast.Node) error {
	cond := node.Child(0)
	body := node.Child(1)

	startLabel := g.newLabel("wstart")
	endLabel := g.newLabel("wend")

	g.loopStack.Push(loopLabels{continueLabel: startLabel, breakLabel: endLabel})
	defer g.loopStack.Pop()

	g.emitLabel(startLabel)
	if err := g.genCondJumpIfFalse(cond, endLabel); err != nil {
		return err
	}
	if err := g.genStmtList(body.Children); err != nil {
		return err
	}
	g.emit("        jmp %s", startLabel)
	g.emitLabel(endLabel)
	return nil
}

func (g *Generator) genFor(node *ast.Node) error {
	init := node.Child(0)
	cond := node.Child(1)
	step := node.Child(2)
	body := node.Child(3)

	if init != nil {
		if _, err := g.genExpr(init); err != nil {
			return err
		}
	}

	startLabel := g.newLabel("fstart")
	continueLabel := g.newLabel("fcont")
	endLabel := g.newLabel("fend")

	g.loopStack.Push(loopLabels{continueLabel: continueLabel, breakLabel: endLabel})
	defer g.loopStack.Pop()

	g.emitLabel(startLabel)
	if cond != nil {
		if err := g.genCondJumpIfFalse(cond, endLabel); err != nil {
			return err
		}
	}
	if err := g.genStmtList(body.Children); err != nil {
		return err
	}
	g.emitLabel(continueLabel)
	if step != nil {
		if _, err := g.genExpr(step); err != nil {
			return err
		}
	}
	g.emit("        jmp %s", startLabel)
	g.emitLabel(endLabel)
	return nil
}

// genCondJumpIfFalse evaluates cond and jumps to falseLabel when it is
// zero. Relational BIN_OPs lower directly to a compare-and-jump instead
// of materializing a 0/1 into rax first.
func (g *Generator) genCondJumpIfFalse(cond *ast.Node, falseLabel string) error {
	if cond.Kind == ast.BIN_OP && isRelational(cond.StringValue()) {
		return g.genRelationalBranch(cond, falseLabel)
	}

	typ, err := g.genExpr(cond)
	if err != nil {
		return err
	}
	if typ == valueFloat {
		g.emit("        pxor xmm1, xmm1")
		g.emit("        ucomisd xmm0, xmm1")
		g.emit("        je %s", falseLabel)
		return nil
	}
	g.emit("        cmp rax, 0")
	g.emit("        je %s", falseLabel)
	return nil
}
