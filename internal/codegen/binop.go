package codegen

import (
	"github.com/capfund/oxylang/internal/ast"
	"github.com/capfund/oxylang/internal/ierrors"
)

// genBinOp dispatches a BIN_OP node to assignment lowering, relational
// lowering, or arithmetic lowering.
func (g *Generator) genBinOp(node *ast.Node) (valueType, error) {
	op := node.StringValue()

	if op == "ASSIGN" || arithAssignOp[op] != "" {
		return g.genAssign(node, op)
	}
	if op == "AND" || op == "OR" {
		return g.genLogical(node, op)
	}
	if isRelational(op) {
		return g.genRelationalValue(node, op)
	}

	lhsType, err := g.genExpr(node.Children[0])
	if err != nil {
		return valueInt, err
	}
	g.pushAccumulator(lhsType)

	rhsType, err := g.genExpr(node.Children[1])
	if err != nil {
		return valueInt, err
	}

	return g.genArith(op, lhsType, rhsType)
}

// pushAccumulator saves the current result (rax or xmm0) on the stack
// ahead of evaluating the other side of a binary expression.
func (g *Generator) pushAccumulator(typ valueType) {
	if typ == valueFloat {
		g.emit("        sub rsp, 8")
		g.emit("        movsd [rsp], xmm0")
		return
	}
	g.emit("        push rax")
}

// genArith lowers +, -, *, /, %, and ^ once both operands have been
// evaluated: the LHS is on the stack (pushAccumulator above), the RHS
// is in rax/xmm0. If either side was float, the integer side is widened
// with cvtsi2sd and the whole operation runs in the float path --
// mirroring x86_64_linux.py's gen_binop int/float split, generalized to
// widen instead of erroring when the two sides disagree.
func (g *Generator) genArith(op string, lhsType, rhsType valueType) (valueType, error) {
	if lhsType == valueFloat || rhsType == valueFloat {
		return g.genFloatBinop(op, lhsType, rhsType)
	}
	return g.genIntBinop(op)
}

func (g *Generator) genIntBinop(op string) (valueType, error) {
	g.emit("        mov rcx, rax")
	g.emit("        pop rax")

	switch op {
	case "PLUS":
		g.emit("        add rax, rcx")
	case "MINUS":
		g.emit("        sub rax, rcx")
	case "ASTERISK":
		g.emit("        imul rax, rcx")
	case "SLASH":
		g.emit("        cqo")
		g.emit("        idiv rcx")
	case "MOD":
		g.emit("        cqo")
		g.emit("        idiv rcx")
		g.emit("        mov rax, rdx")
	case "CARET":
		g.genIntPow()
	default:
		return valueInt, unexpected(ierrors.StageCodegen, "unsupported operator: %s", op)
	}
	return valueInt, nil
}

// genIntPow lowers integer exponentiation (rax ^ rcx) with the same
// decrement-and-multiply loop original_source's gen_binop used for the
// POW case before it was made reachable. The exponent is assumed
// non-negative; a negative exponent is undefined here exactly as it was
// there.
func (g *Generator) genIntPow() {
	base := g.newLabel("powloop")
	done := g.newLabel("powdone")

	g.emit("        mov r8, rax")  // base
	g.emit("        mov r9, rcx")  // remaining exponent
	g.emit("        mov rax, 1")   // accumulator
	g.emitLabel(base)
	g.emit("        cmp r9, 0")
	g.emit("        je %s", done)
	g.emit("        imul rax, r8")
	g.emit("        dec r9")
	g.emit("        jmp %s", base)
	g.emitLabel(done)
}

func (g *Generator) genFloatBinop(op string, lhsType, rhsType valueType) (valueType, error) {
	// RHS is already in xmm0 (float) or rax (int); move it into xmm1,
	// widening if needed, before the LHS is popped back into xmm0.
	if rhsType == valueFloat {
		g.emit("        movsd xmm1, xmm0")
	} else {
		g.emit("        cvtsi2sd xmm1, rax")
	}

	if lhsType == valueFloat {
		g.emit("        movsd xmm0, [rsp]")
		g.emit("        add rsp, 8")
	} else {
		g.emit("        mov rax, [rsp]")
		g.emit("        add rsp, 8")
		g.emit("        cvtsi2sd xmm0, rax")
	}

	switch op {
	case "PLUS":
		g.emit("        addsd xmm0, xmm1")
	case "MINUS":
		g.emit("        subsd xmm0, xmm1")
	case "ASTERISK":
		g.emit("        mulsd xmm0, xmm1")
	case "SLASH":
		g.emit("        divsd xmm0, xmm1")
	default:
		return valueFloat, unexpected(ierrors.StageCodegen, "unsupported float operator: %s", op)
	}
	return valueFloat, nil
}

// genRelationalValue lowers a relational/equality operator used as a
// value (not as the condition of an if/while/for) into a 0/1 integer in
// rax via set-on-condition.
func (g *Generator) genRelationalValue(node *ast.Node, op string) (valueType, error) {
	lhsType, err := g.genExpr(node.Children[0])
	if err != nil {
		return valueInt, err
	}
	g.pushAccumulator(lhsType)
	rhsType, err := g.genExpr(node.Children[1])
	if err != nil {
		return valueInt, err
	}

	if lhsType == valueFloat || rhsType == valueFloat {
		if rhsType == valueFloat {
			g.emit("        movsd xmm1, xmm0")
		} else {
			g.emit("        cvtsi2sd xmm1, rax")
		}
		g.popWidenedFloat(lhsType, "xmm0")
		g.emit("        ucomisd xmm0, xmm1")
		g.emit("        %s al", floatSetMnemonic[op])
		g.emit("        movzx rax, al")
		return valueInt, nil
	}

	g.emit("        mov rcx, rax")
	g.emit("        pop rax")
	g.emit("        cmp rax, rcx")
	g.emit("        %s al", intSetMnemonic(op))
	g.emit("        movzx rax, al")
	return valueInt, nil
}

// popWidenedFloat pops whatever pushAccumulator(typ) pushed and leaves
// it as a double in dstReg, widening with cvtsi2sd if it was an int.
func (g *Generator) popWidenedFloat(typ valueType, dstReg string) {
	if typ == valueFloat {
		g.emit("        movsd %s, [rsp]", dstReg)
		g.emit("        add rsp, 8")
		return
	}
	g.emit("        pop rax")
	g.emit("        cvtsi2sd %s, rax", dstReg)
}

// genRelationalBranch lowers a relational/equality BIN_OP used directly
// as an if/while/for condition into a compare-and-jump, skipping the
// intermediate 0/1 materialization genRelationalValue needs.
func (g *Generator) genRelationalBranch(node *ast.Node, falseLabel string) error {
	op := node.StringValue()
	lhsType, err := g.genExpr(node.Children[0])
	if err != nil {
		return err
	}
	g.pushAccumulator(lhsType)
	rhsType, err := g.genExpr(node.Children[1])
	if err != nil {
		return err
	}

	if lhsType == valueFloat || rhsType == valueFloat {
		if rhsType == valueFloat {
			g.emit("        movsd xmm1, xmm0")
		} else {
			g.emit("        cvtsi2sd xmm1, rax")
		}
		g.popWidenedFloat(lhsType, "xmm0")
		g.emit("        ucomisd xmm0, xmm1")
		g.emit("        %s al", floatSetMnemonic[op])
		g.emit("        test al, al")
		g.emit("        je %s", falseLabel)
		return nil
	}

	g.emit("        mov rcx, rax")
	g.emit("        pop rax")
	g.emit("        cmp rax, rcx")
	g.emit("        %s %s", invertedJump(op), falseLabel)
	return nil
}

func intSetMnemonic(op string) string {
	switch op {
	case "EQ":
		return "sete"
	case "NE":
		return "setne"
	case "LT":
		return "setl"
	case "LE":
		return "setle"
	case "GT":
		return "setg"
	case "GE":
		return "setge"
	}
	return "sete"
}

// invertedJump returns the jump mnemonic taken when op is FALSE, so the
// branch lowering can jump straight to the false path on one compare.
func invertedJump(op string) string {
	switch op {
	case "EQ":
		return "jne"
	case "NE":
		return "je"
	case "LT":
		return "jge"
	case "LE":
		return "jg"
	case "GT":
		return "jle"
	case "GE":
		return "jl"
	}
	return "jne"
}

// genLogical lowers && and || with short-circuit evaluation.
func (g *Generator) genLogical(node *ast.Node, op string) (valueType, error) {
	shortCircuit := g.newLabel("sc")
	end := g.newLabel("scend")

	if _, err := g.genExpr(node.Children[0]); err != nil {
		return valueInt, err
	}
	g.emit("        cmp rax, 0")
	if op == "AND" {
		g.emit("        je %s", shortCircuit)
	} else {
		g.emit("        jne %s", shortCircuit)
	}

	if _, err := g.genExpr(node.Children[1]); err != nil {
		return valueInt, err
	}
	g.emit("        cmp rax, 0")
	g.emit("        setne al")
	g.emit("        movzx rax, al")
	g.emit("        jmp %s", end)

	g.emitLabel(shortCircuit)
	if op == "AND" {
		g.emit("        mov rax, 0")
	} else {
		g.emit("        mov rax, 1")
	}
	g.emitLabel(end)
	return valueInt, nil
}

// genAssign lowers '=' and the compound assignment operators. The
// address of the target is computed first (lvalueAddress), then saved
// while the right-hand side is evaluated, then stored.
func (g *Generator) genAssign(node *ast.Node, op string) (valueType, error) {
	target := node.Children[0]
	rhs := node.Children[1]

	elemType, err := g.lvalueAddress(target)
	if err != nil {
		return valueInt, err
	}
	g.emit("        push rax") // save address

	if baseOp, compound := arithAssignOp[op]; compound {
		g.emit("        mov rax, [rsp]")
		if elemType == "FLOAT" {
			g.emit("        movsd xmm0, [rax]")
		} else if sizeof(elemType) == 1 {
			g.emit("        movzx rax, byte [rax]")
		} else {
			g.emit("        mov rax, [rax]")
		}
		lhsType := valueInt
		if elemType == "FLOAT" {
			lhsType = valueFloat
		}
		g.pushAccumulator(lhsType)

		rhsType, err := g.genExpr(rhs)
		if err != nil {
			return valueInt, err
		}
		resultType, err := g.genArith(baseOp, lhsType, rhsType)
		if err != nil {
			return valueInt, err
		}
		return g.storeAssignResult(elemType, resultType)
	}

	resultType, err := g.genExpr(rhs)
	if err != nil {
		return valueInt, err
	}
	return g.storeAssignResult(elemType, resultType)
}

// storeAssignResult stores the value currently in rax/xmm0 through the
// address saved on the stack by genAssign, converting between int and
// float representation if the target and result disagree.
func (g *Generator) storeAssignResult(elemType string, resultType valueType) (valueType, error) {
	if elemType == "FLOAT" {
		if resultType != valueFloat {
			g.emit("        cvtsi2sd xmm0, rax")
		}
		g.emit("        mov rax, [rsp]")
		g.emit("        add rsp, 8")
		g.emit("        movsd [rax], xmm0")
		return valueFloat, nil
	}

	if resultType == valueFloat {
		g.emit("        cvttsd2si rax, xmm0")
	}
	g.emit("        mov rcx, rax")
	g.emit("        mov rax, [rsp]")
	g.emit("        add rsp, 8")
	if sizeof(elemType) == 1 {
		g.emit("        mov byte [rax], cl")
	} else {
		g.emit("        mov [rax], rcx")
	}
	g.emit("        mov rax, rcx")
	return valueInt, nil
}
