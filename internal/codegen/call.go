package codegen

import (
	"github.com/capfund/oxylang/internal/ast"
	"github.com/capfund/oxylang/internal/ierrors"
)

// genCall lowers a function call: evaluate each argument, move each
// result into its SysV argument register by position, call, and leave
// the result in rax/xmm0.
//
// Grounded on original_source/src/compiler/x86_64_linux.py's gen_call,
// generalized from a single hardcoded puts(str) call into one that
// handles any number/mix of integer and float arguments.
func (g *Generator) genCall(node *ast.Node) (valueType, error) {
	name := node.StringValue()
	args := node.Children

	if len(args) > len(intArgRegs) {
		return valueInt, unexpected(ierrors.StageCodegen, "too many arguments in call to %s", name)
	}

	// Evaluate every argument first and push its result, left to right,
	// so evaluating argument N can't clobber a register already holding
	// argument N-1's value.
	argTypes := make([]valueType, len(args))
	for i, arg := range args {
		typ, err := g.genExpr(arg)
		if err != nil {
			return valueInt, err
		}
		argTypes[i] = typ
		g.pushAccumulator(typ)
	}

	// Each argument's destination register is determined by its position
	// among same-class arguments (the 1st int arg always goes to rdi,
	// the 2nd to rsi, and so on), not by the order values come off the
	// stack -- those two only coincide when there's at most one argument
	// of each class.
	argRegs := make([]string, len(args))
	intIdx, floatIdx := 0, 0
	for i, typ := range argTypes {
		if typ == valueFloat {
			argRegs[i] = floatArgRegs[floatIdx]
			floatIdx++
		} else {
			argRegs[i] = intArgRegs[intIdx]
			intIdx++
		}
	}

	// Pop back off in reverse push order, each into its pre-assigned
	// register.
	for i := len(args) - 1; i >= 0; i-- {
		if argTypes[i] == valueFloat {
			g.emit("        movsd %s, [rsp]", argRegs[i])
			g.emit("        add rsp, 8")
		} else {
			g.emit("        pop %s", argRegs[i])
		}
	}

	label := g.mangledCallTarget(name, args)

	// The argument pushes above are all popped again, but a call nested
	// inside a larger expression can still run while that expression's
	// operands sit on the stack, so rsp is not known to be 16-byte
	// aligned here. Save it in rbx (callee-saved, preserved via the
	// push/pop around it), round it down to 16 for the call, and restore
	// it afterwards.
	g.emit("        push rbx")
	g.emit("        mov rbx, rsp")
	g.emit("        and rsp, -16")
	g.emit("        call %s", label)
	g.emit("        mov rsp, rbx")
	g.emit("        pop rbx")

	return valueInt, nil
}
