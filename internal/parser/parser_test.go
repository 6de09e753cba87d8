package parser

import (
	"testing"

	"github.com/capfund/oxylang/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Node {
	t.Helper()
	program, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): unexpected error: %s", src, err)
	}
	return program
}

func TestParseSimpleFunction(t *testing.T) {
	program := mustParse(t, `
		fn main() -> int {
			ret 42;
		}
	`)

	if len(program.Children) != 1 {
		t.Fatalf("expected 1 top-level declaration, got %d", len(program.Children))
	}
	fn := program.Children[0]
	if fn.Kind != ast.FUNCTION || fn.StringValue() != "main" {
		t.Fatalf("expected FUNCTION main, got %s %v", fn.Kind, fn.Value)
	}

	body := fn.Child(2)
	if len(body.Children) != 1 || body.Children[0].Kind != ast.RETURN {
		t.Fatalf("expected a single RETURN statement in the body")
	}
}

func TestParseTypedFunctionDeclaration(t *testing.T) {
	program := mustParse(t, `
		int add(int a, int b) {
			ret a + b;
		}
	`)
	fn := program.Children[0]
	params := fn.Child(1)
	if len(params.Children) != 2 {
		t.Fatalf("expected 2 params, got %d", len(params.Children))
	}
}

func TestParsePointerAndArrayDeclarators(t *testing.T) {
	program := mustParse(t, `
		fn main() -> int {
			char* s;
			int buf[10];
			ret 0;
		}
	`)
	body := program.Children[0].Child(2)

	sDecl := body.Children[0]
	if sDecl.Child(0).StringValue() != "CHAR_PTR" {
		t.Errorf("expected CHAR_PTR, got %v", sDecl.Child(0).Value)
	}

	bufDecl := body.Children[1]
	typeNode := bufDecl.Child(0)
	if typeNode.Child(0) == nil || typeNode.Child(0).IntValue() != 10 {
		t.Errorf("expected an ARRAY_SIZE child of 10")
	}
}

func TestParseUnaryAndPostfixForms(t *testing.T) {
	program := mustParse(t, `
		fn main() -> int {
			int n = 5;
			int* p = &n;
			int d = *p;
			n++;
			n--;
			++n;
			ret n;
		}
	`)
	body := program.Children[0].Child(2)

	addrOfInit := body.Children[1].Children[1]
	if addrOfInit.Kind != ast.ADDROF {
		t.Errorf("expected ADDROF, got %s", addrOfInit.Kind)
	}

	derefInit := body.Children[2].Children[1]
	if derefInit.Kind != ast.DEREF {
		t.Errorf("expected DEREF, got %s", derefInit.Kind)
	}

	if body.Children[3].Kind != ast.POST_INC {
		t.Errorf("expected POST_INC, got %s", body.Children[3].Kind)
	}
	if body.Children[4].Kind != ast.POST_DEC {
		t.Errorf("expected POST_DEC, got %s", body.Children[4].Kind)
	}
	if body.Children[5].Kind != ast.PRE_INC {
		t.Errorf("expected PRE_INC, got %s", body.Children[5].Kind)
	}
}

func TestParseArrayIndexAndCall(t *testing.T) {
	program := mustParse(t, `
		fn main() -> int {
			int x = buf[i];
			puts("hi");
			ret 0;
		}
	`)
	body := program.Children[0].Child(2)

	indexExpr := body.Children[0].Children[1]
	if indexExpr.Kind != ast.ARRAY_INDEX {
		t.Errorf("expected ARRAY_INDEX, got %s", indexExpr.Kind)
	}

	call := body.Children[1]
	if call.Kind != ast.CALL || call.StringValue() != "puts" {
		t.Errorf("expected CALL puts, got %s %v", call.Kind, call.Value)
	}
}

func TestOperatorPrecedenceWithCaret(t *testing.T) {
	// 2 + 3 ^ 2 should parse as 2 + (3 ^ 2), i.e. CARET binds tighter
	// than PLUS.
	program := mustParse(t, `
		fn main() -> int {
			ret 2 + 3 ^ 2;
		}
	`)
	retExpr := program.Children[0].Child(2).Children[0].Children[0]
	if retExpr.Kind != ast.BIN_OP || retExpr.StringValue() != "PLUS" {
		t.Fatalf("expected top-level PLUS, got %s %v", retExpr.Kind, retExpr.Value)
	}
	rhs := retExpr.Children[1]
	if rhs.Kind != ast.BIN_OP || rhs.StringValue() != "CARET" {
		t.Fatalf("expected CARET as the right operand of PLUS, got %s %v", rhs.Kind, rhs.Value)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	program := mustParse(t, `
		fn main() -> int {
			int a;
			int b;
			a = b = 1;
			ret a;
		}
	`)
	body := program.Children[0].Child(2)
	assign := body.Children[2]
	if assign.Kind != ast.BIN_OP || assign.StringValue() != "ASSIGN" {
		t.Fatalf("expected top-level ASSIGN, got %s %v", assign.Kind, assign.Value)
	}
	rhs := assign.Children[1]
	if rhs.Kind != ast.BIN_OP || rhs.StringValue() != "ASSIGN" {
		t.Fatalf("expected nested ASSIGN on the right, got %s %v", rhs.Kind, rhs.Value)
	}
}

func TestUnexpectedTokenIsAnError(t *testing.T) {
	if _, err := Parse(`fn main() -> int { ret 1 }`); err == nil {
		t.Error("expected a parse error for a missing semicolon")
	}
}

func TestIncludeAndExternDeclarations(t *testing.T) {
	program := mustParse(t, `
		include minlib;
		extern puts;
		fn main() -> int { ret 0; }
	`)
	if program.Children[0].Kind != ast.INCLUDE || program.Children[0].StringValue() != "minlib.oxy" {
		t.Errorf("expected INCLUDE minlib.oxy, got %s %v", program.Children[0].Kind, program.Children[0].Value)
	}
	if program.Children[1].Kind != ast.EXTERN || program.Children[1].StringValue() != "puts" {
		t.Errorf("expected EXTERN puts, got %s %v", program.Children[1].Kind, program.Children[1].Value)
	}
}
