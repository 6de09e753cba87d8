package semantic

import (
	"testing"

	"github.com/capfund/oxylang/internal/parser"
)

func analyzeSource(t *testing.T, src string) error {
	t.Helper()
	program, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: unexpected error: %s", err)
	}
	return Analyze(program)
}

func TestValidMainPasses(t *testing.T) {
	if err := analyzeSource(t, `fn main() -> int { ret 0; }`); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}

func TestInt32MainPasses(t *testing.T) {
	if err := analyzeSource(t, `int32 main() { ret 0; }`); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}

func TestMissingMainFails(t *testing.T) {
	if err := analyzeSource(t, `fn helper() -> int { ret 1; }`); err == nil {
		t.Error("expected an error for a program with no main")
	}
}

func TestMainWithParamsFails(t *testing.T) {
	if err := analyzeSource(t, `fn main(int argc) -> int { ret 0; }`); err == nil {
		t.Error("expected an error for main taking parameters")
	}
}

func TestMainWithWrongReturnTypeFails(t *testing.T) {
	if err := analyzeSource(t, `fn main() -> void { ret; }`); err == nil {
		t.Error("expected an error for main not returning int")
	}
}

func TestIllegalTopLevelFails(t *testing.T) {
	if err := analyzeSource(t, `ret 1; fn main() -> int { ret 0; }`); err == nil {
		t.Error("expected an error for a bare statement at the top level")
	}
}

func TestGlobalsAndExternsAreLegalTopLevel(t *testing.T) {
	src := `
		extern puts;
		int counter;
		fn main() -> int { ret 0; }
	`
	if err := analyzeSource(t, src); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}
