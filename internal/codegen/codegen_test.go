package codegen

import (
	"os"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/capfund/oxylang/internal/parser"
	"github.com/capfund/oxylang/internal/preprocessor"
	"github.com/capfund/oxylang/internal/semantic"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

func compileSource(t *testing.T, src string) string {
	t.Helper()
	program, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: unexpected error: %s", err)
	}
	if err := semantic.Analyze(program); err != nil {
		t.Fatalf("Analyze: unexpected error: %s", err)
	}
	asm, err := Generate(program)
	if err != nil {
		t.Fatalf("Generate: unexpected error: %s", err)
	}
	return asm
}

func TestSizeofMatchesSpecSimplification(t *testing.T) {
	cases := map[string]int{
		"CHAR":     1,
		"INT":      8,
		"INT16":    8,
		"INT32":    8,
		"INT64":    8,
		"FLOAT":    8,
		"VOID":     8,
		"CHAR_PTR": 8,
		"INT_PTR":  8,
	}
	for typ, want := range cases {
		if got := sizeof(typ); got != want {
			t.Errorf("sizeof(%s) = %d, want %d", typ, got, want)
		}
	}
}

func TestGeneratedAssemblyHasOneEntryPoint(t *testing.T) {
	asm := compileSource(t, `fn main() -> int { ret 42; }`)
	if !strings.Contains(asm, "global main") {
		t.Error("expected a \"global main\" directive")
	}
	if strings.Count(asm, "main:") != 1 {
		t.Errorf("expected exactly one main: label, got assembly:\n%s", asm)
	}
}

func TestEachStringLiteralEmittedOnce(t *testing.T) {
	asm := compileSource(t, `
		fn main() -> int {
			puts("hello");
			puts("hello");
			ret 0;
		}
	`)
	if strings.Count(asm, `"hello"`) != 1 {
		t.Errorf("expected \"hello\" to appear exactly once in .rodata, got assembly:\n%s", asm)
	}
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	program, err := parser.Parse(`fn main() -> int { break; ret 0; }`)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if _, err := Generate(program); err == nil {
		t.Error("expected a codegen error for break outside a loop")
	}
}

func TestUndefinedVariableIsAnError(t *testing.T) {
	program, err := parser.Parse(`fn main() -> int { ret missing; }`)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if _, err := Generate(program); err == nil {
		t.Error("expected a codegen error for an undefined variable")
	}
}

func TestOverloadedFunctionsGetDistinctLabels(t *testing.T) {
	asm := compileSource(t, `
		fn describe(int n) -> int { ret n; }
		fn describe(char* n) -> int { ret 0; }
		fn main() -> int { ret describe(1); }
	`)
	if !strings.Contains(asm, "describe__INT:") {
		t.Errorf("expected a mangled label for the int overload, got assembly:\n%s", asm)
	}
	if !strings.Contains(asm, "describe__CHAR_PTR:") {
		t.Errorf("expected a mangled label for the char* overload, got assembly:\n%s", asm)
	}
}

func TestFactorialWrapperAtoiProgramCompiles(t *testing.T) {
	pp := preprocessor.New(t.TempDir())
	program, err := pp.Process(`
		include minlib;

		fn factorial(int n) -> int {
			if (n <= 1) {
				ret 1;
			}
			ret n * factorial(n-1);
		}

		fn wrapper(char* str) -> void {
			puts(str);
			int n = 5;
			while (1) {
				n += 1;
				if (n >= 5) {
					break;
				}
				continue;
			}
			puts("done loop");
		}

		fn main() -> int {
			int n = atoi("15");
			puts("String converted to integer");
			int result = factorial(5);
			puts("Factorial computed");
			result++;

			int x = 10 % 3;
			puts("Modulo computed");
			x = -x;
			puts("Negation computed");
			x = -x;

			ret n;
		}
	`)
	if err != nil {
		t.Fatalf("preprocess: unexpected error: %s", err)
	}
	if err := semantic.Analyze(program); err != nil {
		t.Fatalf("analyze: unexpected error: %s", err)
	}

	asm, err := Generate(program)
	if err != nil {
		t.Fatalf("generate: unexpected error: %s", err)
	}

	snaps.MatchSnapshot(t, asm)
}
