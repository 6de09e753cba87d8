package ierrors

import "testing"

func TestErrorWithLine(t *testing.T) {
	err := NewAt(StageLex, 12, "unknown character %q", '$')
	want := `lex: unknown character '$' (line 12)`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorWithoutLine(t *testing.T) {
	err := New(StageCodegen, "undefined variable: %s", "n")
	want := "codegen: undefined variable: n"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorSatisfiesErrorInterface(t *testing.T) {
	var err error = New(StageSemantic, "missing main function")
	if err.Error() == "" {
		t.Error("expected a non-empty message")
	}
}
