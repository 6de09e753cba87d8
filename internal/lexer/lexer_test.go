package lexer

import (
	"testing"

	"github.com/capfund/oxylang/internal/token"
)

func TestNextTokenSampleProgram(t *testing.T) {
	input := `
fn add(int a, int b) -> int {
    ret a + b;
}

int32 main() {
    int x = 5;
    x += 1;
    if (x >= 5 && x != 10) {
        puts("ok");
    } else {
        ret 0;
    }
    ret x;
}
`
	expected := []token.Type{
		token.FN, token.IDENTIFIER, token.LPAREN,
		token.INT, token.IDENTIFIER, token.COMMA, token.INT, token.IDENTIFIER, token.RPAREN,
		token.ARROW, token.INT, token.LBRACE,
		token.RET, token.IDENTIFIER, token.PLUS, token.IDENTIFIER, token.SEMICOLON,
		token.RBRACE,
		token.INT32, token.IDENTIFIER, token.LPAREN, token.RPAREN, token.LBRACE,
		token.INT, token.IDENTIFIER, token.ASSIGN, token.NUMBER, token.SEMICOLON,
		token.IDENTIFIER, token.PLUS_ASSIGN, token.NUMBER, token.SEMICOLON,
		token.IF, token.LPAREN, token.IDENTIFIER, token.GE, token.NUMBER, token.AND,
		token.IDENTIFIER, token.NE, token.NUMBER, token.RPAREN, token.LBRACE,
		token.IDENTIFIER, token.LPAREN, token.STRING, token.RPAREN, token.SEMICOLON,
		token.RBRACE, token.ELSE, token.LBRACE,
		token.RET, token.NUMBER, token.SEMICOLON,
		token.RBRACE,
		token.RET, token.IDENTIFIER, token.SEMICOLON,
		token.RBRACE,
		token.EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %s", i, err)
		}
		if tok.Type != want {
			t.Fatalf("token %d: got %s, want %s (literal %q)", i, tok.Type, want, tok.Literal)
		}
	}
}

func TestLineTracking(t *testing.T) {
	l := New("int a;\nint b;\n")
	var lastLine int
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if tok.Type == token.EOF {
			break
		}
		lastLine = tok.Line
	}
	if lastLine != 2 {
		t.Errorf("expected the last token to be on line 2, got %d", lastLine)
	}
}

func TestStringEscapes(t *testing.T) {
	l := New(`"a\nb\tc"`)
	tok, err := l.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := "a\nb\tc"
	if tok.Literal != want {
		t.Errorf("Literal = %q, want %q", tok.Literal, want)
	}
}

func TestUnterminatedStringIsAnError(t *testing.T) {
	l := New(`"never closed`)
	if _, err := l.NextToken(); err == nil {
		t.Error("expected an error for an unterminated string")
	}
}

func TestUnterminatedBlockCommentIsAnError(t *testing.T) {
	l := New("/* never closed")
	if _, err := l.NextToken(); err == nil {
		t.Error("expected an error for an unterminated block comment")
	}
}

func TestUnknownCharacterIsAnError(t *testing.T) {
	l := New("int a = 1 @ 2;")
	for {
		tok, err := l.NextToken()
		if err != nil {
			return
		}
		if tok.Type == token.EOF {
			t.Fatal("expected an unknown-character error before EOF")
		}
	}
}

func TestFloatLiteral(t *testing.T) {
	l := New("3.14")
	tok, err := l.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !tok.IsFloat || tok.Literal != "3.14" {
		t.Errorf("got IsFloat=%v Literal=%q, want IsFloat=true Literal=%q", tok.IsFloat, tok.Literal, "3.14")
	}
}

func TestCaretIsItsOwnToken(t *testing.T) {
	l := New("2 ^ 3")
	_, _ = l.NextToken() // NUMBER
	tok, err := l.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if tok.Type != token.CARET {
		t.Errorf("got %s, want CARET", tok.Type)
	}
}
