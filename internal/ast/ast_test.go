package ast

import "testing"

func TestNumberValueIntFromRawInt64(t *testing.T) {
	n := New(NUMBER, int64(42))
	if n.IntValue() != 42 {
		t.Errorf("IntValue() = %d, want 42", n.IntValue())
	}
}

func TestNumberValueFromFloatTruncates(t *testing.T) {
	n := New(NUMBER, &NumberValue{IsFloat: true, Float: 3.9})
	if n.IntValue() != 3 {
		t.Errorf("IntValue() = %d, want 3", n.IntValue())
	}
}

func TestChildOutOfRangeIsNil(t *testing.T) {
	n := New(IF, nil, New(NUMBER, int64(1)))
	if n.Child(5) != nil {
		t.Error("expected Child(5) to be nil")
	}
	if n.Child(0) == nil {
		t.Error("expected Child(0) to be present")
	}
}

func TestChildOnNilNodeIsNil(t *testing.T) {
	var n *Node
	if n.Child(0) != nil {
		t.Error("expected Child(0) on a nil node to be nil")
	}
}

func TestStringValue(t *testing.T) {
	n := New(IDENTIFIER, "counter")
	if n.StringValue() != "counter" {
		t.Errorf("StringValue() = %q, want %q", n.StringValue(), "counter")
	}
	if New(IDENTIFIER, nil).StringValue() != "" {
		t.Error("expected StringValue() on a non-string Value to be empty")
	}
}
