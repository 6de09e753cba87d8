package stack

import "testing"

func TestPushPopOrderIsLIFO(t *testing.T) {
	s := New[int]()
	s.Push(1)
	s.Push(2)
	s.Push(3)

	for _, want := range []int{3, 2, 1} {
		got, err := s.Pop()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if got != want {
			t.Errorf("Pop() = %d, want %d", got, want)
		}
	}
}

func TestEmptyStackPopIsError(t *testing.T) {
	s := New[string]()
	if !s.Empty() {
		t.Fatal("expected a fresh stack to be empty")
	}
	if _, err := s.Pop(); err != ErrEmpty {
		t.Errorf("Pop() error = %v, want ErrEmpty", err)
	}
}

func TestTopDoesNotRemove(t *testing.T) {
	s := New[int]()
	s.Push(42)

	top, err := s.Top()
	if err != nil || top != 42 {
		t.Fatalf("Top() = %d, %v, want 42, nil", top, err)
	}
	if s.Empty() {
		t.Error("Top() should not remove the item")
	}
}

func TestGenericOverStructType(t *testing.T) {
	type labels struct{ a, b string }
	s := New[labels]()
	s.Push(labels{a: "start", b: "end"})

	got, err := s.Pop()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.a != "start" || got.b != "end" {
		t.Errorf("Pop() = %+v, want {start end}", got)
	}
}
