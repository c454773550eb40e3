package strings

import "testing"

func TestIfEmpty(t *testing.T) {
	if got := IfEmpty(nil, []int{1}); len(got) != 1 {
		t.Fatalf("empty slice should yield default")
	}
	if got := IfEmpty([]int{2}, []int{1}); got[0] != 2 {
		t.Fatalf("non-empty slice should pass through")
	}
}

func TestMustStringPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on blank")
		}
	}()
	MustString("  ", "title")
}

func TestPtrDeref(t *testing.T) {
	if Ptr("") != nil {
		t.Fatalf("empty string should yield nil")
	}
	if Deref(nil) != "" {
		t.Fatalf("nil should deref to empty")
	}
	if Deref(Ptr("x")) != "x" {
		t.Fatalf("round trip failed")
	}
}
