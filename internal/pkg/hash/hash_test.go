package hash

import "testing"

func TestSHA256String(t *testing.T) {
	a := SHA256String("what is a tort?")
	b := SHA256String("what is a tort?")
	c := SHA256String("what is bail?")

	if a != b {
		t.Error("same input should hash equal")
	}
	if a == c {
		t.Error("different inputs should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("len = %d, want 64 hex chars", len(a))
	}
}

func TestSHA256MatchesString(t *testing.T) {
	if SHA256([]byte("x")) != SHA256String("x") {
		t.Error("byte and string variants should agree")
	}
}
