package util

import "testing"

func TestNormalizeSpaces(t *testing.T) {
	if got := NormalizeSpaces("  a \t b\n c  "); got != "a b c" {
		t.Fatalf("got %q", got)
	}
}

func TestSplitLines(t *testing.T) {
	lines := SplitLines("one\r\n\ntwo \n  \nthree")
	if len(lines) != 3 {
		t.Fatalf("len=%d", len(lines))
	}
	if lines[1] != "two" {
		t.Fatalf("got %q", lines[1])
	}
}

func TestFields(t *testing.T) {
	fields := Fields("1  21020001   Nguyen Van An")
	if len(fields) != 5 {
		t.Fatalf("len=%d", len(fields))
	}
	if fields[4] != "An" {
		t.Fatalf("got %q", fields[4])
	}
}
