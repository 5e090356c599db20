package stats

import "testing"

func TestTableAlignsColumns(t *testing.T) {
	headers := []string{"Title", "Pages", "Average"}
	rows := [][]string{
		{"SICP", "657", "25"},
		{"The Go Programming Language", "380", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := Table(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Title                       Pages Average" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "SICP                          657      25" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "The Go Programming Language   380       3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestTableEmpty(t *testing.T) {
	if lines := Table(nil, nil, nil); lines != nil {
		t.Fatalf("expected no lines, got %v", lines)
	}
}
