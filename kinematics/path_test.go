package kinematics

import (
	"errors"
	"strings"
	"testing"
)

func TestParsePath(t *testing.T) {
	input := `; square
4,4
G0 X5 Y4
g1 y5 F300 (feed is ignored)

G1 X4
G28
G1 Y4
`
	path, err := ParsePath(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParsePath failed: %v", err)
	}

	expected := []Coordinate{{4, 4}, {5, 4}, {5, 5}, {4, 5}, {4, 4}}
	if len(path) != len(expected) {
		t.Fatalf("Expected %d points, got %d: %v", len(expected), len(path), path)
	}
	for i := range expected {
		if path[i] != expected[i] {
			t.Errorf("Point %d: expected %v, got %v", i, expected[i], path[i])
		}
	}
}

func TestParsePathErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"first move missing axis", "G1 X4\n"},
		{"bad word", "G1 Xabc Y4\n"},
		{"bad command", "Gx X4 Y4\n"},
		{"bad coordinate", "4;4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePath(strings.NewReader(tt.input)); err == nil {
				t.Errorf("Expected error for %q", tt.input)
			}
		})
	}

	_, err := ParsePath(strings.NewReader("4,4\nG1 X9\n"))
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
}
