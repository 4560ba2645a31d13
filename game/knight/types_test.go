package knight

import (
	"errors"
	"testing"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		input    string
		expected Position
		wantErr  bool
	}{
		{"0,0", Position{0, 0}, false},
		{"3,4", Position{3, 4}, false},
		{" 7 , 7 ", Position{7, 7}, false},
		{"-1,2", Position{-1, 2}, false},
		{"3", Position{}, true},
		{"a,b", Position{}, true},
		{"1,2,3", Position{}, true},
		{"", Position{}, true},
		{"1,", Position{}, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			pos, err := ParsePosition(test.input)
			if test.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got %v", test.input, pos)
				}
				if !errors.Is(err, ErrInvalidPosition) {
					t.Errorf("Expected ErrInvalidPosition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if pos != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, pos)
			}
		})
	}
}

func TestPosition_StringRoundTrip(t *testing.T) {
	pos := Position{X: 5, Y: 2}
	if pos.String() != "5,2" {
		t.Errorf("Expected \"5,2\", got %q", pos.String())
	}

	parsed, err := ParsePosition(pos.String())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if parsed != pos {
		t.Errorf("Expected %v, got %v", pos, parsed)
	}
}

func TestBoard_Contains(t *testing.T) {
	tests := []struct {
		name     string
		pos      Position
		expected bool
	}{
		{"origin", Position{0, 0}, true},
		{"far corner", Position{7, 7}, true},
		{"negative x", Position{-1, 0}, false},
		{"negative y", Position{0, -1}, false},
		{"x too large", Position{8, 0}, false},
		{"y too large", Position{0, 8}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := StandardBoard.Contains(test.pos); got != test.expected {
				t.Errorf("Contains(%v): expected %v, got %v", test.pos, test.expected, got)
			}
		})
	}
}

func TestBoard_IndexIsDense(t *testing.T) {
	seen := make(map[int]bool)
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			idx := StandardBoard.Index(Position{X: x, Y: y})
			if idx < 0 || idx >= StandardBoard.Squares() {
				t.Fatalf("Index(%d,%d) = %d out of range", x, y, idx)
			}
			if seen[idx] {
				t.Fatalf("Index(%d,%d) = %d collides", x, y, idx)
			}
			seen[idx] = true
		}
	}
	if len(seen) != 64 {
		t.Errorf("Expected 64 distinct keys, got %d", len(seen))
	}
}

func TestBoard_Validate(t *testing.T) {
	if err := StandardBoard.Validate(Position{3, 3}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	err := StandardBoard.Validate(Position{8, 3})
	if !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("Expected ErrInvalidPosition, got %v", err)
	}
}

func TestBoard_Check(t *testing.T) {
	tests := []struct {
		size  int
		valid bool
	}{
		{1, true},
		{BoardSize, true},
		{MaxBoardSize, true},
		{0, false},
		{-3, false},
		{MaxBoardSize + 1, false},
		{1 << 30, false},
	}

	for _, tt := range tests {
		err := Board{Size: tt.size}.Check()
		if tt.valid && err != nil {
			t.Errorf("Size %d: expected no error, got %v", tt.size, err)
		}
		if !tt.valid && !errors.Is(err, ErrInvalidBoard) {
			t.Errorf("Size %d: expected ErrInvalidBoard, got %v", tt.size, err)
		}
	}
}
