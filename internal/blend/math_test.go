package blend

import "testing"

func TestDiv255Fast(t *testing.T) {
	for x := 0; x <= 255*255; x++ {
		expected := x / 255
		got := int(div255(uint16(x)))

		// Fast div255 can be +1 higher than exact division.
		if diff := got - expected; diff < 0 || diff > 1 {
			t.Fatalf("div255(%d) = %d, want %d (diff=%d)", x, got, expected, diff)
		}
	}
}

func TestMulDiv255(t *testing.T) {
	tests := []struct {
		a, b, want byte
	}{
		{0, 0, 0},
		{255, 255, 255},
		{0, 255, 0},
		{255, 0, 0},
		{1, 255, 1},
		{255, 1, 1},
	}
	for _, tt := range tests {
		if got := mulDiv255(tt.a, tt.b); got != tt.want {
			t.Errorf("mulDiv255(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAddClamp(t *testing.T) {
	if got := addClamp(200, 100); got != 255 {
		t.Errorf("addClamp(200, 100) = %d, want 255", got)
	}
	if got := addClamp(20, 10); got != 30 {
		t.Errorf("addClamp(20, 10) = %d, want 30", got)
	}
}
