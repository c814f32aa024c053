package metro

import "testing"

func TestLineIdentity(t *testing.T) {
	tests := []struct {
		code      string
		direction string
		expected  string
	}{
		{"BL", "1", "BL-1"},
		{"BL", "2", "BL-2"},
		{"RD", "1", "RD-1"},
		{"", "1", "-1"},
		{" BL", "1", " BL-1"}, // no trimming
		{"bl", "1", "bl-1"},   // no case folding
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			got := LineIdentity(tc.code, tc.direction)
			if got != tc.expected {
				t.Errorf("LineIdentity(%q, %q) = %q, expected %q", tc.code, tc.direction, got, tc.expected)
			}
			if again := LineIdentity(tc.code, tc.direction); again != got {
				t.Errorf("LineIdentity is not deterministic: %q then %q", got, again)
			}
		})
	}
}

func TestLineIdentityDistinct(t *testing.T) {
	pairs := [][2]string{{"BL", "1"}, {"BL", "2"}, {"OR", "1"}, {"OR", "2"}, {"SV", "1"}}
	seen := make(map[string][2]string)
	for _, p := range pairs {
		id := LineIdentity(p[0], p[1])
		if prev, ok := seen[id]; ok {
			t.Fatalf("LineIdentity collision: %v and %v both map to %q", prev, p, id)
		}
		seen[id] = p
	}
}

func TestVehicleLineID(t *testing.T) {
	v := VehiclePosition{LineCode: strPtr("RD"), Direction: "2"}
	if got := v.LineID(); got != "RD-2" {
		t.Errorf("LineID() = %q, expected RD-2", got)
	}
	v.LineCode = nil
	if got := v.LineID(); got != "" {
		t.Errorf("LineID() without line code = %q, expected empty", got)
	}
}
