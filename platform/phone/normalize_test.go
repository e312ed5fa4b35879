package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"national format", "(608) 555-0134", "+16085550134"},
		{"dashed", "608-555-0134", "+16085550134"},
		{"already e164", "+16085550134", "+16085550134"},
		{"invalid kept as-is", "not-a-number", "not-a-number"},
		{"too short kept as-is", "12345", "12345"},
		{"empty", "", ""},
		{"whitespace trimmed", "  608 555 0134  ", "+16085550134"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeE164(tc.input)
			if got != tc.want {
				t.Errorf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
