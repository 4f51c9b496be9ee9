package price

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$249.99", 249.99, true},
		{"€120", 120, true},
		{"150 USD", 150, true},
		{"1,250.00", 1250, true},
		{"1.250,00", 1250, true},
		{"100,50", 100.5, true},
		{"1,250", 1250, true},
		{"12,5", 12.5, true},
		{"0", 0, true},
		{"-5", -5, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"free", 0, false},
		{"...", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("Parse(%q) = %g, want %g", tt.in, got, tt.want)
			}
		})
	}
}
