package lab

import "testing"

func TestIsPlausible(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"Hemoglobin", "140", true},
		{"Hemoglobin", "14", false},
		{"Hemoglobin", "abc", false},
		{"Hematocrit", "0.42", true},
		{"Hematocrit", "42", true},
		{"Hematocrit", "80", false},
		{"Potassium", "4.1", true},
		{"Potassium", "41", false},
		{"Sodium", "139 H", true},
		{"CRP", "0", true},
		{"Troponin", "anything", true},
	}
	for _, tt := range tests {
		if got := IsPlausible(tt.name, tt.value); got != tt.want {
			t.Errorf("IsPlausible(%q, %q) = %v, want %v", tt.name, tt.value, got, tt.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.5", 12.5, true},
		{" 7 ", 7, true},
		{"140g/L", 140, true},
		{".5", 0.5, true},
		{"-2", -2, true},
		{"x1", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
