package lab

import (
	"regexp"
	"strconv"
	"strings"
)

// plausibleRanges bounds the values OCR is allowed to report, keyed by
// display name.
var plausibleRanges = map[string][2]float64{
	"Hemoglobin": {30, 250},
	"Hematocrit": {0.15, 0.65},
	"MCV":        {60, 130},
	"WBC":        {1, 50},
	"Platelets":  {10, 1000},
	"CRP":        {0, 500},
	"PT":         {5, 60},
	"INR":        {0.5, 10},
	"aPTT":       {10, 200},
	"Fibrinogen": {0.5, 10},
	"Albumin":    {10, 60},
	"Sodium":     {100, 170},
	"Potassium":  {2, 8},
	"Chloride":   {60, 130},
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// ParseNumber reads the numeric prefix of s, ignoring anything after it.
func ParseNumber(s string) (float64, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsPlausible reports whether rawValue is a believable result for the test
// with the given display name. Tests without a known range always pass.
func IsPlausible(displayName, rawValue string) bool {
	rng, ok := plausibleRanges[displayName]
	if !ok {
		return true
	}
	v, ok := ParseNumber(rawValue)
	if !ok {
		return false
	}
	if displayName == "Hematocrit" && v > 1.0 {
		v /= 100
	}
	return v >= rng[0] && v <= rng[1]
}
