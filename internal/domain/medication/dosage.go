package medication

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingAmount = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	firstUnit     = regexp.MustCompile(`([a-zA-Z]+)`)
	doseWithUnit  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(mg|mcg|g|IU|ml|units?)`)
)

// CalculateTotalDosage multiplies the strength in dosage by the unit count
// found in quantity ("2 comprimés", "½ comprimé"). Combination strengths such
// as "875mg+125mg" are returned unchanged.
func CalculateTotalDosage(dosage, quantity string) string {
	if strings.Contains(dosage, "+") {
		return dosage
	}

	var value float64
	if m := leadingAmount.FindStringSubmatch(dosage); m != nil {
		value, _ = strconv.ParseFloat(m[1], 64)
	}
	unit := ""
	if m := firstUnit.FindStringSubmatch(dosage); m != nil {
		unit = m[1]
	}

	return formatAmount(value*unitCount(quantity)) + unit
}

func unitCount(quantity string) float64 {
	switch {
	case strings.Contains(quantity, "½"), strings.Contains(quantity, "0.5"):
		return 0.5
	case strings.Contains(quantity, "2"):
		return 2
	case strings.Contains(quantity, "3"):
		return 3
	case strings.Contains(quantity, "4"):
		return 4
	case strings.Contains(quantity, "5"):
		return 5
	}
	return 1
}

// ScaleDose multiplies the first "<amount> <unit>" in dosage by a decimal
// quantity and returns "<total> <unit>". The dosage is returned unchanged
// when quantity is empty, "1", not a positive number, or when no amount with
// a recognised unit is found.
func ScaleDose(dosage, quantity string) string {
	quantity = strings.TrimSpace(quantity)
	if quantity == "" || quantity == "1" {
		return dosage
	}
	q, err := strconv.ParseFloat(quantity, 64)
	if err != nil || q <= 0 {
		return dosage
	}
	m := doseWithUnit.FindStringSubmatch(dosage)
	if m == nil {
		return dosage
	}
	base, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return dosage
	}
	return formatTotal(base*q) + " " + m[2]
}

// formatTotal renders whole numbers without decimals and everything else
// with at most two, trailing zeros removed.
func formatTotal(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
