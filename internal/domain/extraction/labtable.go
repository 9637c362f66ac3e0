package extraction

import (
	"regexp"
	"strings"

	"github.com/clinote/clinote/internal/domain/lab"
)

// labCode describes a column code printed in the hospital lab table.
type labCode struct {
	Name     string
	Unit     string
	Category string
}

var labCodes = map[string]labCode{
	"Hb":    {"Hemoglobin", "g/L", "CBC"},
	"Hte":   {"Hematocrit", "%", "CBC"},
	"VGM":   {"MCV", "fL", "CBC"},
	"GB":    {"WBC", "10^9/L", "CBC"},
	"Plt":   {"Platelets", "10^9/L", "CBC"},
	"CRP":   {"CRP", "mg/L", "Inflammatory"},
	"TP":    {"PT", "s", "Coagulation"},
	"RNI":   {"INR", "", "Coagulation"},
	"TTPa":  {"aPTT", "s", "Coagulation"},
	"Fibri": {"Fibrinogen", "g/L", "Coagulation"},
	"Alb":   {"Albumin", "g/L", "Chemistry"},
	"Na":    {"Sodium", "mmol/L", "Chemistry"},
	"K":     {"Potassium", "mmol/L", "Chemistry"},
	"Cl":    {"Chloride", "mmol/L", "Chemistry"},
}

var (
	tableDateLine = regexp.MustCompile(`^\d{6}(\s+\d{4})?$`)
	nonLetters    = regexp.MustCompile(`[^A-Za-z]`)
)

// ParseLabTable reads the OCR text of a cumulative lab report laid out as
// one column per date. After the "Date/Heure" header the test codes appear
// one per line, then each date line is followed by one value line per code.
// Non-numeric and implausible values are dropped.
func ParseLabTable(text string) []lab.Reading {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	header := -1
	for i, l := range lines {
		if strings.Contains(strings.ToLower(l), "date/heure") {
			header = i
			break
		}
	}
	if header < 0 {
		return []lab.Reading{}
	}

	i := header + 1
	var codes []string
	for ; i < len(lines) && !tableDateLine.MatchString(lines[i]); i++ {
		candidate := nonLetters.ReplaceAllString(lines[i], "")
		if _, ok := labCodes[candidate]; ok {
			codes = append(codes, candidate)
		}
	}
	if len(codes) == 0 {
		return []lab.Reading{}
	}

	readings := []lab.Reading{}
	for i < len(lines) {
		if !tableDateLine.MatchString(lines[i]) {
			i++
			continue
		}
		date := strings.Fields(lines[i])[0]

		j := 1
		var values []string
		for j <= len(codes) && i+j < len(lines) && !tableDateLine.MatchString(lines[i+j]) {
			values = append(values, lines[i+j])
			j++
		}

		for k := 0; k < len(codes) && k < len(values); k++ {
			value := normalizeCell(values[k])
			if _, ok := lab.ParseNumber(value); !ok {
				continue
			}
			info := labCodes[codes[k]]
			if !lab.IsPlausible(info.Name, value) {
				continue
			}
			readings = append(readings, lab.Reading{
				TestName:  info.Name,
				Value:     value,
				Unit:      info.Unit,
				Category:  info.Category,
				Timestamp: date,
			})
		}
		i += j
	}
	return readings
}

// normalizeCell turns a French decimal comma into a point and drops the
// abnormal-result markers the report prints next to values.
func normalizeCell(v string) string {
	v = strings.Replace(v, ",", ".", 1)
	v = strings.Replace(v, "!", "", 1)
	return strings.TrimSpace(strings.Replace(v, ">", "", 1))
}
