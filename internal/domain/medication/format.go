package medication

import "strings"

// FormatForNote renders medications one per line in their current order.
// Discontinued medications are prefixed with "(X)".
func FormatForNote(meds []Medication, lang string) string {
	if len(meds) == 0 {
		if lang == LangFrench {
			return "Aucun médicament."
		}
		return "No medications."
	}

	lines := make([]string, 0, len(meds))
	for _, m := range meds {
		parts := []string{m.Name}
		if m.Dosage != "" {
			parts = append(parts, m.Dosage)
		}
		if m.Frequency != "" {
			parts = append(parts, m.Frequency)
		}
		line := strings.Join(parts, " ")
		if m.IsDiscontinued {
			line = "(X) " + line
		}
		lines = append(lines, "- "+line)
	}
	return strings.Join(lines, "\n")
}
