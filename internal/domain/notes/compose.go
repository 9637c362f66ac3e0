package notes

import (
	"strings"
	"unicode/utf8"
)

// MaxLineLength keeps composed notes under the 79-column limit of the
// receiving EMR.
const MaxLineLength = 75

// Section is one titled block of a composed note.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// WrapText wraps each line of text at MaxLineLength on word boundaries,
// prefixing every output line with indent spaces. Words longer than a line
// are split. Blank lines are kept.
func WrapText(text string, indent int) string {
	if text == "" {
		return ""
	}
	if indent < 0 || indent >= MaxLineLength {
		indent = 0
	}
	pad := strings.Repeat(" ", indent)
	width := MaxLineLength - indent

	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		out = append(out, wrapWords(words, pad, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapWords(words []string, pad string, width int) []string {
	var lines []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		lines = append(lines, pad+cur.String())
		cur.Reset()
		curLen = 0
	}

	for _, w := range words {
		for utf8.RuneCountInString(w) > width {
			if curLen > 0 {
				flush()
			}
			r := []rune(w)
			lines = append(lines, pad+string(r[:width]))
			w = string(r[width:])
		}
		n := utf8.RuneCountInString(w)
		if n == 0 {
			continue
		}
		if curLen > 0 && curLen+1+n > width {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += n
	}
	if curLen > 0 {
		flush()
	}
	return lines
}

// FormatSection renders "Title:" followed by the wrapped body.
func FormatSection(title, body string) string {
	if strings.TrimSpace(body) == "" {
		return title + ":"
	}
	return title + ":\n" + WrapText(strings.TrimRight(body, "\n"), 0)
}

// Compose renders sections separated by a blank line. Sections with neither
// title nor body are skipped; an untitled body is wrapped on its own.
func Compose(sections []Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		title := strings.TrimSpace(s.Title)
		switch {
		case title == "" && strings.TrimSpace(s.Body) == "":
			continue
		case title == "":
			parts = append(parts, WrapText(strings.TrimRight(s.Body, "\n"), 0))
		default:
			parts = append(parts, FormatSection(title, s.Body))
		}
	}
	return strings.Join(parts, "\n\n")
}
