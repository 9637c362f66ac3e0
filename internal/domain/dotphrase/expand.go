package dotphrase

import (
	"regexp"
	"strings"
	"time"
)

type TokenKind string

const (
	KindChoice TokenKind = "choice"
	KindDate   TokenKind = "date"
)

// Token is one [[...]] span in phrase content. Start and End are byte
// offsets with End exclusive.
type Token struct {
	Kind    TokenKind `json:"kind"`
	Start   int       `json:"start"`
	End     int       `json:"end"`
	Options []string  `json:"options,omitempty"`
}

var tokenPattern = regexp.MustCompile(`\[\[(.*?)\]\]`)

// ParseTokens lists the substitution spans in content in order. [[DATE]]
// is a date token; anything else is a choice between its |-separated
// options, which may be empty.
func ParseTokens(content string) []Token {
	matches := tokenPattern.FindAllStringSubmatchIndex(content, -1)
	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		inner := content[m[2]:m[3]]
		t := Token{Start: m[0], End: m[1]}
		if inner == "DATE" {
			t.Kind = KindDate
		} else {
			t.Kind = KindChoice
			t.Options = strings.Split(inner, "|")
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// Expand substitutes every token. choices[i] picks the option of the i-th
// choice span; a missing or out-of-range index picks the first option.
// Date tokens become now as YYYY-MM-DD and do not consume a choice.
func Expand(content string, choices []int, now time.Time) string {
	var sb strings.Builder
	last, span := 0, 0
	for _, t := range ParseTokens(content) {
		sb.WriteString(content[last:t.Start])
		if t.Kind == KindDate {
			sb.WriteString(now.Format("2006-01-02"))
		} else {
			pick := 0
			if span < len(choices) && choices[span] >= 0 && choices[span] < len(t.Options) {
				pick = choices[span]
			}
			sb.WriteString(t.Options[pick])
			span++
		}
		last = t.End
	}
	sb.WriteString(content[last:])
	return sb.String()
}
