package extraction

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoJSONArray = errors.New("no JSON array in model output")

// decodeJSONArray finds the outermost [ ... ] in model output, ignoring
// code fences and surrounding prose, and unmarshals it into dst.
func decodeJSONArray(text string, dst any) error {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return errNoJSONArray
	}
	return json.Unmarshal([]byte(text[start:end+1]), dst)
}
