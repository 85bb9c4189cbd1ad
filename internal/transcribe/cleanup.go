package transcribe

import "strings"

// CollapseRepeats removes stutter/artifact repetition from raw transcription
// output: runs of 3 or more consecutive case-insensitive-identical tokens are
// collapsed to 2 occurrences. Non-repeating tokens are never touched. This is
// a lossy heuristic, not a language model — it fixes repetition artifacts only.
func CollapseRepeats(text string) string {
	words := strings.Fields(text)
	cleaned := make([]string, 0, len(words))
	prev := ""
	repeats := 0

	for _, w := range words {
		if prev != "" && strings.EqualFold(w, prev) {
			repeats++
			if repeats < 2 {
				cleaned = append(cleaned, w)
			}
		} else {
			cleaned = append(cleaned, w)
			repeats = 0
		}
		prev = w
	}

	return strings.Join(cleaned, " ")
}

// Clean applies CollapseRepeats, falling back to the raw text if cleanup
// would yield an empty string. A non-empty transcript is never erased.
func Clean(raw string) string {
	cleaned := CollapseRepeats(raw)
	if cleaned == "" {
		return raw
	}
	return cleaned
}
