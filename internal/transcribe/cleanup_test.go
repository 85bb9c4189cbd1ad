package transcribe

import (
	"strings"
	"testing"
)

func TestCollapseRepeats(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"no_repeats", "the quick brown fox", "the quick brown fox"},
		{"single_repeat_kept", "very very good", "very very good"},
		{"triple_collapsed_to_two", "the the the cell", "the the cell"},
		{"long_run_collapsed_to_two", "um um um um um okay", "um um okay"},
		{
			"stutter_example",
			"the the the cell cell cell membrane is is semi permeable",
			"the the cell cell membrane is is semi permeable",
		},
		{"case_insensitive_match", "The the THE membrane", "The the membrane"},
		{"whitespace_normalized", "one   two\t three\nfour", "one two three four"},
		{"separated_duplicates_untouched", "to be or not to be", "to be or not to be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CollapseRepeats(tt.in); got != tt.want {
				t.Errorf("CollapseRepeats(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCollapseRepeatsNeverLeavesLongRuns(t *testing.T) {
	inputs := []string{
		"a a a a a a a a",
		"word Word WORD word b b B c",
		"x y x y x x x y y y y",
	}
	for _, in := range inputs {
		out := CollapseRepeats(in)
		words := strings.Fields(out)
		run := 1
		for i := 1; i < len(words); i++ {
			if strings.EqualFold(words[i], words[i-1]) {
				run++
			} else {
				run = 1
			}
			if run > 2 {
				t.Errorf("CollapseRepeats(%q) = %q: run of %d identical tokens", in, out, run)
			}
		}
	}
}

func TestCollapseRepeatsKeepsNonRepeating(t *testing.T) {
	in := "photosynthesis converts light energy into chemical energy"
	if got := CollapseRepeats(in); got != in {
		t.Errorf("CollapseRepeats changed non-repeating input: %q", got)
	}
}

func TestCleanFallsBackToRaw(t *testing.T) {
	// CollapseRepeats yields "" only for whitespace-only input; Clean must
	// still hand back the raw text rather than an empty transcript.
	raw := "   "
	if got := Clean(raw); got != raw {
		t.Errorf("Clean(%q) = %q, want raw fallback", raw, got)
	}

	if got := Clean("hello hello hello"); got != "hello hello" {
		t.Errorf("Clean = %q, want %q", got, "hello hello")
	}
}
