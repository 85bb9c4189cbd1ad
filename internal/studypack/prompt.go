package studypack

import "fmt"

// BuildPrompt embeds the transcript verbatim together with the exact output
// schema the parser expects. The schema instruction and the parser must stay
// in lockstep.
func BuildPrompt(transcript string) string {
	return fmt.Sprintf(`You are an academic assistant AI. Based on the lecture transcript below,
create a JSON with these exact keys:
{
  "notes": "Concise and clear summary in markdown (max 400 words)",
  "flashcards": [
    {"q": "Question1", "a": "Answer1"},
    {"q": "Question2", "a": "Answer2"}
  ],
  "quiz": [
    {"question": "Question text", "options": ["Option A", "Option B", "Option C", "Option D"], "answer": "Option A"}
  ]
}
Generate **exactly 5 quiz questions**, each with 4 distinct options (A-D).
The "answer" value must match one of the options word for word.
Make the notes comprehensive and detailed, extracting all key concepts from the lecture.
Transcript: %s`, transcript)
}
