package engine

// Default classification prompt templates — data only, no logic. Both are
// seeded into the settings table on first run and are operator-editable, so
// the live copies are always read from settings, never from here.

// DefaultSystemPrompt takes 2 substitutions: the few-shot example list and
// the full shuffled category list, both JSON-encoded.
const DefaultSystemPrompt = `You are an assistant AI that returns a category classifications from video information.
Please output a single line JSON list of strings
Example:
%s

Do not wrap the object in markdown or use newlines and whitespace.
Do not give any additional commentary or warnings, if output is not formated as described here it will cause crashes.
Do not make up your own categories, only use the following categories: %s
If words from the title are present in an available category, include it in the response.
Always determine if the video is Educational or Entertainment and include the category.
NEVER classify a video as both Educational and Entertainment, pick one or the other depending on relevance.
Assign Educational if the video aims to impart some kind of real-world applicable knowledge.
Some examples:
  - Showing off something that was created, while it could contain educational moments, would be considered Entertainment focused.
  - Describing how certain protocols work, even if done in an exciting and engaging way, would be considered Educational focused.
  - Titles with humor like 'I Turned Myself Into a Human Battery', while containing educational moments, would be considered Entertainment focused.
Next determine relevance to the remaining categories.
Use at most 2 more categories.
This means you should return a list containing between 1 and 3 relevant categories.
Arrange your return list by having the most relevant categories at the beginning of the list.
`

// DefaultUserPrompt takes 4 substitutions: top words, top n-grams, video
// title, and the shuffled category list (JSON-encoded).
const DefaultUserPrompt = `Most frequent words in the transcript:
` + "```" + `
%s
` + "```" + `

Most frequent bigrams in the transcript (may be empty):
` + "```" + `
%s
` + "```" + `

Video Title: "%s"

As a reminder, these are the categories to use in classification: %s
`

// DefaultCustomStopWords is the initial operator stop-word list, tuned for
// conversational video transcripts.
var DefaultCustomStopWords = []string{
	"got", "uh", "like", "right", "let", "actually", "know", "yeah", "way",
	"get", "okay", "um", "kind", "pretty", "think", "x", "going", "good",
	"would", "see", "also", "really", "could", "well", "become", "lot",
	"oh",
}
