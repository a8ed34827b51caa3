package remote

import (
	"fmt"

	"codeberg.org/snonux/accentcoach/internal/voice"
)

const transcribeSystem = "You are an English pronunciation coach. You produce precise broad IPA transcriptions of connected speech for language learners."

func transcribePrompt(text string) string {
	return fmt.Sprintf(`Transcribe the following English text word by word, in the order the words appear.
For every word give:
- "word": the word exactly as written (keep punctuation attached to the word)
- "ipa": its IPA transcription as it would be said in this sentence, with stress marks
- "linksToNext": true if it links into the following word in fluent speech
- "linkingType": the kind of link when linked, e.g. "consonant-vowel", "linking r", "intrusive j", "intrusive w", "elision"
- "isReduced": true if it is said in its weak (reduced) form

Text: %q`, text)
}

// transcribeJSONPrompt asks for an object wrapper, required by JSON mode
// chat APIs that cannot return a top level array.
func transcribeJSONPrompt(text string) string {
	return transcribePrompt(text) + `

Answer with a JSON object of the form {"words": [ ... ]} and nothing else.`
}

func synthesisPrompt(text string, s voice.Settings) string {
	return fmt.Sprintf("%s Say exactly: %s", s.Instruction(), text)
}

const evaluateSystem = "You are an English pronunciation examiner. You score a learner's recording of a given sentence and give short, concrete advice."

func evaluatePrompt(text string) string {
	return fmt.Sprintf(`The learner was asked to read this text aloud: %q

Listen to the attached recording and score it from 0 to 100 on:
- pronunciation: individual sounds and word stress
- prosody: intonation and sentence stress
- fluency: smoothness and pace
- chunking: grouping words into thought groups with natural pauses
- expressiveness: conveying meaning and emotion

Give an overallScore from 0 to 100, one sentence of overallAdvice and for every
dimension a score and one or two sentences of advice.`, text)
}

// evaluateTranscriptPrompt scores from a speech-to-text transcript when the
// chat model cannot listen to audio itself.
func evaluateTranscriptPrompt(text, heard string) string {
	return fmt.Sprintf(`The learner was asked to read this text aloud: %q
A speech recognizer heard: %q

Judge from the differences how well the learner pronounced the text. Score it
from 0 to 100 on pronunciation, prosody, fluency, chunking and expressiveness.

Answer with a JSON object and nothing else:
{"overallScore": int, "overallAdvice": string,
 "pronunciation": {"score": int, "advice": string},
 "prosody": {"score": int, "advice": string},
 "fluency": {"score": int, "advice": string},
 "chunking": {"score": int, "advice": string},
 "expressiveness": {"score": int, "advice": string}}`, text, heard)
}
