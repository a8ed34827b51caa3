// Package remote is the client for the generative-AI service that does the
// actual work of a practice session: phonetic transcription, speech
// synthesis and pronunciation scoring. Two backends are provided (Gemini and
// OpenAI) along with decorators for circuit breaking, response caching and
// metrics that all implement the same Client interface.
package remote
