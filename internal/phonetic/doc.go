// Package phonetic holds the per-word phonetic breakdown returned by the
// remote transcription service: IPA strings plus linking and reduction
// markers for connected speech, and helpers to decode and render them.
package phonetic
