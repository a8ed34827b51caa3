// Package session holds the practice session state controller. It owns the
// current text, the phonetic breakdown, the evaluation and the voice settings,
// and sequences transcription, synthesis, recording and evaluation against a
// remote client. Every state change goes through a single transition function.
package session
