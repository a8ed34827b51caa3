// Package audio provides the device side of a practice session: capturing
// a take from the microphone, decoding synthesized PCM into a playable
// buffer and playing it through the platform's audio tools.
package audio
