// Package voice defines the user-selectable synthesis settings: accent,
// tone and speaking speed. Values are sent verbatim to the remote voice
// model; the only validation is enum membership.
package voice
