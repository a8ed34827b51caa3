// Package evaluation models the scored feedback for one recorded attempt:
// an overall score plus per-dimension scores and advice, or a plain
// advisory text when the model answers without structure.
package evaluation
