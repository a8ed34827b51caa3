// Package models provides functionality for listing and categorizing
// the models of the configured remote service. It helps users discover
// which speech, transcription and text models their API key can use.
package models
