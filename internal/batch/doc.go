// Package batch reads practice sentences from a text file
package batch
