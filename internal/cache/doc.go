// Package cache stores remote responses in a local SQLite database so that
// repeated transcriptions and syntheses of the same text do not hit the
// remote service again.
package cache
