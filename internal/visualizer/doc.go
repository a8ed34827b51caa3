// Package visualizer turns live microphone chunks into byte-valued
// frequency bins and redraws them at a fixed frame rate while a recording
// is running. Nothing it computes is fed back into the session.
package visualizer
