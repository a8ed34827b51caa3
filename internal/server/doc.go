// Package server exposes the practice session over HTTP. Stateless JSON
// endpoints wrap the remote client directly; /ws/session runs one
// session.Controller per websocket connection, fed by microphone chunks
// from the browser.
package server
