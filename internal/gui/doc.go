// Package gui provides the desktop practice window built with fyne. All
// state lives in a session.Controller; the window subscribes to it and
// redraws labels, buttons and panels from each snapshot.
package gui
