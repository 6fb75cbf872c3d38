// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI follows the room pairing flow:
//  1. [LandingView] : Log in through the browser
//  2. [RoomView] : Share your room code and type a friend's
//  3. [ComparingView] : Wait for the service to compare both libraries
//  4. [ResultView] : Browse the songs only you, only they, or both of you like
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// State changes flow through the [rooms.Machine] update channel, and a forced logout arrives through the navigator's
// home signal, so the view follows the machine without polling.
//
// While idle, letters and digits are room code input; other actions use control keys. Contextual help is displayed via
// charmbracelet/bubbles/help.
package ui
