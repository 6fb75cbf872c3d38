package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/rooms"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLoggedIn MsgKind = iota
	MsgLoggedOut
	MsgProfileFetched
	MsgStateChanged
	MsgCodeReady
	MsgCompared
	MsgChecked
	MsgCopied
)

type result[T any] struct {
	value T
	err   error
}

// loggedInMsg is the constructor for [MsgLoggedIn]
func loggedInMsg(err error) Msg {
	return Msg{kind: MsgLoggedIn, data: err}
}

// loggedOutMsg is the constructor for [MsgLoggedOut]; forced is set when the session ended on its own.
func loggedOutMsg(forced bool) Msg {
	return Msg{kind: MsgLoggedOut, data: forced}
}

// profileFetchedMsg is the constructor for [MsgProfileFetched]
func profileFetchedMsg(profile *models.Profile, err error) Msg {
	return Msg{kind: MsgProfileFetched, data: result[*models.Profile]{profile, err}}
}

// stateChangedMsg is the constructor for [MsgStateChanged]
func stateChangedMsg(state rooms.State) Msg {
	return Msg{kind: MsgStateChanged, data: state}
}

// codeReadyMsg is the constructor for [MsgCodeReady]
func codeReadyMsg(code models.RoomCode, err error) Msg {
	return Msg{kind: MsgCodeReady, data: result[models.RoomCode]{code, err}}
}

// comparedMsg is the constructor for [MsgCompared]
func comparedMsg(c *models.Comparison, err error) Msg {
	return Msg{kind: MsgCompared, data: result[*models.Comparison]{c, err}}
}

// checkedMsg is the constructor for [MsgChecked]
func checkedMsg(check *models.RoomCheck, err error) Msg {
	return Msg{kind: MsgChecked, data: result[*models.RoomCheck]{check, err}}
}

// copiedMsg is the constructor for [MsgCopied]
func copiedMsg(err error) Msg {
	return Msg{kind: MsgCopied, data: err}
}
