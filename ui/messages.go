package ui

import (
	"datui/model"
	"datui/storage"
	"datui/turn"
)

// turnUpdateMsg carries a snapshot of the in-progress assistant message.
type turnUpdateMsg struct {
	Snapshot model.Message
}

// turnDoneMsg signals the turn finished with its final outcome.
type turnDoneMsg struct {
	Outcome turn.Outcome
}

// modelsListMsg carries the provider's model list for the selector.
type modelsListMsg struct {
	Models []model.ModelInfo
	Err    error
}

// sessionsListMsg carries stored sessions for the session picker.
type sessionsListMsg struct {
	Sessions []storage.SessionMetadata
}

// attachmentLoadedMsg reports the result of a /load command.
type attachmentLoadedMsg struct {
	Descriptor string
	Err        error
}

// infoMsg adds a dim one-line notice to the transcript.
type infoMsg struct {
	Text string
}

// errMsg adds an error notice to the transcript.
type errMsg struct {
	Err error
}
