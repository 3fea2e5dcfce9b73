package types

import "github.com/DoyleJ11/dicegame/internal/lobby"

const (
	MsgGetView      = "GetView"
	MsgViewSnapshot = "ViewSnapshot"
	MsgError        = "Error"
)

type ClientMessage struct {
	Type string `json:"type"` // "GetView"
}

type ServerMessage struct {
	Type    string      `json:"type"` // "ViewSnapshot" | "Error"
	Version int         `json:"version,omitempty"`
	View    *lobby.View `json:"view,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func Snapshot(snap lobby.Snapshot) ServerMessage {
	v := snap.View
	return ServerMessage{Type: MsgViewSnapshot, Version: snap.Version, View: &v}
}

func ErrorMessage(msg string) ServerMessage {
	return ServerMessage{Type: MsgError, Error: msg}
}
