package messages

import "github.com/devcomfort/instructable-pcgrl/models"

// MessageType defines the type of message being sent
type MessageType string

// Messages sent by editor clients
const (
	MessageTypeEdit         MessageType = "edit"
	MessageTypeUndo         MessageType = "undo"
	MessageTypeRedo         MessageType = "redo"
	MessageTypeCheckpoint   MessageType = "checkpoint"
	MessageTypeClear        MessageType = "clear"
	MessageTypeResize       MessageType = "resize"
	MessageTypeSetTab       MessageType = "set_tab"
	MessageTypeSetRetention MessageType = "set_retention"
	MessageTypeGetShare     MessageType = "get_share"
	MessageTypeGetHistory   MessageType = "get_history"
	MessageTypeChat         MessageType = "chat"
)

// Messages sent by the server
const (
	MessageTypeState   MessageType = "state"
	MessageTypeHistory MessageType = "history"
	MessageTypeShare   MessageType = "share"
	MessageTypeError   MessageType = "error"
)

// BaseMessage is the base structure for all messages
type BaseMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// EditMessage carries the cells changed by one discrete user edit,
// such as a finished brush stroke
type EditMessage struct {
	Edits []models.CellEdit `json:"edits"`
}

// CheckpointMessage selects a history entry to rewind to
type CheckpointMessage struct {
	Cursor int `json:"cursor"`
}

// ResizeMessage requests a fresh map with new dimensions
type ResizeMessage struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// SetTabMessage selects the active editor panel
type SetTabMessage struct {
	Tab string `json:"tab"`
}

// SetRetentionMessage adjusts how many history entries are kept
type SetRetentionMessage struct {
	MaxLength int `json:"maxLength"`
}

// ChatMessage relays free-form text between connected editors
type ChatMessage struct {
	Sender string `json:"sender,omitempty"`
	Text   string `json:"text"`
}

// StateMessage mirrors the full editor state to clients
type StateMessage struct {
	Map       models.GridMap    `json:"map"`
	ActiveTab string            `json:"activeTab"`
	Cursor    int               `json:"cursor"`
	Length    int               `json:"length"`
	MaxLength int               `json:"maxLength"`
	CanUndo   bool              `json:"canUndo"`
	CanRedo   bool              `json:"canRedo"`
	Legend    []models.TileInfo `json:"legend,omitempty"`
}

// HistoryMessage lists every stored snapshot for the checkpoint picker
type HistoryMessage struct {
	Entries []models.GridMap `json:"entries"`
	Cursor  int              `json:"cursor"`
}

// ShareMessage carries the URL fragment that restores this session
type ShareMessage struct {
	Fragment string `json:"fragment"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
