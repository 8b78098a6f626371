package handlers

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/devcomfort/instructable-pcgrl/messages"
	"github.com/devcomfort/instructable-pcgrl/models"
	"github.com/devcomfort/instructable-pcgrl/network"
	"github.com/devcomfort/instructable-pcgrl/services"
)

// ClientHandler manages a single editor connection
type ClientHandler struct {
	conn          *network.Connection
	editor        *services.EditorService
	state         *services.StateService
	history       *services.HistoryService
	clientManager *ClientManager
	sessionID     string
}

// HandleClientConnection handles a new editor connection: it
// registers the session, pushes the current state, and pumps
// messages until the client disconnects
func HandleClientConnection(wsConn *websocket.Conn, editor *services.EditorService, state *services.StateService, history *services.HistoryService, clientManager *ClientManager) {
	conn := network.NewConnection(wsConn)
	handler := &ClientHandler{
		conn:          conn,
		editor:        editor,
		state:         state,
		history:       history,
		clientManager: clientManager,
		sessionID:     uuid.NewString(),
	}

	clientManager.AddClient(handler.sessionID, handler)
	log.Printf("Editor %s connected from %s", handler.shortID(), wsConn.RemoteAddr())

	// Start the write pump in a goroutine
	go conn.WritePump()

	// New sessions start from the full current state
	handler.sendState()

	// Handle the read pump in the current goroutine
	conn.ReadPump(handler)

	// Clean up when the connection is closed. Closing the wrapper
	// shuts the send queue, which stops the write pump
	conn.Close()
	clientManager.RemoveClient(handler.sessionID)
	log.Printf("Editor %s disconnected", handler.shortID())
}

// HandleMessage handles incoming messages from the client
func (h *ClientHandler) HandleMessage(conn *network.Connection, message []byte) {
	var baseMsg messages.BaseMessage
	if err := json.Unmarshal(message, &baseMsg); err != nil {
		log.Printf("Editor %s sent an unreadable message: %v", h.shortID(), err)
		h.sendError("INVALID_MESSAGE", "message is not valid JSON")
		return
	}

	switch baseMsg.Type {
	case messages.MessageTypeEdit:
		h.handleEdit(baseMsg.Payload)
	case messages.MessageTypeUndo:
		h.handleUndo()
	case messages.MessageTypeRedo:
		h.handleRedo()
	case messages.MessageTypeCheckpoint:
		h.handleCheckpoint(baseMsg.Payload)
	case messages.MessageTypeClear:
		h.handleClear()
	case messages.MessageTypeResize:
		h.handleResize(baseMsg.Payload)
	case messages.MessageTypeSetTab:
		h.handleSetTab(baseMsg.Payload)
	case messages.MessageTypeSetRetention:
		h.handleSetRetention(baseMsg.Payload)
	case messages.MessageTypeGetShare:
		h.handleGetShare()
	case messages.MessageTypeGetHistory:
		h.handleGetHistory()
	case messages.MessageTypeChat:
		h.handleChat(baseMsg.Payload)
	default:
		log.Printf("Unknown message type: %s", baseMsg.Type)
		h.sendError("UNKNOWN_MESSAGE_TYPE", fmt.Sprintf("unknown message type %q", baseMsg.Type))
	}
}

// handleEdit applies one brush stroke
func (h *ClientHandler) handleEdit(payload interface{}) {
	var editMsg messages.EditMessage
	if err := decodePayload(payload, &editMsg); err != nil {
		h.sendError("INVALID_PAYLOAD", "edit payload is malformed")
		return
	}

	if _, err := h.editor.ApplyEdits(editMsg.Edits); err != nil {
		h.sendError("EDIT_FAILED", err.Error())
		return
	}
	// Subscribers broadcast the new state to every session
}

// handleUndo steps the shared state back one history entry
func (h *ClientHandler) handleUndo() {
	_, ok, err := h.editor.Undo()
	if err != nil {
		h.sendError("UNDO_FAILED", err.Error())
		return
	}
	if !ok {
		// Nothing to undo; resync just this client
		h.sendState()
	}
}

// handleRedo steps the shared state forward one history entry
func (h *ClientHandler) handleRedo() {
	_, ok, err := h.editor.Redo()
	if err != nil {
		h.sendError("REDO_FAILED", err.Error())
		return
	}
	if !ok {
		h.sendState()
	}
}

// handleCheckpoint rewinds to a stored snapshot
func (h *ClientHandler) handleCheckpoint(payload interface{}) {
	var checkpointMsg messages.CheckpointMessage
	if err := decodePayload(payload, &checkpointMsg); err != nil {
		h.sendError("INVALID_PAYLOAD", "checkpoint payload is malformed")
		return
	}

	if _, err := h.editor.LoadCheckpoint(checkpointMsg.Cursor); err != nil {
		h.sendError("CHECKPOINT_FAILED", err.Error())
		return
	}
}

// handleClear resets the map as one undoable edit
func (h *ClientHandler) handleClear() {
	if _, err := h.editor.ClearMap(); err != nil {
		h.sendError("CLEAR_FAILED", err.Error())
	}
}

// handleResize replaces the map with a fresh one of a new shape
func (h *ClientHandler) handleResize(payload interface{}) {
	var resizeMsg messages.ResizeMessage
	if err := decodePayload(payload, &resizeMsg); err != nil {
		h.sendError("INVALID_PAYLOAD", "resize payload is malformed")
		return
	}

	shape := models.GridShape{Rows: resizeMsg.Rows, Cols: resizeMsg.Cols}
	if _, err := h.editor.Resize(shape); err != nil {
		h.sendError("RESIZE_FAILED", err.Error())
		return
	}
}

// handleSetTab switches the active editor panel
func (h *ClientHandler) handleSetTab(payload interface{}) {
	var tabMsg messages.SetTabMessage
	if err := decodePayload(payload, &tabMsg); err != nil {
		h.sendError("INVALID_PAYLOAD", "set_tab payload is malformed")
		return
	}

	if err := h.state.SetActiveTab(models.UITab(tabMsg.Tab)); err != nil {
		h.sendError("SET_TAB_FAILED", err.Error())
		return
	}

	// Tab changes do not touch the map, so broadcast explicitly
	h.clientManager.BroadcastToAll(NewStateMessage(h.state.Map(), h.state, h.history))
}

// handleSetRetention adjusts the history retention limit
func (h *ClientHandler) handleSetRetention(payload interface{}) {
	var retentionMsg messages.SetRetentionMessage
	if err := decodePayload(payload, &retentionMsg); err != nil {
		h.sendError("INVALID_PAYLOAD", "set_retention payload is malformed")
		return
	}

	if err := h.history.SetMaxLength(retentionMsg.MaxLength); err != nil {
		h.sendError("SET_RETENTION_FAILED", err.Error())
		return
	}

	log.Printf("Editor %s set history retention to %d", h.shortID(), retentionMsg.MaxLength)
	h.clientManager.BroadcastToAll(NewStateMessage(h.state.Map(), h.state, h.history))
}

// handleGetShare replies with the share-link fragment for the
// current state
func (h *ClientHandler) handleGetShare() {
	fragment, err := h.state.Fragment()
	if err != nil {
		h.sendError("SHARE_FAILED", err.Error())
		return
	}

	msg := messages.BaseMessage{
		Type:    messages.MessageTypeShare,
		Payload: messages.ShareMessage{Fragment: fragment},
	}
	if err := h.conn.SendMessage(msg); err != nil {
		log.Printf("Error sending share fragment: %v", err)
	}
}

// handleGetHistory replies with every stored snapshot for the
// checkpoint picker
func (h *ClientHandler) handleGetHistory() {
	msg := messages.BaseMessage{
		Type: messages.MessageTypeHistory,
		Payload: messages.HistoryMessage{
			Entries: h.history.Entries(),
			Cursor:  h.history.Cursor(),
		},
	}
	if err := h.conn.SendMessage(msg); err != nil {
		log.Printf("Error sending history list: %v", err)
	}
}

// handleChat relays a chat line to every other editor and echoes it
// back to the sender
func (h *ClientHandler) handleChat(payload interface{}) {
	var chatMsg messages.ChatMessage
	if err := decodePayload(payload, &chatMsg); err != nil {
		h.sendError("INVALID_PAYLOAD", "chat payload is malformed")
		return
	}
	if chatMsg.Text == "" {
		h.sendError("INVALID_PAYLOAD", "chat payload needs text")
		return
	}

	// Set sender to this session
	chatMsg.Sender = h.shortID()

	msg := messages.BaseMessage{
		Type:    messages.MessageTypeChat,
		Payload: chatMsg,
	}
	h.clientManager.BroadcastToOthers(h.sessionID, msg)
	if err := h.conn.SendMessage(msg); err != nil {
		log.Printf("Error echoing chat to sender: %v", err)
	}
}

// sendState pushes the full current state to this client
func (h *ClientHandler) sendState() {
	msg := NewStateMessage(h.state.Map(), h.state, h.history)
	if err := h.conn.SendMessage(msg); err != nil {
		log.Printf("Error sending state: %v", err)
	}
}

// sendError reports a rejected request back to this client
func (h *ClientHandler) sendError(code, message string) {
	errMsg := messages.BaseMessage{
		Type: messages.MessageTypeError,
		Payload: messages.ErrorMessage{
			Code:    code,
			Message: message,
		},
	}
	h.conn.SendMessage(errMsg)
}

// shortID returns the session id prefix used in logs and chat
func (h *ClientHandler) shortID() string {
	if len(h.sessionID) < 8 {
		return h.sessionID
	}
	return h.sessionID[:8]
}

// NewStateMessage assembles the state snapshot sent to clients: the
// given map plus one consistent reading of the history's shape
func NewStateMessage(m models.GridMap, state *services.StateService, history *services.HistoryService) messages.BaseMessage {
	status := history.Status()
	return messages.BaseMessage{
		Type: messages.MessageTypeState,
		Payload: messages.StateMessage{
			Map:       m,
			ActiveTab: string(state.ActiveTab()),
			Cursor:    status.Cursor,
			Length:    status.Length,
			MaxLength: status.MaxLength,
			CanUndo:   status.CanUndo,
			CanRedo:   status.CanRedo,
			Legend:    models.Legend(),
		},
	}
}

// decodePayload re-marshals the loosely typed payload into out. The
// JSON round trip also rejects fractional numbers aimed at integer
// fields
func decodePayload(payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
