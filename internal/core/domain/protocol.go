package domain

import "encoding/json"

const (
	TypeMessageSend = "message:send"
	TypeMessageAck  = "message:ack"
	TypeMessageNew  = "message:new"
	TypeMessageRead = "message:read"
	TypeTypingStart = "typing:start"
	TypeTypingStop  = "typing:stop"
	TypePresenceGet = "presence:get"
	TypePresence    = "presence:update"
	TypeError       = "error"
)

// Frame is the envelope for every event on the wire. Data holds the
// type-specific payload and is decoded by the gateway.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SendRequest is the client payload of message:send.
type SendRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid4"`
	Content    string `json:"content" validate:"required,max=1000"`
}

// SendAck is returned to the sender for every message:send. On success
// Message carries the final persisted status.
type SendAck struct {
	Type    string   `json:"type"` // always "message:ack"
	OK      bool     `json:"ok"`
	Message *Message `json:"message,omitempty"`
	Code    string   `json:"code,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// MessageEvent carries a freshly dispatched message to both endpoints.
type MessageEvent struct {
	Type    string  `json:"type"` // "message:new"
	Message Message `json:"message"`
}

// TypingRequest is the client payload of typing:start / typing:stop.
type TypingRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
}

// TypingEvent is relayed to the receiving endpoint.
type TypingEvent struct {
	Type       string `json:"type"` // "typing:start" or "typing:stop"
	FromUserID string `json:"from_user_id"`
}

// ReadRequest is the client payload of message:read: the reader declares the
// conversation with FromUserID as caught up.
type ReadRequest struct {
	FromUserID string `json:"from_user_id" validate:"required"`
}

// ReadEvent notifies the original sender that their messages were read.
type ReadEvent struct {
	Type     string `json:"type"` // "message:read"
	ByUserID string `json:"by_user_id"`
}

// PresenceEvent carries the online set, broadcast after every registry
// mutation and returned for presence:get.
type PresenceEvent struct {
	Type          string   `json:"type"` // "presence:update"
	OnlineUserIDs []string `json:"online_user_ids"`
}

// ErrorEvent is a WS-safe error sent only to the offending connection.
type ErrorEvent struct {
	Type    string `json:"type"` // "error"
	Code    string `json:"code"`
	Message string `json:"message"`
}
