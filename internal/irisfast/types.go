package irisfast

import "fmt"

// Message is one chat event pushed by Iris over the WebSocket.
type Message struct {
	Msg    string       `json:"msg"`
	Room   string       `json:"room"`
	Sender *string      `json:"sender,omitempty"`
	JSON   *MessageJSON `json:"json,omitempty"`
}

// MessageJSON carries the raw KakaoTalk record that accompanies a message.
type MessageJSON struct {
	ID      string `json:"_id,omitempty"`
	ChatID  string `json:"chat_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Message string `json:"message,omitempty"`
	// Attachment holds mention metadata for @user messages.
	Attachment string `json:"attachment,omitempty"`
	V          string `json:"v,omitempty"`
}

// ReplyRequest is the body of POST /reply and of WebSocket reply frames.
type ReplyRequest struct {
	Type string `json:"type"`
	Room string `json:"room"`
	Data string `json:"data"`
}

// ImageReplyRequest carries a base64 encoded PNG.
type ImageReplyRequest struct {
	Type string `json:"type"`
	Room string `json:"room"`
	Data string `json:"data"`
}

type Config struct {
	BotName           string `json:"bot_name"`
	Port              int    `json:"bot_http_port"`
	PollingSpeed      int    `json:"db_polling_rate"`
	MessageRate       int    `json:"message_send_rate"`
	WebserverEndpoint string `json:"web_server_endpoint"`
}

type DecryptRequest struct {
	Data string `json:"data"`
}

type DecryptResponse struct {
	Decrypted string `json:"decrypted"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("iris api error: status=%d body=%s", e.Status, e.Body)
}

type WebSocketState int

const (
	WSStateDisconnected WebSocketState = iota
	WSStateConnecting
	WSStateConnected
	WSStateReconnecting
	WSStateFailed
)

func (s WebSocketState) String() string {
	switch s {
	case WSStateDisconnected:
		return "disconnected"
	case WSStateConnecting:
		return "connecting"
	case WSStateConnected:
		return "connected"
	case WSStateReconnecting:
		return "reconnecting"
	case WSStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
