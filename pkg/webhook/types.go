package webhook

import (
	"time"
)

// ReceiveMessage is the inbound webhook payload posted by the WhatsApp
// gateway. Only the fields the router inspects are declared; everything
// else in the payload is ignored.
type ReceiveMessage struct {
	Phone      string `json:"phone"`
	MessageID  string `json:"messageId"`
	SenderName string `json:"senderName"`
	ChatName   string `json:"chatName,omitempty"`
	FromMe     bool   `json:"fromMe,omitempty"`
	IsGroup    bool   `json:"isGroup,omitempty"`

	Text     *TextContent     `json:"text,omitempty"`
	Audio    *AudioContent    `json:"audio,omitempty"`
	Video    *VideoContent    `json:"video,omitempty"`
	Document *DocumentContent `json:"document,omitempty"`
}

// TextContent carries a plain text message body.
type TextContent struct {
	Message string `json:"message"`
}

// AudioContent carries a voice note or audio attachment.
type AudioContent struct {
	AudioURL string `json:"audioUrl"`
	MimeType string `json:"mimeType,omitempty"`
	Seconds  int    `json:"seconds,omitempty"`
}

// VideoContent carries a video attachment.
type VideoContent struct {
	VideoURL string `json:"videoUrl"`
	MimeType string `json:"mimeType,omitempty"`
	Seconds  int    `json:"seconds,omitempty"`
}

// DocumentContent carries a document attachment.
type DocumentContent struct {
	DocumentURL string `json:"documentUrl"`
	MimeType    string `json:"mimeType,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	PageCount   int    `json:"pageCount,omitempty"`
}

// Content types in classification priority order.
const (
	ContentTypeAudio    = "audio"
	ContentTypeVideo    = "video"
	ContentTypeDocument = "document"
	ContentTypeText     = "text"
)

// classifiedContent is the outcome of inspecting a message payload.
type classifiedContent struct {
	Type  string // one of the ContentType constants
	Value string // media URL, or the message body for text
}

// classify picks the message content by priority: audio wins over video,
// video over document, document over text. Returns false when the message
// carries no usable content.
func classify(msg ReceiveMessage) (classifiedContent, bool) {
	if msg.Audio != nil && msg.Audio.AudioURL != "" {
		return classifiedContent{Type: ContentTypeAudio, Value: msg.Audio.AudioURL}, true
	}
	if msg.Video != nil && msg.Video.VideoURL != "" {
		return classifiedContent{Type: ContentTypeVideo, Value: msg.Video.VideoURL}, true
	}
	if msg.Document != nil && msg.Document.DocumentURL != "" {
		return classifiedContent{Type: ContentTypeDocument, Value: msg.Document.DocumentURL}, true
	}
	if msg.Text != nil && msg.Text.Message != "" {
		return classifiedContent{Type: ContentTypeText, Value: msg.Text.Message}, true
	}
	return classifiedContent{}, false
}

// errorResponse is the JSON body returned for request-level failures.
type errorResponse struct {
	Error string `json:"error"`
}

// ServerOptions configures the webhook server.
type ServerOptions struct {
	Port               int           // default: 8080
	Host               string        // default: "0.0.0.0"
	RateLimitPerMinute int           // requests per minute per IP (default: 100)
	SyncWait           time.Duration // how long to wait for a terminal result (default: 30s)
	ShutdownTimeout    time.Duration // grace period for in-flight requests (default: 30s)
	AuthToken          string        // optional Client-Token check on inbound requests
}
