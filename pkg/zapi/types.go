package zapi

// SendMessageRequest is the Z-API send-text payload.
type SendMessageRequest struct {
	Phone         string `json:"phone"`
	Message       string `json:"message"`
	DelayMessage  int    `json:"delayMessage,omitempty"`
	DelayTyping   int    `json:"delayTyping,omitempty"`
	EditMessageID string `json:"editMessageId,omitempty"`
	MessageID     string `json:"messageId,omitempty"`
}

// ForwardMessageRequest is the Z-API forward-message payload.
type ForwardMessageRequest struct {
	Phone        string `json:"phone"`
	MessageID    string `json:"messageId"`
	MessagePhone string `json:"messagePhone"`
}

// ReadMessageRequest is the Z-API read-message payload.
type ReadMessageRequest struct {
	Phone     string `json:"phone"`
	MessageID string `json:"messageId"`
}

// SendOptions carries the optional fields of a send-text call.
type SendOptions struct {
	DelayMessage  int    // delay before sending, in milliseconds
	DelayTyping   int    // typing simulation delay, in milliseconds
	EditMessageID string // id of an existing message to edit
	ReferenceID   string // id of a message to reply to
}

// forwardMessageResponse is the subset of the forward-message response we
// care about.
type forwardMessageResponse struct {
	MessageID string `json:"messageId"`
}
