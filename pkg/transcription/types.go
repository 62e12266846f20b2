package transcription

// Request carries one audio transcription job.
type Request struct {
	PhoneNumber string `json:"phoneNumber"`
	AudioURL    string `json:"audioUrl"`
	MessageID   string `json:"messageId"`
}

// Result is the outcome of a transcription job.
type Result struct {
	PhoneNumber  string `json:"phoneNumber"`
	Text         string `json:"transcribedText,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Success      bool   `json:"success"`
	MessageID    string `json:"messageId,omitempty"`
}

// Succeeded creates a successful result.
func Succeeded(phoneNumber, text, messageID string) Result {
	return Result{
		PhoneNumber: phoneNumber,
		Text:        text,
		Success:     true,
		MessageID:   messageID,
	}
}

// Errored creates a failed result.
func Errored(phoneNumber, errorMessage, messageID string) Result {
	return Result{
		PhoneNumber:  phoneNumber,
		ErrorMessage: errorMessage,
		Success:      false,
		MessageID:    messageID,
	}
}
