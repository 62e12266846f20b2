package tool

// Status represents the outcome of a tool execution.
type Status string

const (
	// StatusAccepted means the request was accepted and is being processed asynchronously
	StatusAccepted Status = "accepted"
	// StatusCompleted means the request was processed successfully
	StatusCompleted Status = "completed"
	// StatusFailed means the request processing failed
	StatusFailed Status = "failed"
	// StatusRejected means the request was rejected (e.g., invalid parameters)
	StatusRejected Status = "rejected"
)

// Request is a generic tool execution request.
// Parameters is a tool-specific bag; each tool documents and validates its own keys.
type Request struct {
	ToolName    string                 `json:"toolName"`
	Parameters  map[string]interface{} `json:"parameters"`
	CallbackURL string                 `json:"callbackUrl,omitempty"`
}

// StringParam returns the named parameter as a string, or defaultValue if the
// parameter is missing or not a string.
func (r Request) StringParam(name, defaultValue string) string {
	if r.Parameters == nil {
		return defaultValue
	}
	value, ok := r.Parameters[name]
	if !ok {
		return defaultValue
	}
	s, ok := value.(string)
	if !ok {
		return defaultValue
	}
	return s
}

// Response is a generic tool execution response.
// A response is constructed once and never mutated after being returned.
type Response struct {
	ToolName     string                 `json:"toolName"`
	Status       Status                 `json:"status"`
	Result       map[string]interface{} `json:"result"`
	ErrorMessage string                 `json:"errorMessage,omitempty"`
	RequestID    string                 `json:"requestId"`
}

// AddResult adds a result value to the response and returns it for chaining.
func (r Response) AddResult(key string, value interface{}) Response {
	if r.Result == nil {
		r.Result = make(map[string]interface{})
	}
	r.Result[key] = value
	return r
}

// Accepted creates a response for an accepted request.
func Accepted(toolName, requestID string) Response {
	return Response{
		ToolName:  toolName,
		Status:    StatusAccepted,
		Result:    make(map[string]interface{}),
		RequestID: requestID,
	}
}

// Completed creates a response for a completed request.
func Completed(toolName string, result map[string]interface{}, requestID string) Response {
	if result == nil {
		result = make(map[string]interface{})
	}
	return Response{
		ToolName:  toolName,
		Status:    StatusCompleted,
		Result:    result,
		RequestID: requestID,
	}
}

// Failed creates a response for a failed request.
func Failed(toolName, errorMessage, requestID string) Response {
	return Response{
		ToolName:     toolName,
		Status:       StatusFailed,
		Result:       make(map[string]interface{}),
		ErrorMessage: errorMessage,
		RequestID:    requestID,
	}
}

// Rejected creates a response for a rejected request.
func Rejected(toolName, errorMessage, requestID string) Response {
	return Response{
		ToolName:     toolName,
		Status:       StatusRejected,
		Result:       make(map[string]interface{}),
		ErrorMessage: errorMessage,
		RequestID:    requestID,
	}
}

// Tool is the contract implemented by every pluggable handler.
//
// ExecuteAsync schedules the real work on the tool's private worker pool and
// resolves the returned channel immediately with an accepted response; the
// eventual outcome is reported out-of-band (a message sent back through the
// gateway), never through the channel. Callers must not wait on the channel
// expecting the final result.
type Tool interface {
	// Name returns the name used to identify the tool in execution requests.
	Name() string

	// Description returns a human-readable description of what the tool does.
	Description() string

	// ValidateParameters inspects the request's parameter bag for the tool's
	// required keys. It returns "" when valid, an error message otherwise.
	// It must not mutate the request or have side effects.
	ValidateParameters(req Request) string

	// Execute performs the work inline and returns a terminal response.
	Execute(req Request) Response

	// ExecuteAsync schedules the work and returns a channel that resolves
	// immediately with an accepted (or failed) response.
	ExecuteAsync(req Request) <-chan Response
}

// Respond wraps a single response in a resolved channel. Tools use it to
// complete their async entry point immediately.
func Respond(resp Response) <-chan Response {
	ch := make(chan Response, 1)
	ch <- resp
	close(ch)
	return ch
}
