// Package assistant is a minimal client for the OpenAI Assistants v2 API,
// covering exactly the operations the orchestration loop consumes: assistant
// and thread lifecycle, runs, tool outputs and message listing.
package assistant

import "fmt"

// RunStatus is the status enumeration reported by the platform for a run.
type RunStatus string

const (
	StatusQueued         RunStatus = "queued"
	StatusInProgress     RunStatus = "in_progress"
	StatusRequiresAction RunStatus = "requires_action"
	StatusCompleted      RunStatus = "completed"
	StatusFailed         RunStatus = "failed"
	StatusCancelling     RunStatus = "cancelling"
	StatusCancelled      RunStatus = "cancelled"
	StatusExpired        RunStatus = "expired"
	StatusIncomplete     RunStatus = "incomplete"
)

// Pending reports whether the loop should keep waiting for the run.
func (s RunStatus) Pending() bool {
	return s == StatusQueued || s == StatusInProgress
}

// Tool declares a callable function to the platform when the assistant is
// created. Parameters is a JSON-schema object.
type Tool struct {
	Type     string              `json:"type"`
	Function *FunctionDefinition `json:"function,omitempty"`
}

type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// Assistant is the platform-side agent configuration.
type Assistant struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	Instructions string `json:"instructions"`
	Tools        []Tool `json:"tools"`
}

// Thread is one conversational context.
type Thread struct {
	ID string `json:"id"`
}

// Message is one entry in a thread's history.
type Message struct {
	ID      string           `json:"id"`
	Role    string           `json:"role"`
	Content []MessageContent `json:"content"`
}

type MessageContent struct {
	Type string       `json:"type"`
	Text *MessageText `json:"text,omitempty"`
}

type MessageText struct {
	Value string `json:"value"`
}

// TextValue returns the message's first text part, or "" when the message
// carries no text content.
func (m *Message) TextValue() string {
	for _, part := range m.Content {
		if part.Type == "text" && part.Text != nil {
			return part.Text.Value
		}
	}
	return ""
}

type messageList struct {
	Data []Message `json:"data"`
}

// ToolCall is one agent-issued function invocation request.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolOutput answers one ToolCall, correlated by ID.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// Run is one execution attempt of the assistant over a thread.
type Run struct {
	ID             string          `json:"id"`
	ThreadID       string          `json:"thread_id"`
	AssistantID    string          `json:"assistant_id"`
	Status         RunStatus       `json:"status"`
	RequiredAction *RequiredAction `json:"required_action,omitempty"`
	LastError      *RunLastError   `json:"last_error,omitempty"`
}

type RequiredAction struct {
	Type              string                   `json:"type"`
	SubmitToolOutputs *SubmitToolOutputsAction `json:"submit_tool_outputs,omitempty"`
}

type SubmitToolOutputsAction struct {
	ToolCalls []ToolCall `json:"tool_calls"`
}

type RunLastError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PendingToolCalls returns the tool calls awaiting outputs, nil when the run
// requires no action.
func (r *Run) PendingToolCalls() []ToolCall {
	if r.RequiredAction == nil || r.RequiredAction.SubmitToolOutputs == nil {
		return nil
	}
	return r.RequiredAction.SubmitToolOutputs.ToolCalls
}

// APIError is a non-2xx answer from the agent platform.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("assistant API error %d (%s): %s", e.StatusCode, e.Type, e.Message)
}

type apiErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
