package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/FinSightGo/config"
)

// Client talks to the Assistants v2 REST API.
type Client struct {
	http *resty.Client
}

func NewClient(cfg *config.Config) *Client {
	client := resty.New()
	client.SetBaseURL(cfg.OpenAIBaseURL)
	client.SetTimeout(cfg.HTTPTimeout())
	client.SetAuthToken(cfg.OpenAIAPIKey)
	client.SetHeader("OpenAI-Beta", "assistants=v2")
	client.SetHeader("Content-Type", "application/json")

	return &Client{http: client}
}

// WithBaseURL points the client at an alternative platform endpoint.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.http.SetBaseURL(baseURL)
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("assistant: %s %s: %w", method, path, err)
	}

	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		var envelope apiErrorEnvelope
		if err := json.Unmarshal(resp.Body(), &envelope); err == nil {
			apiErr.Type = envelope.Error.Type
			apiErr.Message = envelope.Error.Message
		} else {
			apiErr.Message = resp.String()
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("assistant: decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// CreateAssistant registers an assistant with the given tool declarations.
func (c *Client) CreateAssistant(ctx context.Context, model, instructions string, tools []Tool) (*Assistant, error) {
	body := map[string]interface{}{
		"model":        model,
		"instructions": instructions,
		"tools":        tools,
	}
	var out Assistant
	if err := c.do(ctx, resty.MethodPost, "/assistants", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAssistant(ctx context.Context, assistantID string) error {
	return c.do(ctx, resty.MethodDelete, "/assistants/"+assistantID, nil, nil)
}

func (c *Client) CreateThread(ctx context.Context) (*Thread, error) {
	var out Thread
	if err := c.do(ctx, resty.MethodPost, "/threads", map[string]interface{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteThread(ctx context.Context, threadID string) error {
	return c.do(ctx, resty.MethodDelete, "/threads/"+threadID, nil, nil)
}

// AddMessage appends a message with the given role to the thread.
func (c *Client) AddMessage(ctx context.Context, threadID, role, content string) (*Message, error) {
	body := map[string]interface{}{
		"role":    role,
		"content": content,
	}
	var out Message
	if err := c.do(ctx, resty.MethodPost, "/threads/"+threadID+"/messages", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRun starts the assistant over the thread.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error) {
	body := map[string]interface{}{
		"assistant_id": assistantID,
	}
	var out Run
	if err := c.do(ctx, resty.MethodPost, "/threads/"+threadID+"/runs", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RetrieveRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var out Run
	if err := c.do(ctx, resty.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitToolOutputs answers every pending tool call of the run in one
// batched call; the platform only progresses the run once all outstanding
// calls are answered.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error) {
	body := map[string]interface{}{
		"tool_outputs": outputs,
	}
	var out Run
	path := "/threads/" + threadID + "/runs/" + runID + "/submit_tool_outputs"
	if err := c.do(ctx, resty.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages returns the thread's messages, newest first (platform
// default ordering).
func (c *Client) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	var out messageList
	if err := c.do(ctx, resty.MethodGet, "/threads/"+threadID+"/messages", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
