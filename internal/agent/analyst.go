// Package agent holds the tool-call orchestration loop: it converts one
// user message into one final answer, mediating every interaction between
// the assistant platform and the data retrieval tools.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dyike/FinSightGo/config"
	"github.com/dyike/FinSightGo/internal/assistant"
	"github.com/dyike/FinSightGo/internal/dataflows"
	"github.com/dyike/FinSightGo/internal/tools"
)

var (
	// ErrRunFailed marks a run that the platform reported as failed.
	ErrRunFailed = errors.New("run failed")
	// ErrUnexpectedStatus marks a run status outside the handled set.
	ErrUnexpectedStatus = errors.New("unexpected run status")
	// ErrPollTimeout marks a run that never reached a terminal status
	// within the configured poll budget.
	ErrPollTimeout = errors.New("run polling timed out")
	// ErrNoAnswer marks a completed run whose thread holds no assistant
	// message.
	ErrNoAnswer = errors.New("run completed without an assistant message")
)

// Analyst drives the assistant over one thread per question. The assistant
// itself is created lazily and reused across questions; threads are
// created and deleted per call.
type Analyst struct {
	cfg         *config.Config
	client      *assistant.Client
	registry    *tools.Registry
	assistantID string
}

func NewAnalyst(cfg *config.Config, client *assistant.Client, registry *tools.Registry) *Analyst {
	return &Analyst{
		cfg:      cfg,
		client:   client,
		registry: registry,
	}
}

// Ask resolves one user message to the assistant's final answer. Every
// thread created here is deleted again on every exit path.
func (a *Analyst) Ask(ctx context.Context, userMessage string) (string, error) {
	if userMessage == "" {
		return "", fmt.Errorf("user message must not be empty")
	}

	assistantID, err := a.ensureAssistant(ctx)
	if err != nil {
		return "", err
	}

	thread, err := a.client.CreateThread(ctx)
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	defer a.cleanupThread(thread.ID)

	if _, err := a.client.AddMessage(ctx, thread.ID, "user", userMessage); err != nil {
		return "", fmt.Errorf("add user message: %w", err)
	}

	run, err := a.client.CreateRun(ctx, thread.ID, assistantID)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}

	return a.pollRun(ctx, thread.ID, run.ID)
}

// pollRun is the state machine of the orchestration loop. Each iteration
// observes the run status once; requires_action is answered with a single
// batched tool-output submission.
func (a *Analyst) pollRun(ctx context.Context, threadID, runID string) (string, error) {
	for i := 0; i < a.cfg.MaxPollIterations; i++ {
		run, err := a.client.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			return "", fmt.Errorf("retrieve run: %w", err)
		}

		switch run.Status {
		case assistant.StatusRequiresAction:
			outputs := a.executeToolCalls(ctx, run.PendingToolCalls())
			if _, err := a.client.SubmitToolOutputs(ctx, threadID, runID, outputs); err != nil {
				return "", fmt.Errorf("submit tool outputs: %w", err)
			}

		case assistant.StatusCompleted:
			return a.finalAnswer(ctx, threadID)

		case assistant.StatusFailed:
			if run.LastError != nil {
				return "", fmt.Errorf("%w: %s: %s", ErrRunFailed, run.LastError.Code, run.LastError.Message)
			}
			return "", ErrRunFailed

		case assistant.StatusQueued, assistant.StatusInProgress:
			a.debugf("run %s is %s, waiting", runID, run.Status)
			if err := wait(ctx, a.cfg.PollInterval()); err != nil {
				return "", err
			}

		default:
			return "", fmt.Errorf("%w: %q", ErrUnexpectedStatus, run.Status)
		}
	}

	return "", fmt.Errorf("%w after %d polls", ErrPollTimeout, a.cfg.MaxPollIterations)
}

// executeToolCalls answers every pending tool call of one requires_action
// batch. Failures never drop a call: the output set always has exactly one
// entry per call, carrying an error payload when execution failed, so the
// run can progress instead of stalling.
func (a *Analyst) executeToolCalls(ctx context.Context, calls []assistant.ToolCall) []assistant.ToolOutput {
	outputs := make([]assistant.ToolOutput, 0, len(calls))
	for _, call := range calls {
		result, err := a.registry.Execute(ctx, call.Function.Name, call.Function.Arguments)
		if err != nil {
			a.debugf("tool call %s (%s) failed: %v", call.ID, call.Function.Name, err)
			result = errorPayload(call.Function.Name, err)
		}
		outputs = append(outputs, assistant.ToolOutput{
			ToolCallID: call.ID,
			Output:     result,
		})
	}
	return outputs
}

// errorPayload serializes a tool failure so the assistant can react to it.
func errorPayload(name string, err error) string {
	payload := map[string]string{
		"tool":  name,
		"error": err.Error(),
	}
	var unavailable *dataflows.DataUnavailableError
	if errors.As(err, &unavailable) {
		payload["provider_response"] = unavailable.Body
	}
	data, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return fmt.Sprintf(`{"tool":%q,"error":"tool execution failed"}`, name)
	}
	return string(data)
}

// finalAnswer extracts the newest assistant message from the thread.
func (a *Analyst) finalAnswer(ctx context.Context, threadID string) (string, error) {
	messages, err := a.client.ListMessages(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}

	// Newest first; take the latest assistant turn, not just messages[0].
	for _, msg := range messages {
		if msg.Role == "assistant" {
			if text := msg.TextValue(); text != "" {
				return text, nil
			}
		}
	}
	return "", ErrNoAnswer
}

func (a *Analyst) ensureAssistant(ctx context.Context) (string, error) {
	if a.assistantID != "" {
		return a.assistantID, nil
	}

	created, err := a.client.CreateAssistant(ctx, a.cfg.Model, a.cfg.Instructions, tools.Definitions())
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}
	a.assistantID = created.ID
	a.debugf("created assistant %s", created.ID)
	return a.assistantID, nil
}

// Close deletes the shared assistant, if one was created.
func (a *Analyst) Close(ctx context.Context) error {
	if a.assistantID == "" {
		return nil
	}
	if err := a.client.DeleteAssistant(ctx, a.assistantID); err != nil {
		return fmt.Errorf("delete assistant %s: %w", a.assistantID, err)
	}
	a.assistantID = ""
	return nil
}

// cleanupThread deletes the per-question thread. It runs on a fresh
// context so cleanup still happens when the caller's context is done.
func (a *Analyst) cleanupThread(threadID string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPTimeout())
	defer cancel()

	if err := a.client.DeleteThread(ctx, threadID); err != nil {
		log.Printf("delete thread %s: %v", threadID, err)
	}
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (a *Analyst) debugf(format string, args ...interface{}) {
	if a.cfg.Debug {
		log.Printf(format, args...)
	}
}
