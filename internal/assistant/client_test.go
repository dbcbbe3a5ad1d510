package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dyike/FinSightGo/config"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.OpenAIAPIKey = "sk-test"
	return NewClient(cfg).WithBaseURL(srv.URL)
}

func TestClientSendsAuthAndBetaHeaders(t *testing.T) {
	var gotAuth, gotBeta string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBeta = r.Header.Get("OpenAI-Beta")
		fmt.Fprint(w, `{"id":"thread_abc"}`)
	}))

	thread, err := client.CreateThread(context.Background())
	if err != nil {
		t.Fatalf("CreateThread: %v", err)
	}
	if thread.ID != "thread_abc" {
		t.Fatalf("unexpected thread id: %s", thread.ID)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("missing bearer token, got %q", gotAuth)
	}
	if gotBeta != "assistants=v2" {
		t.Fatalf("missing assistants beta header, got %q", gotBeta)
	}
}

func TestRetrieveRunParsesRequiredAction(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/threads/thread_1/runs/run_1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"id": "run_1",
			"thread_id": "thread_1",
			"status": "requires_action",
			"required_action": {
				"type": "submit_tool_outputs",
				"submit_tool_outputs": {
					"tool_calls": [
						{"id": "call_1", "type": "function",
						 "function": {"name": "get_financial_growth",
						              "arguments": "{\"ticker\":\"AAPL\",\"period\":\"quarter\",\"limit\":4}"}}
					]
				}
			}
		}`)
	}))

	run, err := client.RetrieveRun(context.Background(), "thread_1", "run_1")
	if err != nil {
		t.Fatalf("RetrieveRun: %v", err)
	}
	if run.Status != StatusRequiresAction {
		t.Fatalf("unexpected status: %s", run.Status)
	}
	calls := run.PendingToolCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 pending tool call, got %d", len(calls))
	}
	if calls[0].ID != "call_1" || calls[0].Function.Name != "get_financial_growth" {
		t.Fatalf("unexpected tool call: %+v", calls[0])
	}
}

func TestSubmitToolOutputsBody(t *testing.T) {
	var gotBody map[string]interface{}
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/threads/t/runs/r/submit_tool_outputs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &gotBody); err != nil {
			t.Errorf("invalid body: %v", err)
		}
		fmt.Fprint(w, `{"id":"r","status":"queued"}`)
	}))

	outputs := []ToolOutput{
		{ToolCallID: "call_1", Output: `[{"growth":0.1}]`},
		{ToolCallID: "call_2", Output: `[]`},
	}
	run, err := client.SubmitToolOutputs(context.Background(), "t", "r", outputs)
	if err != nil {
		t.Fatalf("SubmitToolOutputs: %v", err)
	}
	if run.Status != StatusQueued {
		t.Fatalf("unexpected status: %s", run.Status)
	}

	raw, ok := gotBody["tool_outputs"].([]interface{})
	if !ok || len(raw) != 2 {
		t.Fatalf("tool_outputs not batched: %v", gotBody)
	}
	first := raw[0].(map[string]interface{})
	if first["tool_call_id"] != "call_1" {
		t.Fatalf("tool_call_id not correlated: %v", first)
	}
}

func TestListMessagesTextValue(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"id":"msg_2","role":"assistant","content":[{"type":"text","text":{"value":"Revenue grew 5%."}}]},
			{"id":"msg_1","role":"user","content":[{"type":"text","text":{"value":"How is AAPL doing?"}}]}
		]}`)
	}))

	msgs, err := client.ListMessages(context.Background(), "thread_1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].TextValue() != "Revenue grew 5%." {
		t.Fatalf("unexpected text: %q", msgs[0].TextValue())
	}
}

func TestAPIErrorDecoded(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
	}))

	_, err := client.CreateThread(context.Background())
	if err == nil {
		t.Fatalf("expected error for HTTP 401")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Type != "invalid_request_error" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}
