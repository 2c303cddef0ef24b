package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kestrelcase/intakex/internal/model"
	"github.com/kestrelcase/intakex/internal/schema"
)

func newTestRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func chatResponseBody(argsJSON string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{
				"message": map[string]any{
					"role": "assistant",
					"function_call": map[string]any{
						"name":      schema.FuncMedical,
						"arguments": argsJSON,
					},
				},
			},
		},
	}
}

func TestClient_Extract_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer auth header, got %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.FunctionCall.Name != schema.FuncMedical {
			t.Errorf("expected forced function %s, got %s", schema.FuncMedical, req.FunctionCall.Name)
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(chatResponseBody(`{"patient_name":"Jane Doe","confidence":0.9}`))
	}))
	defer server.Close()

	client := NewClientWithEndpoint("test-key", "gpt-4o-mini", server.URL, nil, newTestRegistry(t), nil)
	result, err := client.Extract(context.Background(), model.DocMedical, model.NewLocalCandidates(), "snippet text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result["patient_name"] != "Jane Doe" {
		t.Errorf("expected patient_name Jane Doe, got %v", result["patient_name"])
	}
}

func TestClient_Extract_RetriesOn500ThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("server error"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(chatResponseBody(`{"patient_name":"Jane Doe","confidence":0.9}`))
	}))
	defer server.Close()

	client := NewClientWithEndpoint("test-key", "gpt-4o-mini", server.URL, nil, newTestRegistry(t), nil)
	_, err := client.Extract(context.Background(), model.DocMedical, model.NewLocalCandidates(), "snippet text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestClient_Extract_FatalOn400(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad request"))
	}))
	defer server.Close()

	client := NewClientWithEndpoint("test-key", "gpt-4o-mini", server.URL, nil, newTestRegistry(t), nil)
	_, err := client.Extract(context.Background(), model.DocMedical, model.NewLocalCandidates(), "snippet text")
	if err == nil {
		t.Fatal("expected error for 400 status")
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 attempt for a fatal status, got %d", calls)
	}
}

func TestClient_Extract_ExhaustsRetriesOn500(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithEndpoint("test-key", "gpt-4o-mini", server.URL, nil, newTestRegistry(t), nil)
	_, err := client.Extract(context.Background(), model.DocMedical, model.NewLocalCandidates(), "snippet text")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != maxAttempts {
		t.Errorf("expected %d attempts, got %d", maxAttempts, calls)
	}
}

func TestClient_Extract_BraceRecoveryFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		body := map[string]any{
			"choices": []map[string]any{
				{
					"message": map[string]any{
						"role":    "assistant",
						"content": "Here is the result:\n```json\n{\"patient_name\":\"Jane Doe\",\"confidence\":0.8}\n```\n",
					},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer server.Close()

	client := NewClientWithEndpoint("test-key", "gpt-4o-mini", server.URL, nil, newTestRegistry(t), nil)
	result, err := client.Extract(context.Background(), model.DocMedical, model.NewLocalCandidates(), "snippet text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result["patient_name"] != "Jane Doe" {
		t.Errorf("expected recovered patient_name, got %v", result["patient_name"])
	}
}

func TestClient_Extract_SchemaValidationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		// Missing required "confidence" field for the medical schema.
		_ = json.NewEncoder(w).Encode(chatResponseBody(`{"patient_name":"Jane Doe"}`))
	}))
	defer server.Close()

	client := NewClientWithEndpoint("test-key", "gpt-4o-mini", server.URL, nil, newTestRegistry(t), nil)
	_, err := client.Extract(context.Background(), model.DocMedical, model.NewLocalCandidates(), "snippet text")
	if err == nil {
		t.Fatal("expected schema validation error")
	}
	if !strings.Contains(err.Error(), "parse model output") {
		t.Errorf("expected ParseError wrapping validation failure, got: %v", err)
	}
}
