// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package formulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// chatServer returns an httptest server speaking just enough of the
// OpenAI chat completions API for the formulator, and a formulator
// pointed at it.
func chatServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *LLMFormulator) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	f := NewLLMFormulator(Config{
		APIKey:  "test-key",
		BaseURL: ts.URL + "/v1",
		Model:   "llama3",
	})
	return ts, f
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestFormulate(t *testing.T) {
	var gotPrompt string
	_, f := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("unmarshal request: %v", err)
		}
		if len(req.Messages) == 1 {
			gotPrompt = req.Messages[0].Content
		}
		if req.Model != "llama3" {
			t.Errorf("model = %q", req.Model)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody(`{"keywords": "(\"neural network*\" OR \"deep learning\") AND privacy"}`))
	})

	got, err := f.Formulate(context.Background(), "how do neural networks affect privacy?")
	if err != nil {
		t.Fatalf("Formulate error: %v", err)
	}
	want := `("neural network*" OR "deep learning") AND privacy`
	if got != want {
		t.Errorf("keywords = %q, want %q", got, want)
	}
	if !strings.Contains(gotPrompt, "QUERY: how do neural networks affect privacy?") {
		t.Errorf("prompt does not embed the user query: %q", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "boolean search string") {
		t.Errorf("prompt missing instructions: %q", gotPrompt)
	}
}

func TestFormulateTrimsKeywords(t *testing.T) {
	_, f := chatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody(`{"keywords": "  privacy AND embeddings  "}`))
	})

	got, err := f.Formulate(context.Background(), "privacy embeddings")
	if err != nil {
		t.Fatalf("Formulate error: %v", err)
	}
	if got != "privacy AND embeddings" {
		t.Errorf("keywords = %q", got)
	}
}

func TestFormulateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		query   string
		wantErr error
	}{
		{
			name:    "empty query",
			query:   "   ",
			wantErr: ErrFormulation,
		},
		{
			name:    "query too long",
			query:   strings.Repeat("x", MaxQueryLen+1),
			wantErr: ErrQueryTooLong,
		},
		{
			name: "service error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			query:   "privacy",
			wantErr: ErrFormulation,
		},
		{
			name: "non-JSON completion",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, completionBody("here are your keywords: privacy AND ai"))
			},
			query:   "privacy",
			wantErr: ErrFormulation,
		},
		{
			name: "empty keywords field",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, completionBody(`{"keywords": "   "}`))
			},
			query:   "privacy",
			wantErr: ErrFormulation,
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"choices": []}`)
			},
			query:   "privacy",
			wantErr: ErrFormulation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := tt.handler
			if handler == nil {
				handler = func(w http.ResponseWriter, _ *http.Request) {
					t.Error("unexpected API call")
				}
			}
			_, f := chatServer(t, handler)

			_, err := f.Formulate(context.Background(), tt.query)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormulateQueryAtLimit(t *testing.T) {
	_, f := chatServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody(`{"keywords": "long AND query"}`))
	})

	// Exactly MaxQueryLen characters is accepted.
	got, err := f.Formulate(context.Background(), strings.Repeat("y", MaxQueryLen))
	if err != nil {
		t.Fatalf("Formulate error: %v", err)
	}
	if got != "long AND query" {
		t.Errorf("keywords = %q", got)
	}
}
