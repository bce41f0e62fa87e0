// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package formulate turns a free-text research question into a boolean
// search string via a structured language-model call.
package formulate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	openai "github.com/sashabaranov/go-openai"
)

// MaxQueryLen is the maximum accepted length of the raw user query, matching
// the UI input limit.
const MaxQueryLen = 500

// ErrFormulation marks any failure to derive a keyword string: service
// unreachable, malformed response, or empty keywords. There is no silent
// fallback to the raw text; callers surface the error and may offer an
// explicit raw-query bypass instead.
var ErrFormulation = errors.New("keyword formulation failed")

// ErrQueryTooLong is returned for queries exceeding MaxQueryLen.
var ErrQueryTooLong = fmt.Errorf("query exceeds %d characters", MaxQueryLen)

// Formulator derives a boolean keyword string from raw user text.
type Formulator interface {
	Formulate(ctx context.Context, raw string) (string, error)
}

// keywordPromptTmpl instructs the model to act as a search librarian and
// answer with a single JSON field.
var keywordPromptTmpl = template.Must(template.New("keywords").Parse(`You are a research assistant specializing in generating precise and effective search queries for scientific databases like PubMed, CINAHL, or Web of Science.

Given a user query, your task is to craft a comprehensive yet concise boolean search string.

Prioritize the following:
- Accuracy & Relevance: understand the user's intent and translate it into a search query that retrieves highly relevant results.
- Specificity: employ search operators to narrow down results and eliminate irrelevant information.
- Exhaustiveness: consider synonyms and related terms so all relevant articles are captured.

Utilize these advanced search techniques:
- Boolean operators (AND, OR, NOT) to broaden or narrow the search.
- Phrase searching ("...") for exact phrases and multi-word terms.
- Truncation (*) to include variations of a word stem.

Respond with a JSON object containing a single "keywords" field holding the generated boolean search string. Do not include any text outside the JSON object.

Example response:
{"keywords": "(\"neural network*\" OR \"deep learning\") AND privacy"}

QUERY: {{.Query}}
`))

// keywordsResponse is the JSON object the model is constrained to return.
type keywordsResponse struct {
	Keywords string `json:"keywords"`
}

// Config holds the formulator settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// LLMFormulator implements Formulator with an OpenAI-compatible chat API.
type LLMFormulator struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewLLMFormulator creates a formulator for the configured endpoint.
// Temperature <= 0 selects the default (0.6).
func NewLLMFormulator(cfg Config) *LLMFormulator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 0.6
	}
	return &LLMFormulator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: temp,
	}
}

// Formulate sends the librarian prompt and parses the JSON-constrained
// response. Failures are not retried.
func (f *LLMFormulator) Formulate(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty query", ErrFormulation)
	}
	if len(raw) > MaxQueryLen {
		return "", ErrQueryTooLong
	}

	var prompt bytes.Buffer
	if err := keywordPromptTmpl.Execute(&prompt, struct{ Query string }{Query: raw}); err != nil {
		return "", fmt.Errorf("%w: building prompt: %v", ErrFormulation, err)
	}

	resp, err := f.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       f.model,
		Temperature: f.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt.String()},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFormulation, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrFormulation)
	}

	var kr keywordsResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &kr); err != nil {
		return "", fmt.Errorf("%w: parsing completion: %v", ErrFormulation, err)
	}
	keywords := strings.TrimSpace(kr.Keywords)
	if keywords == "" {
		return "", fmt.Errorf("%w: model returned no keywords", ErrFormulation)
	}
	return keywords, nil
}
