package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// At most this many AI calls may be in flight process-wide; requests beyond
// the cap queue until a slot frees.
const maxConcurrentAICalls = 10

var aiSlots = make(chan struct{}, maxConcurrentAICalls)

// AIService is the chat-completion client behind recipe generation and
// nutrition targets. Provider failures, timeouts and empty responses all
// surface as ErrAIServiceUnavailable so callers can treat them as retryable.
type AIService struct {
	client  *http.Client
	baseURL string
	token   string
	model   string
	timeout time.Duration
}

func NewAIService() *AIService {
	timeout := 2 * time.Minute
	if v := os.Getenv("AI_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}
	baseURL := os.Getenv("AI_API_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1/chat/completions"
	}
	model := os.Getenv("AI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &AIService{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		token:   os.Getenv("AI_API_KEY"),
		model:   model,
		timeout: timeout,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends one prompt pair and returns the provider's raw text.
func (a *AIService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if a.token == "" {
		return "", fmt.Errorf("%w: AI_API_KEY not set", ErrAIServiceUnavailable)
	}

	select {
	case aiSlots <- struct{}{}:
		defer func() { <-aiSlots }()
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrAIServiceUnavailable, ctx.Err())
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	payload := chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal ai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("build ai request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIServiceUnavailable, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrAIServiceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		var cr chatResponse
		if json.Unmarshal(respBytes, &cr) == nil && cr.Error != nil && cr.Error.Message != "" {
			return "", fmt.Errorf("%w: provider error (%d): %s", ErrAIServiceUnavailable, resp.StatusCode, cr.Error.Message)
		}
		return "", fmt.Errorf("%w: provider error (%d)", ErrAIServiceUnavailable, resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBytes, &cr); err != nil {
		return "", fmt.Errorf("%w: malformed provider envelope: %v", ErrAIServiceUnavailable, err)
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrAIServiceUnavailable)
	}
	return cr.Choices[0].Message.Content, nil
}

// ExtractJSONBlock pulls the JSON payload out of free-form model output:
// markdown fences are stripped, then the text is sliced from the first
// `{`/`[` to the last matching `}`/`]`. Returns "" when no bracketed region
// exists.
func ExtractJSONBlock(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")

	start, closer := -1, byte('}')
	switch {
	case arrStart != -1 && (objStart == -1 || arrStart < objStart):
		start, closer = arrStart, ']'
	case objStart != -1:
		start = objStart
	}
	if start == -1 {
		return ""
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}

// decodeLenient unmarshals the extracted JSON region into out. A missing or
// malformed payload is logged and leaves out at its zero value; AI parse
// failures never become hard errors.
func decodeLenient(raw string, out any) bool {
	block := ExtractJSONBlock(raw)
	if block == "" {
		log.Printf("ai response contained no JSON payload")
		return false
	}
	if err := json.Unmarshal([]byte(block), out); err != nil {
		log.Printf("ai response JSON did not parse: %v", err)
		return false
	}
	return true
}
