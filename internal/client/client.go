// Package client provides an HTTP client for the docchat server API.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client talks to the docchat server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client. If endpoint is empty, uses the DOCCHAT_SERVER_URL
// env var or defaults to localhost:8080. Timeout can be configured via
// DOCCHAT_CLIENT_TIMEOUT (default 10m, vectorize runs can be slow).
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("DOCCHAT_SERVER_URL")
	}
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	timeout := 10 * time.Minute
	if t := os.Getenv("DOCCHAT_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError is an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// decodeError turns a non-2xx response into an APIError.
func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
	}
	return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
}

func (c *Client) postJSON(ctx context.Context, path string, payload, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// Upload sends one PDF to the server. Returns the stored blob name.
func (c *Client) Upload(ctx context.Context, clientID, productID, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("client_id", clientID); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := mw.WriteField("product_id", productID); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	var result struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return result.Name, nil
}

// VectorizeResult reports an index build.
type VectorizeResult struct {
	Version string `json:"version"`
	Chunks  int    `json:"chunks"`
}

// Vectorize asks the server to rebuild the tenant's index. With
// reuseChunks the server rebuilds from its stored chunk snapshot instead
// of re-extracting the uploaded documents.
func (c *Client) Vectorize(ctx context.Context, clientID, productID string, reuseChunks bool) (*VectorizeResult, error) {
	payload := map[string]any{
		"client_id":    clientID,
		"product_id":   productID,
		"reuse_chunks": reuseChunks,
	}
	var result VectorizeResult
	if err := c.postJSON(ctx, "/vectorize", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Remember stores a fact about a user for later personalization.
func (c *Client) Remember(ctx context.Context, userID, content string) error {
	payload := map[string]string{"user_id": userID, "content": content}
	return c.postJSON(ctx, "/memory", payload, nil)
}

// ChatRequest is one chat turn.
type ChatRequest struct {
	ConversationID string  `json:"conversation_id,omitempty"`
	ClientID       string  `json:"client_id"`
	ProductID      string  `json:"product_id"`
	UserID         *string `json:"user_id,omitempty"`
	Message        string  `json:"message"`
}

// ChatResult is the completed turn.
type ChatResult struct {
	ConversationID string `json:"conversation_id"`
	Answer         string `json:"answer"`
}

// Chat sends one message and waits for the full answer.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	var result ChatResult
	if err := c.postJSON(ctx, "/chat", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ChatStream sends one message and feeds answer chunks to fn as they
// arrive. Returns the conversation id from the final event.
func (c *Client) ChatStream(ctx context.Context, chatReq ChatRequest, fn func(chunk string)) (string, error) {
	data, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/stream", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	return readSSE(resp.Body, fn)
}

// readSSE consumes the event stream: "chunk" events carry answer text,
// "done" ends the turn, "error" aborts it.
func readSSE(r io.Reader, fn func(chunk string)) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var event, payload string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			payload = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			switch event {
			case "chunk":
				var chunk struct {
					Text string `json:"text"`
				}
				if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
					return "", fmt.Errorf("decode chunk event: %w", err)
				}
				fn(chunk.Text)
			case "error":
				var fail struct {
					Message string `json:"message"`
				}
				if err := json.Unmarshal([]byte(payload), &fail); err != nil {
					fail.Message = payload
				}
				return "", fmt.Errorf("stream failed: %s", fail.Message)
			case "done":
				var done struct {
					ConversationID string `json:"conversation_id"`
				}
				if err := json.Unmarshal([]byte(payload), &done); err != nil {
					return "", fmt.Errorf("decode final event: %w", err)
				}
				return done.ConversationID, nil
			}
			event, payload = "", ""
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}
	return "", fmt.Errorf("stream ended without completion")
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}
