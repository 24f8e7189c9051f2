package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrRemote marks a failure reported by the remote service itself.
	ErrRemote = errors.New("remote service error")
	// ErrDecode marks a response that did not match the wire contract.
	ErrDecode = errors.New("malformed response")
)

// Config holds configuration for the remote service client.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// DefaultConfig returns default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:8080",
		RequestTimeout: 30 * time.Second,
	}
}

// Client talks to the remote chat and scoring service.
type Client struct {
	baseURL string
	hc      *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for the service at cfg.BaseURL.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultConfig().BaseURL
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().RequestTimeout
	}
	return &Client{
		baseURL: base,
		hc:      &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Chat sends one chat turn and returns the validated response.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer c.closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.remoteError("chat", resp)
	}

	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", errors.Join(ErrDecode, err))
	}
	if out.Message == "" {
		return nil, fmt.Errorf("%w: chat response missing message", ErrDecode)
	}
	return &out, nil
}

// UploadFile submits the file content as a multipart request tied to userID.
func (c *Client) UploadFile(ctx context.Context, userID, filename string, content io.Reader) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy file content: %w", err)
	}
	if err := mw.WriteField("user_id", userID); err != nil {
		return nil, fmt.Errorf("write user_id field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer c.closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.remoteError("upload", resp)
	}

	var out UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", errors.Join(ErrDecode, err))
	}
	if out.FileID == "" {
		return nil, fmt.Errorf("%w: upload response missing file_id", ErrDecode)
	}
	return &out, nil
}

// FileScore fetches the score derived from a previously uploaded file.
func (c *Client) FileScore(ctx context.Context, fileID string) (int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/get_file_score/"+url.PathEscape(fileID), nil)
	if err != nil {
		return 0, fmt.Errorf("build file score request: %w", err)
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("file score request: %w", err)
	}
	defer c.closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, c.remoteError("file score", resp)
	}

	var out fileScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode file score response: %w", errors.Join(ErrDecode, err))
	}
	if out.Error != "" {
		return 0, fmt.Errorf("%w: %s", ErrRemote, out.Error)
	}
	if out.Score == nil {
		return 0, fmt.Errorf("%w: file score response missing score", ErrDecode)
	}
	return *out.Score, nil
}

// remoteError maps a non-2xx response to an error, preferring the service's
// own {error} body over the bare status.
func (c *Client) remoteError(op string, resp *http.Response) error {
	var body errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("%s: %w: %s", op, ErrRemote, body.Error)
	}
	return fmt.Errorf("%s: %w: status %d", op, ErrRemote, resp.StatusCode)
}

func (c *Client) closeBody(body io.ReadCloser) {
	if _, err := io.Copy(io.Discard, io.LimitReader(body, 4096)); err != nil {
		c.logger.Debug("failed to drain response body", "error", err)
	}
	if err := body.Close(); err != nil {
		c.logger.Debug("failed to close response body", "error", err)
	}
}
