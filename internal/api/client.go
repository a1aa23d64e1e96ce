// Package api talks to the knowledge-base chat backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	AskPath      = "/ask"
	UploadPath   = "/upload-csv"
	DeletePath   = "/delete-csv"
	ReloadPath   = "/reload-vectordb"
	DefaultURL   = "http://127.0.0.1:8000"
	uploadField  = "file"
	jsonMimeType = "application/json"
)

// Backend is everything the chat front end needs from a server.
type Backend interface {
	// Ask returns the streamed Markdown answer. The caller closes it.
	Ask(ctx context.Context, question string) (io.ReadCloser, error)
	UploadCSV(ctx context.Context, filename string, content io.Reader) (*UploadResult, error)
	DeleteCSV(ctx context.Context) (*Result, error)
	ReloadVectorDB(ctx context.Context) (*Result, error)
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type UploadResult struct {
	Result
	DocumentCount int `json:"document_count"`
}

type askRequest struct {
	Input string `json:"input"`
}

// Client is the HTTP Backend.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

type ClientOption func(*Client)

// WithTimeout bounds the knowledge-base calls and the wait for the first
// byte of an answer. The answer stream itself is not bounded.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		timeout: 30 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = c.timeout
		c.http = &http.Client{Transport: transport}
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

func (c *Client) Ask(ctx context.Context, question string) (io.ReadCloser, error) {
	body, err := json.Marshal(askRequest{Input: question})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(AskPath), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", jsonMimeType)
	req.Header.Set("Accept", "text/plain")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) UploadCSV(ctx context.Context, filename string, content io.Reader) (*UploadResult, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile(uploadField, filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(UploadPath), pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var result UploadResult
	if err := c.doJSON(req, &result); err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteCSV(ctx context.Context) (*Result, error) {
	return c.simple(ctx, http.MethodDelete, DeletePath)
}

func (c *Client) ReloadVectorDB(ctx context.Context) (*Result, error) {
	return c.simple(ctx, http.MethodPost, ReloadPath)
}

func (c *Client) simple(ctx context.Context, method, path string) (*Result, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), nil)
	if err != nil {
		return nil, err
	}

	var result Result
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// do sends req and turns any non-2xx answer into an *Error. On success the
// caller owns resp.Body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}

	c.logger.Debug("response",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newError(resp)
	}
	return resp, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	req.Header.Set("Accept", jsonMimeType)

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: invalid response body: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
