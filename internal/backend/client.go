// Package backend talks to the media-generation service and classifies every
// failure into an ErrorKind.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL   = "http://localhost:1234"
	DefaultTimeout   = 300 * time.Second
	defaultUserAgent = "anchor-console/dev"

	videoPath = "generate-news-video"
	audioPath = "generate-news-audio"

	// failure bodies are only ever shown as an excerpt
	maxErrorBody = 1 << 20
	maxVideoBody = 1 << 20
)

// Config describes how to reach the backend.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// SOCKS5Proxy is an optional host:port for a SOCKS5 proxy.
	SOCKS5Proxy string
	HTTPClient  *http.Client
}

// Request is one generation call.
type Request struct {
	ID         string
	Topics     []string
	SourceType string
}

type payload struct {
	Topics     []string `json:"topics"`
	SourceType string   `json:"source_type"`
}

// Audio is the raw media returned by the audio endpoint.
type Audio struct {
	Data        []byte
	ContentType string
}

// Client wraps the generation endpoints.
type Client struct {
	baseURL   *url.URL
	timeout   time.Duration
	userAgent string
	http      *http.Client
}

// New creates a Client from cfg, filling defaults.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("backend: base url %q must be http or https", base)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		transport, err := newTransport(cfg.SOCKS5Proxy)
		if err != nil {
			return nil, err
		}
		client = &http.Client{Transport: transport}
	}
	return &Client{
		baseURL:   baseURL,
		timeout:   timeout,
		userAgent: userAgent,
		http:      client,
	}, nil
}

// BaseURL returns the resolved backend address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// GenerateVideo requests a video and returns its URL.
func (c *Client) GenerateVideo(ctx context.Context, req Request) (string, error) {
	var videoURL string
	err := c.do(ctx, videoPath, req, func(resp *http.Response) error {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxVideoBody))
		if err != nil {
			return err
		}
		var out struct {
			VideoURL string `json:"video_url"`
		}
		if err := json.Unmarshal(body, &out); err != nil || strings.TrimSpace(out.VideoURL) == "" {
			return &Error{Kind: KindMalformedResponse, Message: msgNoVideoURL, Status: resp.StatusCode}
		}
		videoURL = out.VideoURL
		return nil
	})
	return videoURL, err
}

// GenerateAudio requests narration audio and returns the raw bytes.
func (c *Client) GenerateAudio(ctx context.Context, req Request) (Audio, error) {
	var audio Audio
	err := c.do(ctx, audioPath, req, func(resp *http.Response) error {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return &Error{Kind: KindMalformedResponse, Message: msgEmptyAudio, Status: resp.StatusCode}
		}
		contentType := resp.Header.Get("Content-Type")
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			contentType = mt
		}
		audio = Audio{Data: data, ContentType: contentType}
		return nil
	})
	return audio, err
}

// do posts the payload and hands 2xx responses to onSuccess. Every error it
// returns is an *Error.
func (c *Client) do(ctx context.Context, path string, req Request, onSuccess func(*http.Response) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	topics := req.Topics
	if topics == nil {
		topics = []string{}
	}
	body, err := json.Marshal(payload{Topics: topics, SourceType: req.SourceType})
	if err != nil {
		return &Error{Kind: KindUnexpected, Message: fmt.Sprintf("encode request: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath(path).String(), bytes.NewReader(body))
	if err != nil {
		return &Error{Kind: KindUnexpected, Message: fmt.Sprintf("build request: %v", err)}
	}
	requestID := req.ID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return classifyTransport(ctx, err)
		}
		return classifyStatus(resp.StatusCode, data)
	}

	if err := onSuccess(resp); err != nil {
		var be *Error
		if errors.As(err, &be) {
			return be
		}
		return classifyTransport(ctx, err)
	}
	return nil
}
