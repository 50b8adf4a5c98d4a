package banyan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"banyan/internal/core/domain"
	"banyan/internal/core/ports"
	"banyan/internal/logging"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every request made by the Client.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Client is the adapter for the Banyan posting API. It performs exactly one
// request per call and never retries; every failure maps to domain.ErrTimeout
// or domain.ErrRemoteUnavailable.
type Client struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Log        *zap.Logger
}

// NewClient expects baseURL already normalized (https, no trailing slash).
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:    baseURL,
		Timeout:    timeout,
		HTTPClient: &http.Client{},
		Log:        logging.OrNop(log),
	}
}

var _ ports.Gateway = (*Client)(nil)

// ListPosts implements ports.Gateway
func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	body, err := c.do(ctx, http.MethodGet, "/posts", nil)
	if err != nil {
		return nil, err
	}

	var raw []ApiPost
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode posts: %v", domain.ErrRemoteUnavailable, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: posts body is null", domain.ErrRemoteUnavailable)
	}

	posts := make([]domain.Post, 0, len(raw))
	seen := make(map[FlexibleID]struct{}, len(raw))
	for i, p := range raw {
		if p.ID == "" || p.Content == nil {
			return nil, fmt.Errorf("%w: post %d is missing id or content", domain.ErrRemoteUnavailable, i)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: post %d repeats id %q", domain.ErrRemoteUnavailable, i, string(p.ID))
		}
		seen[p.ID] = struct{}{}
		posts = append(posts, domain.Post{
			ID:               string(p.ID),
			Content:          *p.Content,
			Username:         p.Username,
			CreatedAtDisplay: p.Time,
			AuthorID:         string(p.UserID),
		})
	}
	return posts, nil
}

// CreatePost implements ports.Gateway. Any valid JSON body counts as an
// acknowledgement; an echoed id is returned when present.
func (c *Client) CreatePost(ctx context.Context, authorID, content string) (ports.CreateAck, error) {
	body, err := c.do(ctx, http.MethodPost, "/post", CreatePostRequest{Content: content, UserID: authorID})
	if err != nil {
		return ports.CreateAck{}, err
	}
	if !json.Valid(body) {
		return ports.CreateAck{}, fmt.Errorf("%w: acknowledgement is not JSON", domain.ErrRemoteUnavailable)
	}

	var ack createAck
	if err := json.Unmarshal(body, &ack); err != nil {
		// Arrays, strings and odd id types still acknowledge the write.
		return ports.CreateAck{}, nil
	}
	return ports.CreateAck{ID: string(ack.ID)}, nil
}

// Rephrase implements ports.Rephraser
func (c *Client) Rephrase(ctx context.Context, content string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/rephrase", RephraseRequest{Content: content})
	if err != nil {
		return "", err
	}

	var res RephraseResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("%w: decode rephrase: %v", domain.ErrRemoteUnavailable, err)
	}
	if res.Rephrased == nil {
		return "", fmt.Errorf("%w: rephrase response has no rephrased field", domain.ErrRemoteUnavailable)
	}
	return *res.Rephrased, nil
}

// do sends one request bounded by c.Timeout and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: encode request: %v", domain.ErrRemoteUnavailable, err)
		}
		reqBody = bytes.NewReader(b)
	}

	url := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.Log.Debug("remote_request", zap.String("method", method), zap.String("url", url))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Log.Debug("remote_bad_status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: %s %s returned status %d", domain.ErrRemoteUnavailable, method, path, resp.StatusCode)
	}
	return body, nil
}

func (c *Client) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", domain.ErrTimeout, c.Timeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
}
