// Package twitter publishes tweet text through the v2 API. Two clients are
// supported: an OAuth1-signing one built from the four consumer/access
// credentials, and one that sends a pre-signed Authorization header.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dghubble/oauth1"

	"newsbot/internal/config"
	"newsbot/internal/logger"
)

const tweetEndpoint = "https://api.twitter.com/2/tweets"

// PublishError is a platform rejection or transport-level failure, carrying
// whatever diagnostic detail the API returned.
type PublishError struct {
	StatusCode int
	Body       string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("twitter API error: status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	authHeader string // set only for the pre-signed variant
}

// NewOAuth1Client signs every request with the consumer and access secrets.
func NewOAuth1Client(cfg *config.Config) *Client {
	oauthCfg := oauth1.NewConfig(cfg.TwitterAPIKey, cfg.TwitterAPISecret)
	token := oauth1.NewToken(cfg.TwitterAccessToken, cfg.TwitterAccessSecret)

	httpClient := oauthCfg.Client(oauth1.NoContext, token)
	httpClient.Timeout = cfg.RequestTimeout

	return &Client{
		httpClient: httpClient,
		endpoint:   tweetEndpoint,
	}
}

// NewHeaderClient sends a pre-baked Authorization header supplied
// out-of-band instead of signing requests itself.
func NewHeaderClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		endpoint:   tweetEndpoint,
		authHeader: cfg.TwitterAuthHeader,
	}
}

// Publish posts one tweet. Any non-2xx response becomes a PublishError with
// the response status and body.
func (c *Client) Publish(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("refusing to publish empty text")
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal tweet payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build tweet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tweet request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("failed to close tweet response body", "error", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &PublishError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	logger.Info("tweet posted", "status", resp.StatusCode)
	return nil
}
