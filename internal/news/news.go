// Package news fetches candidate articles from NewsAPI and picks the first
// one worth posting.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"newsbot/internal/config"
	"newsbot/internal/logger"
	"newsbot/internal/quota"
	"newsbot/internal/state"
)

// ErrQuotaExceeded means the monthly request budget is spent; the provider
// was not called.
var ErrQuotaExceeded = errors.New("monthly news request quota exceeded")

type Article struct {
	Source      string
	Author      string
	Title       string
	Description string
	URL         string
	Content     string
	PublishedAt string
}

type apiResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Content     string `json:"content"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

type Client struct {
	apiKey     string
	query      string
	language   string
	pageSize   int
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey:     cfg.NewsAPIKey,
		query:      cfg.NewsQuery,
		language:   cfg.NewsLanguage,
		pageSize:   cfg.NewsPageSize,
		baseURL:    "https://newsapi.org/v2/everything",
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// Fetch queries the provider for one page of candidates, ranked by the
// provider's popularity ordering. It returns ErrQuotaExceeded without a
// request when the monthly budget is spent, and records exactly one request
// against the budget on success, even when zero articles come back.
func (c *Client) Fetch(ctx context.Context, st *state.RunState, tracker *quota.Tracker) ([]Article, error) {
	if !tracker.CanFetch(st) {
		return nil, ErrQuotaExceeded
	}

	params := url.Values{}
	params.Set("q", c.query)
	params.Set("language", c.language)
	params.Set("sortBy", "popularity")
	params.Set("page", "1")
	params.Set("pageSize", strconv.Itoa(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build news request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("failed to close news response body", "error", cerr)
		}
	}()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode news response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return nil, fmt.Errorf("news provider error: status %d, code %q: %s",
			resp.StatusCode, body.Code, body.Message)
	}

	tracker.RecordFetch(st)

	articles := make([]Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		articles = append(articles, Article{
			Source:      a.Source.Name,
			Author:      a.Author,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Content:     a.Content,
			PublishedAt: a.PublishedAt,
		})
	}

	logger.Info("retrieved news articles", "count", len(articles))
	return articles, nil
}
