// Package gemini wraps the generative model used by the optional AI
// composer strategy.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	modelName     = "gemini-1.5-flash"
	maxInputRunes = 6000
	summaryBudget = 200
)

type Client struct {
	client *genai.Client
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Summarize produces a short, tweet-ready abstract of the article text.
func (c *Client) Summarize(ctx context.Context, title, description string) (string, error) {
	model := c.client.GenerativeModel(modelName)

	text := sanitizeInput(fmt.Sprintf("%s. %s", title, description))

	prompt := fmt.Sprintf(`Summarize the following news item in at most %d characters.
Plain prose, one or two sentences, no hashtags, no links, no preamble like "This article says".

%s`, summaryBudget, text)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	summary := strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if summary == "" {
		return "", fmt.Errorf("empty summary from Gemini")
	}
	return summary, nil
}

// sanitizeInput collapses whitespace and bounds the prompt size, cutting at
// a sentence end where possible.
func sanitizeInput(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.Join(strings.Fields(text), " ")

	if utf8.RuneCountInString(text) <= maxInputRunes {
		return text
	}

	runes := []rune(text)
	trimmed := string(runes[:maxInputRunes])
	if idx := strings.LastIndex(trimmed, ". "); idx > maxInputRunes/4 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed
}
