package compose

import (
	"context"
	"fmt"

	"newsbot/internal/news"
)

// Summarizer is the AI backend the Gemini strategy delegates to.
type Summarizer interface {
	Summarize(ctx context.Context, title, description string) (string, error)
}

// Gemini composes an abstractive summary followed by the article link.
type Gemini struct {
	Backend Summarizer
}

func (g Gemini) Compose(ctx context.Context, a news.Article) (string, error) {
	summary, err := g.Backend.Summarize(ctx, a.Title, a.Description)
	if err != nil {
		return "", fmt.Errorf("gemini compose failed: %w", err)
	}

	text := fmt.Sprintf("%s\n%s", summary, a.URL)
	return Truncate(text, TweetMaxRunes), nil
}
