// Package compose turns a selected article into final tweet text. Two local
// strategies (plain, digest) and one AI-backed strategy (gemini) share the
// same hard length ceiling.
package compose

import (
	"context"
	"fmt"

	"newsbot/internal/news"
)

// TweetMaxRunes is the platform ceiling for a single post.
const TweetMaxRunes = 280

type Composer interface {
	Compose(ctx context.Context, a news.Article) (string, error)
}

// Plain concatenates the raw article fields without summarization.
type Plain struct{}

func (Plain) Compose(_ context.Context, a news.Article) (string, error) {
	text := fmt.Sprintf("%s: %s\n%s\nLink: %s", a.Author, a.Title, a.Description, a.URL)
	return Truncate(text, TweetMaxRunes), nil
}

// Truncate enforces the length ceiling in runes. Over-long text is cut to
// limit-3 and closed with an ellipsis marker, so the result is exactly limit
// runes long.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
