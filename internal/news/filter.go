package news

import (
	"strings"

	"newsbot/internal/logger"
	"newsbot/internal/metrics"
	"newsbot/internal/state"
)

const (
	// Provider-side takedown sentinel: the article was removed but still
	// appears in results with this title.
	removedMarker = "[Removed]"

	// Some outlets serve their cookie wall instead of the article body.
	cookieWallMarker = "If you click 'Accept all', we and our partners"
)

// IsValid rejects articles with missing fields, already-posted URLs, removed
// content and cookie-wall boilerplate.
func IsValid(a Article, st *state.RunState) bool {
	if a.Title == "" || a.Description == "" || a.Content == "" || a.URL == "" {
		return false
	}
	if st.HasPosted(a.URL) {
		return false
	}
	if strings.Contains(a.Title, removedMarker) {
		return false
	}
	if strings.Contains(a.Description, cookieWallMarker) || strings.Contains(a.Content, cookieWallMarker) {
		return false
	}
	return true
}

// Select scans the candidates in provider order and returns the first valid
// one. nil means nothing to post this cycle, which is a normal outcome.
func Select(articles []Article, st *state.RunState) *Article {
	for i := range articles {
		if IsValid(articles[i], st) {
			return &articles[i]
		}
		metrics.Global.IncrementArticlesRejected()
	}
	logger.Info("no valid unposted article among candidates", "candidates", len(articles))
	return nil
}
