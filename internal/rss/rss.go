// Package rss is the alternate article source: a fixed list of feeds stands
// in for the news provider when no NewsAPI key is available.
package rss

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"newsbot/internal/config"
	"newsbot/internal/logger"
	"newsbot/internal/news"
	"newsbot/internal/quota"
	"newsbot/internal/state"
)

// FeedsConfig is the YAML config structure:
//
//	feeds:
//	  - https://...
type FeedsConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads the RSS feeds list from a YAML file.
func LoadFeeds(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds config: %w", err)
	}

	var cfg FeedsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse feeds config: %w", err)
	}
	if len(cfg.Feeds) == 0 {
		return nil, fmt.Errorf("feeds config %s lists no feeds", path)
	}
	return cfg.Feeds, nil
}

type Source struct {
	feeds    []string
	pageSize int
	parser   *gofeed.Parser
}

func NewSource(cfg *config.Config) (*Source, error) {
	feeds, err := LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		return nil, err
	}
	return &Source{
		feeds:    feeds,
		pageSize: cfg.NewsPageSize,
		parser:   gofeed.NewParser(),
	}, nil
}

// Fetch pulls every configured feed and maps the items into the common
// article shape. One round across all feeds counts as a single fetch against
// the monthly budget, the same gate a provider query goes through. A feed
// that fails to parse is skipped; the round fails only if every feed fails.
func (s *Source) Fetch(ctx context.Context, st *state.RunState, tracker *quota.Tracker) ([]news.Article, error) {
	if !tracker.CanFetch(st) {
		return nil, news.ErrQuotaExceeded
	}

	var articles []news.Article
	failed := 0

	for _, url := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			logger.Warn("failed to parse feed", "url", url, "error", err)
			failed++
			continue
		}

		for _, item := range feed.Items {
			if len(articles) >= s.pageSize {
				break
			}
			articles = append(articles, itemToArticle(feed, item))
		}
	}

	if failed == len(s.feeds) {
		return nil, fmt.Errorf("all %d feeds failed to parse", failed)
	}

	tracker.RecordFetch(st)
	logger.Info("retrieved feed articles", "count", len(articles), "feeds", len(s.feeds)-failed)
	return articles, nil
}

func itemToArticle(feed *gofeed.Feed, item *gofeed.Item) news.Article {
	author := ""
	if len(item.Authors) > 0 {
		author = item.Authors[0].Name
	}
	if author == "" {
		author = feed.Title
	}

	description := stripHTML(item.Description)
	content := stripHTML(item.Content)
	if content == "" {
		// Most feeds only carry a description.
		content = description
	}

	return news.Article{
		Source:      feed.Title,
		Author:      author,
		Title:       strings.TrimSpace(item.Title),
		Description: description,
		URL:         item.Link,
		Content:     content,
		PublishedAt: item.Published,
	}
}

// stripHTML flattens feed HTML into plain text.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	text := doc.Text()
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}
