// Package app wires the pipeline together and runs the posting cycle:
// load state → fetch gate → fetch → select → compose → post gate → publish →
// persist. Any gate failure or empty result ends the cycle early with a
// logged reason and no store mutation.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"newsbot/internal/compose"
	"newsbot/internal/config"
	"newsbot/internal/gemini"
	"newsbot/internal/logger"
	"newsbot/internal/metrics"
	"newsbot/internal/news"
	"newsbot/internal/quota"
	"newsbot/internal/rss"
	"newsbot/internal/sheets"
	"newsbot/internal/state"
	"newsbot/internal/twitter"
)

// StateStore is the persisted-state collaborator.
type StateStore interface {
	Load(ctx context.Context) (*state.RunState, error)
	Append(ctx context.Context, st *state.RunState, newURL string) error
}

// ArticleSource yields candidate articles in provider relevance order.
type ArticleSource interface {
	Fetch(ctx context.Context, st *state.RunState, tracker *quota.Tracker) ([]news.Article, error)
}

// Publisher submits final post text to the platform.
type Publisher interface {
	Publish(ctx context.Context, text string) error
}

type App struct {
	cfg       *config.Config
	store     StateStore
	source    ArticleSource
	tracker   *quota.Tracker
	composer  compose.Composer
	publisher Publisher
	now       func() time.Time

	geminiClient *gemini.Client
}

// New builds the pipeline from configuration.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := sheets.NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		store:   store,
		tracker: quota.NewTracker(cfg.MonthlyFetchLimit, cfg.DailyPostLimit, cfg.MonthlyPostLimit),
		now:     time.Now,
	}

	switch cfg.NewsProvider {
	case "rss":
		src, err := rss.NewSource(cfg)
		if err != nil {
			return nil, err
		}
		a.source = src
	default:
		a.source = news.NewClient(cfg)
	}

	switch cfg.Composer {
	case "plain":
		a.composer = compose.Plain{}
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		a.geminiClient = client
		a.composer = compose.Gemini{Backend: client}
	default:
		a.composer = compose.Digest{}
	}

	if cfg.HasOAuth1Keys() {
		a.publisher = twitter.NewOAuth1Client(cfg)
	} else {
		a.publisher = twitter.NewHeaderClient(cfg)
	}

	return a, nil
}

func (a *App) Close() {
	if a.geminiClient != nil {
		a.geminiClient.Close()
	}
}

// RunOnce executes a single posting cycle. Quota gates, empty results,
// provider errors and publish failures end the cycle quietly; only a store
// failure is returned as an error, since without the sheet no durable state
// can be trusted.
func (a *App) RunOnce(ctx context.Context) error {
	start := a.now()
	metrics.Global.IncrementCyclesRun()

	st, err := a.store.Load(ctx)
	if err != nil {
		metrics.Global.IncrementStoreErrors()
		return fmt.Errorf("failed to load state: %w", err)
	}

	// Lazy window rollover, before any gate. Not persisted unless a post
	// succeeds this cycle; a quiet cycle recomputes it from the sheet next
	// time.
	a.tracker.Rollover(st, a.now())

	articles, err := a.source.Fetch(ctx, st, a.tracker)
	if err != nil {
		if errors.Is(err, news.ErrQuotaExceeded) {
			metrics.Global.IncrementQuotaSkips()
			logger.Warn("skipping cycle: fetch quota exhausted")
			return nil
		}
		metrics.Global.IncrementFetchErrors()
		logger.Error("news fetch failed, no articles this cycle", "error", err)
		return nil
	}
	metrics.Global.AddArticlesFetched(len(articles))

	article := news.Select(articles, st)
	if article == nil {
		return nil
	}

	text, err := a.composer.Compose(ctx, *article)
	if err != nil {
		logger.Error("failed to compose post text", "error", err, "url", article.URL)
		return nil
	}
	logger.Debug("composed post text", "length", len(text), "url", article.URL)

	if !a.tracker.CanPost(st) {
		metrics.Global.IncrementQuotaSkips()
		logger.Warn("skipping cycle: post quota exhausted")
		return nil
	}

	if err := a.publisher.Publish(ctx, text); err != nil {
		metrics.Global.IncrementPublishErrors()
		logger.Error("publish failed, no state change this cycle", "error", err)
		return nil
	}

	// Persist only after a successful publish: one appended row, reflecting
	// the post-cycle counters and the new URL.
	a.tracker.RecordPost(st, a.now())
	st.MarkPosted(article.URL)

	if err := a.store.Append(ctx, st, article.URL); err != nil {
		metrics.Global.IncrementStoreErrors()
		return fmt.Errorf("tweet posted but state append failed: %w", err)
	}

	metrics.Global.IncrementTweetsPosted()
	metrics.Global.SetLastRun()
	metrics.Global.RecordCycleTime(a.now().Sub(start))
	logger.Info("cycle complete, tweet posted", "url", article.URL)
	return nil
}

// Run loops RunOnce on the configured interval until the context is
// cancelled. A store failure aborts the current cycle but not the loop; the
// next tick starts from a fresh sheet read.
func (a *App) Run(ctx context.Context) {
	if err := a.RunOnce(ctx); err != nil {
		metrics.Global.SetError(err.Error())
		logger.Error("cycle failed", "error", err)
	}

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("run loop stopped")
			return
		case <-ticker.C:
			if err := a.RunOnce(ctx); err != nil {
				metrics.Global.SetError(err.Error())
				logger.Error("cycle failed", "error", err)
			}
		}
	}
}
