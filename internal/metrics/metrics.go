package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	CyclesRun        int64
	ArticlesFetched  int64
	ArticlesRejected int64
	TweetsPosted     int64
	FetchErrors      int64
	PublishErrors    int64
	StoreErrors      int64
	QuotaSkips       int64

	// Timings
	LastCycleTime    time.Duration
	AverageCycleTime time.Duration
	TotalCycleTime   time.Duration
	CycleCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementCyclesRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CyclesRun++
}

func (m *Metrics) AddArticlesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += int64(n)
}

func (m *Metrics) IncrementArticlesRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesRejected++
}

func (m *Metrics) IncrementTweetsPosted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TweetsPosted++
}

func (m *Metrics) IncrementFetchErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchErrors++
}

func (m *Metrics) IncrementPublishErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishErrors++
}

func (m *Metrics) IncrementStoreErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoreErrors++
}

func (m *Metrics) IncrementQuotaSkips() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuotaSkips++
}

func (m *Metrics) RecordCycleTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastCycleTime = duration
	m.TotalCycleTime += duration
	m.CycleCount++

	if m.CycleCount > 0 {
		m.AverageCycleTime = m.TotalCycleTime / time.Duration(m.CycleCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"cycles_run":            m.CyclesRun,
		"articles_fetched":      m.ArticlesFetched,
		"articles_rejected":     m.ArticlesRejected,
		"tweets_posted":         m.TweetsPosted,
		"fetch_errors":          m.FetchErrors,
		"publish_errors":        m.PublishErrors,
		"store_errors":          m.StoreErrors,
		"quota_skips":           m.QuotaSkips,
		"last_cycle_time_ms":    m.LastCycleTime.Milliseconds(),
		"average_cycle_time_ms": m.AverageCycleTime.Milliseconds(),
		"last_run_time":         m.LastRunTime.Format(time.RFC3339),
		"last_error_time":       m.LastErrorTime.Format(time.RFC3339),
		"last_error":            m.LastError,
		"is_healthy":            m.IsHealthy,
	}
}
