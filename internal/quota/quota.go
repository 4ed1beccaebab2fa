// Package quota gates news fetches and tweet posts against fixed budgets.
// Windows roll over lazily: counters reset based on the timestamp of the
// last successful post, not on a background timer, so a long process gap is
// handled the same as a one-hour one.
package quota

import (
	"time"

	"newsbot/internal/logger"
	"newsbot/internal/state"
)

type Tracker struct {
	monthlyFetchLimit int
	dailyPostLimit    int
	monthlyPostLimit  int
}

func NewTracker(monthlyFetchLimit, dailyPostLimit, monthlyPostLimit int) *Tracker {
	return &Tracker{
		monthlyFetchLimit: monthlyFetchLimit,
		dailyPostLimit:    dailyPostLimit,
		monthlyPostLimit:  monthlyPostLimit,
	}
}

// CanFetch reports whether another provider request fits the monthly budget.
func (t *Tracker) CanFetch(s *state.RunState) bool {
	if s.NewsAPIRequests >= t.monthlyFetchLimit {
		logger.Warn("monthly news request limit reached",
			"used", s.NewsAPIRequests, "limit", t.monthlyFetchLimit)
		return false
	}
	return true
}

// RecordFetch counts one provider request. A request that returned zero
// articles still counts.
func (t *Tracker) RecordFetch(s *state.RunState) {
	s.NewsAPIRequests++
	logger.Debug("news request recorded",
		"used", s.NewsAPIRequests, "limit", t.monthlyFetchLimit)
}

// Rollover resets the post counters whose window boundary was crossed since
// the last successful post. The day and month checks are independent.
// Calling it again with the same now is a no-op.
func (t *Tracker) Rollover(s *state.RunState, now time.Time) {
	if !s.HasLastTweetTime {
		return
	}

	last := s.LastTweetTime
	ny, nm, nd := now.Date()
	ly, lm, ld := last.Date()

	if ny != ly || nm != lm || nd != ld {
		if s.TweetsToday != 0 {
			logger.Info("daily tweet counter reset", "was", s.TweetsToday)
		}
		s.TweetsToday = 0
	}
	if ny != ly || nm != lm {
		if s.TweetsThisMonth != 0 {
			logger.Info("monthly tweet counter reset", "was", s.TweetsThisMonth)
		}
		s.TweetsThisMonth = 0
	}
}

// CanPost reports whether another tweet fits both post budgets.
func (t *Tracker) CanPost(s *state.RunState) bool {
	if s.TweetsToday >= t.dailyPostLimit {
		logger.Warn("daily tweet limit reached",
			"used", s.TweetsToday, "limit", t.dailyPostLimit)
		return false
	}
	if s.TweetsThisMonth >= t.monthlyPostLimit {
		logger.Warn("monthly tweet limit reached",
			"used", s.TweetsThisMonth, "limit", t.monthlyPostLimit)
		return false
	}
	return true
}

// RecordPost counts one published tweet and stamps the post time.
func (t *Tracker) RecordPost(s *state.RunState, now time.Time) {
	s.TweetsToday++
	s.TweetsThisMonth++
	s.LastTweetTime = now
	s.HasLastTweetTime = true
	logger.Debug("tweet recorded",
		"today", s.TweetsToday, "month", s.TweetsThisMonth)
}
