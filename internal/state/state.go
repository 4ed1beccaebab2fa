// Package state holds the run counters and posted-URL set loaded from the
// sheet at the start of a cycle and written back only after a successful post.
package state

import "time"

// RunState is the bot's persistent state. Counters come from the last sheet
// row, the URL set from every row.
type RunState struct {
	PostedURLs map[string]struct{}

	NewsAPIRequests int
	TweetsToday     int
	TweetsThisMonth int

	// LastTweetTime anchors day and month rollover. HasLastTweetTime is
	// false on a fresh sheet, where no rollover applies.
	LastTweetTime    time.Time
	HasLastTweetTime bool
}

func NewRunState() *RunState {
	return &RunState{PostedURLs: map[string]struct{}{}}
}

// HasPosted reports whether the URL appears in any prior sheet row.
func (s *RunState) HasPosted(url string) bool {
	_, ok := s.PostedURLs[url]
	return ok
}

// MarkPosted adds a URL to the posted set. Empty URLs are ignored so a blank
// sheet cell cannot poison dedup.
func (s *RunState) MarkPosted(url string) {
	if url == "" {
		return
	}
	s.PostedURLs[url] = struct{}{}
}
