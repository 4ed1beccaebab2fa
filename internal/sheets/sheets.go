// Package sheets persists run state in a Google Sheet used as an append-only
// row store. The sheet is the only source of truth across restarts; all
// parsing quirks of the tabular format stay inside this package.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"newsbot/internal/config"
	"newsbot/internal/logger"
	"newsbot/internal/retry"
	"newsbot/internal/state"
)

var expectedHeaders = []string{"url", "timestamp", "news_api_requests", "tweets_today", "tweets_this_month", "last_tweet_time"}

// rowStore is the slice of the spreadsheet API the adapter needs. The Google
// implementation is below; tests substitute an in-memory one.
type rowStore interface {
	ReadAll(ctx context.Context) ([][]string, error)
	AppendRow(ctx context.Context, row []string) error
}

type googleRowStore struct {
	svc       *sheetsapi.Service
	sheetID   string
	readRange string
}

func (g *googleRowStore) ReadAll(ctx context.Context) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.sheetID, g.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet values: %w", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (g *googleRowStore) AppendRow(ctx context.Context, row []string) error {
	values := make([]interface{}, len(row))
	for i, cell := range row {
		values[i] = cell
	}

	vr := &sheetsapi.ValueRange{Values: [][]interface{}{values}}
	_, err := g.svc.Spreadsheets.Values.Append(g.sheetID, g.readRange, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append sheet row: %w", err)
	}
	return nil
}

// Store reads and appends RunState rows.
type Store struct {
	rows  rowStore
	retry retry.Config
	now   func() time.Time
}

// NewStore builds a Store backed by the Google Sheets API.
func NewStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsJSON(cfg.SheetCredentials.JSON()),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return &Store{
		rows: &googleRowStore{
			svc:       svc,
			sheetID:   cfg.SheetID,
			readRange: cfg.SheetRange,
		},
		retry: retry.Config{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
			Backoff:     true,
		},
		now: time.Now,
	}, nil
}

// Load reconstructs the run state from the whole row set. The posted-URL set
// is the union of every row's url column; the counters and the last post
// time come from the last row only. An empty sheet is initialized with the
// header row. Any transport failure is surfaced to the caller.
func (s *Store) Load(ctx context.Context) (*state.RunState, error) {
	var rows [][]string
	err := retry.Do(ctx, s.retry, func() error {
		var rerr error
		rows, rerr = s.rows.ReadAll(ctx)
		return rerr
	})
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		logger.Info("sheet is empty, writing header row")
		if err := s.rows.AppendRow(ctx, expectedHeaders); err != nil {
			return nil, err
		}
		return state.NewRunState(), nil
	}

	headers := rows[0]
	if !headersMatch(headers) {
		logger.Warn("sheet headers do not match expected schema",
			"existing", headers, "expected", expectedHeaders)
	}

	if len(rows) == 1 {
		logger.Info("sheet only contains headers, no data yet")
		return state.NewRunState(), nil
	}

	cols, ok := columnIndex(headers)
	if !ok {
		// Cannot even locate the columns by name; fail safe.
		logger.Warn("required columns missing from sheet, starting from zero state")
		return state.NewRunState(), nil
	}

	st := state.NewRunState()
	data := rows[1:]
	for _, row := range data {
		st.MarkPosted(cell(row, cols["url"]))
	}

	last := data[len(data)-1]
	st.NewsAPIRequests = parseCount(cell(last, cols["news_api_requests"]))
	st.TweetsToday = parseCount(cell(last, cols["tweets_today"]))
	st.TweetsThisMonth = parseCount(cell(last, cols["tweets_this_month"]))

	if raw := cell(last, cols["last_tweet_time"]); raw != "" {
		if ts, err := parseTime(raw); err == nil {
			st.LastTweetTime = ts
			st.HasLastTweetTime = true
		} else {
			logger.Warn("unparseable last_tweet_time in sheet", "value", raw)
		}
	}

	logger.Debug("state loaded from sheet",
		"posted_urls", len(st.PostedURLs),
		"news_api_requests", st.NewsAPIRequests,
		"tweets_today", st.TweetsToday,
		"tweets_this_month", st.TweetsThisMonth)

	return st, nil
}

// Append writes exactly one new row reflecting the post-cycle counters and
// the newly posted URL. Existing rows are never touched.
func (s *Store) Append(ctx context.Context, st *state.RunState, newURL string) error {
	lastTweet := ""
	if st.HasLastTweetTime {
		lastTweet = st.LastTweetTime.Format(time.RFC3339)
	}

	row := []string{
		newURL,
		s.now().Format(time.RFC3339),
		strconv.Itoa(st.NewsAPIRequests),
		strconv.Itoa(st.TweetsToday),
		strconv.Itoa(st.TweetsThisMonth),
		lastTweet,
	}

	return retry.Do(ctx, s.retry, func() error {
		return s.rows.AppendRow(ctx, row)
	})
}

func headersMatch(headers []string) bool {
	if len(headers) != len(expectedHeaders) {
		return false
	}
	for i, h := range expectedHeaders {
		if headers[i] != h {
			return false
		}
	}
	return true
}

// columnIndex resolves column positions by header name, so a sheet with
// reordered or extra columns still loads.
func columnIndex(headers []string) (map[string]int, bool) {
	cols := make(map[string]int, len(expectedHeaders))
	for i, h := range headers {
		cols[h] = i
	}
	for _, want := range expectedHeaders {
		if _, ok := cols[want]; !ok {
			return nil, false
		}
	}
	return cols, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseCount reads a counter cell, falling back to 0 on garbage rather than
// failing the whole load.
func parseCount(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseTime(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		ts, err := time.Parse(layout, raw)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
