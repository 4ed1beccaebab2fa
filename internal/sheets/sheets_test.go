package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsbot/internal/retry"
	"newsbot/internal/state"
)

type fakeRowStore struct {
	rows     [][]string
	appended [][]string
	readErr  error
	writeErr error
}

func (f *fakeRowStore) ReadAll(_ context.Context) ([][]string, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.rows, nil
}

func (f *fakeRowStore) AppendRow(_ context.Context, row []string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.appended = append(f.appended, row)
	return nil
}

func newTestStore(rows *fakeRowStore) *Store {
	return &Store{
		rows:  rows,
		retry: retry.Config{MaxAttempts: 1},
		now:   func() time.Time { return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC) },
	}
}

func TestLoadEmptySheetWritesHeaderAndReturnsZeroState(t *testing.T) {
	rows := &fakeRowStore{}
	store := newTestStore(rows)

	st, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.Empty(t, st.PostedURLs)
	assert.Zero(t, st.NewsAPIRequests)
	assert.Zero(t, st.TweetsToday)
	assert.Zero(t, st.TweetsThisMonth)
	assert.False(t, st.HasLastTweetTime)

	require.Len(t, rows.appended, 1)
	assert.Equal(t, expectedHeaders, rows.appended[0])
}

func TestLoadHeaderOnlySheet(t *testing.T) {
	rows := &fakeRowStore{rows: [][]string{expectedHeaders}}
	store := newTestStore(rows)

	st, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.Empty(t, st.PostedURLs)
	assert.Zero(t, st.NewsAPIRequests)
	assert.Empty(t, rows.appended, "no header should be re-written")
}

func TestLoadDerivesURLsFromAllRowsAndCountersFromLast(t *testing.T) {
	rows := &fakeRowStore{rows: [][]string{
		expectedHeaders,
		{"https://a.example/1", "2023-12-30T08:00:00Z", "3", "1", "8", "2023-12-30T08:00:00Z"},
		{"https://a.example/2", "2023-12-31T08:00:00Z", "4", "2", "9", "2023-12-31T08:00:00Z"},
		{"https://a.example/3", "2024-01-01T10:00:00Z", "5", "2", "10", "2024-01-01T10:00:00"},
	}}
	store := newTestStore(rows)

	st, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, st.PostedURLs, 3)
	assert.True(t, st.HasPosted("https://a.example/1"))
	assert.True(t, st.HasPosted("https://a.example/3"))

	assert.Equal(t, 5, st.NewsAPIRequests)
	assert.Equal(t, 2, st.TweetsToday)
	assert.Equal(t, 10, st.TweetsThisMonth)

	require.True(t, st.HasLastTweetTime)
	assert.True(t, st.LastTweetTime.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)),
		"last tweet time = %v", st.LastTweetTime)
}

func TestLoadMalformedCountersParseAsZero(t *testing.T) {
	rows := &fakeRowStore{rows: [][]string{
		expectedHeaders,
		{"https://a.example/1", "2024-01-01T10:00:00Z", "oops", "-4", "", "not-a-time"},
	}}
	store := newTestStore(rows)

	st, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.Zero(t, st.NewsAPIRequests)
	assert.Zero(t, st.TweetsToday)
	assert.Zero(t, st.TweetsThisMonth)
	assert.False(t, st.HasLastTweetTime)
	assert.True(t, st.HasPosted("https://a.example/1"))
}

func TestLoadReorderedColumnsResolvedByName(t *testing.T) {
	rows := &fakeRowStore{rows: [][]string{
		{"timestamp", "url", "tweets_today", "tweets_this_month", "news_api_requests", "last_tweet_time"},
		{"2024-01-01T10:00:00Z", "https://a.example/1", "2", "10", "5", "2024-01-01T10:00:00Z"},
	}}
	store := newTestStore(rows)

	st, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, st.HasPosted("https://a.example/1"))
	assert.Equal(t, 5, st.NewsAPIRequests)
	assert.Equal(t, 2, st.TweetsToday)
	assert.Equal(t, 10, st.TweetsThisMonth)
}

func TestLoadUnrecognizableHeadersFailSafeToZeroState(t *testing.T) {
	rows := &fakeRowStore{rows: [][]string{
		{"what", "is", "this"},
		{"https://a.example/1", "x", "y"},
	}}
	store := newTestStore(rows)

	st, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.Empty(t, st.PostedURLs)
	assert.Zero(t, st.NewsAPIRequests)
}

func TestLoadSkipsEmptyURLCells(t *testing.T) {
	rows := &fakeRowStore{rows: [][]string{
		expectedHeaders,
		{"", "2024-01-01T10:00:00Z", "1", "1", "1", ""},
		{"https://a.example/1", "2024-01-01T11:00:00Z", "2", "2", "2", ""},
	}}
	store := newTestStore(rows)

	st, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, st.PostedURLs, 1)
}

func TestLoadSurfacesReadErrors(t *testing.T) {
	rows := &fakeRowStore{readErr: errors.New("boom")}
	store := newTestStore(rows)

	_, err := store.Load(context.Background())
	require.Error(t, err)
}

func TestAppendWritesExactlyOneRow(t *testing.T) {
	rows := &fakeRowStore{rows: [][]string{expectedHeaders}}
	store := newTestStore(rows)

	st := state.NewRunState()
	st.NewsAPIRequests = 6
	st.TweetsToday = 3
	st.TweetsThisMonth = 11
	st.LastTweetTime = time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	st.HasLastTweetTime = true

	err := store.Append(context.Background(), st, "https://a.example/new")
	require.NoError(t, err)

	require.Len(t, rows.appended, 1)
	row := rows.appended[0]
	require.Len(t, row, 6)
	assert.Equal(t, "https://a.example/new", row[0])
	assert.Equal(t, "2024-01-02T12:00:00Z", row[1])
	assert.Equal(t, "6", row[2])
	assert.Equal(t, "3", row[3])
	assert.Equal(t, "11", row[4])
	assert.Equal(t, "2024-01-02T12:00:00Z", row[5])
}

func TestAppendSurfacesWriteErrors(t *testing.T) {
	rows := &fakeRowStore{writeErr: errors.New("quota exceeded")}
	store := newTestStore(rows)

	err := store.Append(context.Background(), state.NewRunState(), "https://a.example/new")
	require.Error(t, err)
}
