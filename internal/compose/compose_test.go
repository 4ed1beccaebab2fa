package compose

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"newsbot/internal/news"
)

func TestTruncateShortTextUnchanged(t *testing.T) {
	in := "short enough"
	if got := Truncate(in, TweetMaxRunes); got != in {
		t.Errorf("short text was modified: %q", got)
	}
}

func TestTruncateExactLimitUnchanged(t *testing.T) {
	in := strings.Repeat("x", TweetMaxRunes)
	if got := Truncate(in, TweetMaxRunes); got != in {
		t.Errorf("text at exactly the limit was modified")
	}
}

func TestTruncateOverLongText(t *testing.T) {
	in := strings.Repeat("abcde ", 100)
	got := Truncate(in, TweetMaxRunes)

	if n := utf8.RuneCountInString(got); n != TweetMaxRunes {
		t.Errorf("truncated length = %d runes, want exactly %d", n, TweetMaxRunes)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated text does not end in ellipsis: %q", got)
	}
	if !strings.HasPrefix(in, strings.TrimSuffix(got, "...")) {
		t.Errorf("truncated text is not a prefix of the original")
	}
}

func TestTruncateCountsRunesNotBytes(t *testing.T) {
	in := strings.Repeat("ü", TweetMaxRunes+10)
	got := Truncate(in, TweetMaxRunes)

	if n := utf8.RuneCountInString(got); n != TweetMaxRunes {
		t.Errorf("truncated length = %d runes, want %d", n, TweetMaxRunes)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncation split a rune")
	}
}

func TestPlainComposerFormat(t *testing.T) {
	a := news.Article{
		Author:      "A. Reporter",
		Title:       "Senate passes budget bill",
		Description: "The chamber voted 52-48.",
		URL:         "https://news.example/budget",
	}

	got, err := Plain{}.Compose(context.Background(), a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "A. Reporter: Senate passes budget bill\nThe chamber voted 52-48.\nLink: https://news.example/budget"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPlainComposerTruncatesOverLongText(t *testing.T) {
	a := news.Article{
		Author:      "A. Reporter",
		Title:       strings.Repeat("very long title ", 30),
		Description: strings.Repeat("even longer description ", 30),
		URL:         "https://news.example/budget",
	}

	got, err := Plain{}.Compose(context.Background(), a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := utf8.RuneCountInString(got); n != TweetMaxRunes {
		t.Errorf("composed length = %d runes, want %d", n, TweetMaxRunes)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("over-long plain text not closed with ellipsis")
	}
}

func TestFormatHashtag(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"white house", "#WhiteHouse"},
		{"senate", "#Senate"},
		{"biden's plan", "#BidensPlan"},
		{"u.s. congress", "#UsCongress"},
		{"---", "#"},
		{"", "#"},
	}

	for _, c := range cases {
		if got := formatHashtag(c.in); got != c.want {
			t.Errorf("formatHashtag(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDigestComposerOutputShape(t *testing.T) {
	a := news.Article{
		Title:       "Senate passes budget bill after marathon session",
		Description: "The Senate approved the budget late on Tuesday. The vote was 52-48. Senators debated for fourteen hours before the Senate vote.",
		URL:         "https://news.example/budget",
	}

	got, err := Digest{}.Compose(context.Background(), a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if utf8.RuneCountInString(got) > TweetMaxRunes {
		t.Errorf("composed text exceeds %d runes: %d", TweetMaxRunes, utf8.RuneCountInString(got))
	}
	if !strings.Contains(got, a.URL) {
		t.Errorf("composed text is missing the article URL: %q", got)
	}

	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want summary/url/hashtags: %q", len(lines), got)
	}
	if lines[1] != a.URL {
		t.Errorf("second line = %q, want the URL", lines[1])
	}

	for _, tag := range strings.Fields(lines[2]) {
		if !strings.HasPrefix(tag, "#") {
			t.Errorf("hashtag %q missing # prefix", tag)
		}
		if utf8.RuneCountInString(tag) > 20 {
			t.Errorf("hashtag %q longer than 20 runes", tag)
		}
		for _, r := range tag[1:] {
			if !isAlnum(r) {
				t.Errorf("hashtag %q contains non-alphanumeric rune %q", tag, r)
			}
		}
	}
	if n := len(strings.Fields(lines[2])); n > 3 {
		t.Errorf("got %d hashtags, want at most 3", n)
	}
}

func TestDigestSummaryNeverSplitsSentences(t *testing.T) {
	a := news.Article{
		Title:       "First sentence here",
		Description: "Second sentence is also short. Third sentence pushes the running total well past the soft budget because it is deliberately stuffed with filler words that go on and on and on without adding any information at all. Fourth sentence.",
		URL:         "https://news.example/long",
	}

	got, err := Digest{}.Compose(context.Background(), a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary := strings.Split(got, "\n")[0]
	if utf8.RuneCountInString(summary) > summaryBudgetRunes {
		t.Errorf("summary is %d runes, want <= %d", utf8.RuneCountInString(summary), summaryBudgetRunes)
	}
	if strings.Contains(summary, "filler words that go") && !strings.Contains(summary, "at all.") {
		t.Errorf("summary contains a split sentence: %q", summary)
	}
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
