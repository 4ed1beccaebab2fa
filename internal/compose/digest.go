package compose

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"

	"newsbot/internal/news"
)

const (
	summaryBudgetRunes = 180
	maxHashtags        = 3
	maxHashtagRunes    = 20
	maxPhraseWords     = 2
)

// Digest builds an extractive summary of title+description and appends up to
// three hashtags mined from the same text.
type Digest struct{}

func (Digest) Compose(_ context.Context, a news.Article) (string, error) {
	fullText := fmt.Sprintf("%s. %s", strings.TrimSpace(a.Title), strings.TrimSpace(a.Description))

	doc, err := prose.NewDocument(fullText)
	if err != nil {
		return "", fmt.Errorf("failed to analyze article text: %w", err)
	}

	summary := summarize(doc, summaryBudgetRunes)
	hashtags := generateHashtags(doc)

	text := fmt.Sprintf("%s\n%s\n%s", summary, a.URL, strings.Join(hashtags, " "))
	return Truncate(text, TweetMaxRunes), nil
}

// summarize greedily concatenates whole sentences while the running length
// stays within the budget. Sentences are never split.
func summarize(doc *prose.Document, budget int) string {
	var b strings.Builder
	for _, sent := range doc.Sentences() {
		if utf8.RuneCountInString(b.String())+utf8.RuneCountInString(sent.Text) > budget {
			break
		}
		b.WriteString(sent.Text)
		b.WriteString(" ")
	}
	return strings.TrimSpace(b.String())
}

// generateHashtags extracts named entities and short noun phrases, ranks
// them by frequency (then brevity) and formats the top ones as hashtags.
func generateHashtags(doc *prose.Document) []string {
	counts := make(map[string]int)

	for _, ent := range doc.Entities() {
		phrase := strings.ToLower(strings.TrimSpace(ent.Text))
		if phrase != "" {
			counts[phrase]++
		}
	}
	for _, phrase := range nounPhrases(doc) {
		counts[phrase]++
	}

	phrases := make([]string, 0, len(counts))
	for phrase := range counts {
		phrases = append(phrases, phrase)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if counts[phrases[i]] != counts[phrases[j]] {
			return counts[phrases[i]] > counts[phrases[j]]
		}
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) < len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})

	var hashtags []string
	seen := make(map[string]struct{})
	for _, phrase := range phrases {
		if len(hashtags) >= maxHashtags {
			break
		}

		tag := formatHashtag(phrase)
		if tag == "#" || utf8.RuneCountInString(tag) > maxHashtagRunes {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		hashtags = append(hashtags, tag)
	}
	return hashtags
}

// nounPhrases returns consecutive noun-tag runs of at most two words,
// lowercased.
func nounPhrases(doc *prose.Document) []string {
	var phrases []string
	var run []string

	flush := func() {
		if len(run) > 0 && len(run) <= maxPhraseWords {
			phrases = append(phrases, strings.ToLower(strings.Join(run, " ")))
		}
		run = nil
	}

	for _, tok := range doc.Tokens() {
		if strings.HasPrefix(tok.Tag, "NN") {
			run = append(run, tok.Text)
			continue
		}
		flush()
	}
	flush()

	return phrases
}

// formatHashtag title-cases each word, drops everything non-alphanumeric and
// prefixes the result with '#'.
func formatHashtag(phrase string) string {
	var b strings.Builder
	b.WriteString("#")

	for _, word := range strings.Fields(phrase) {
		first := true
		for _, r := range word {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				continue
			}
			if first {
				b.WriteRune(unicode.ToUpper(r))
				first = false
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
