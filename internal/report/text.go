package report

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/tasklist/tasklist/internal/trello"
)

// Moods returned by SentimentByWeek.
const (
	Positive = "Positive"
	Negative = "Negative"
	Neutral  = "Neutral"
)

// KeywordCount is how many keywords the keyword report lists.
const KeywordCount = 10

// Weekly average score beyond which a week is not neutral.
const moodThreshold = 0.2

var stopWords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and",
	"any", "are", "aren't", "as", "at", "be", "because", "been", "before", "being",
	"below", "between", "both", "but", "by", "can't", "cannot", "could", "couldn't",
	"d", "did", "didn't", "do", "does", "doesn't", "doing", "don't", "down", "during",
	"each", "few", "for", "from", "further", "had", "hadn't", "has", "hasn't", "have",
	"haven't", "having", "he", "he'd", "he'll", "he's", "her", "here", "here's",
	"hers", "herself", "him", "himself", "his", "how", "how's", "i", "i'd", "i'll",
	"i'm", "i've", "if", "in", "into", "is", "isn't", "it", "it's", "its", "itself",
	"let's", "ll", "m", "me", "more", "most", "mustn't", "my", "myself", "no", "nor",
	"not", "of", "off", "on", "once", "only", "or", "other", "ought", "our", "ours",
	"ourselves", "out", "over", "own", "re", "s", "same", "shan't", "she", "she'd",
	"she'll", "she's", "should", "shouldn't", "so", "some", "such", "t", "than",
	"that", "that's", "the", "their", "theirs", "them", "themselves", "then",
	"there", "there's", "these", "they", "they'd", "they'll", "they're", "they've",
	"this", "those", "through", "to", "too", "under", "until", "up", "ve", "very",
	"was", "wasn't", "we", "we'd", "we'll", "we're", "we've", "were", "weren't",
	"what", "what's", "when", "when's", "where", "where's", "which", "while",
	"who", "who's", "whom", "why", "why's", "with", "won't", "would", "wouldn't",
	"you", "you'd", "you'll", "you're", "you've", "your", "yours", "yourself",
	"yourselves",
)

var (
	positiveWords = toSet("complete", "completed", "done", "finished", "good", "great", "success", "achieved")
	negativeWords = toSet("bug", "error", "fail", "failed", "problem", "issue", "fix", "urgent")
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Keyword is a word and how often it appears across card names.
type Keyword struct {
	Word  string
	Count int
}

// TopKeywords returns the n most frequent non-stop words in card names.
// Words with equal counts keep the order they were first seen in.
func TopKeywords(cards []trello.Card, n int) []Keyword {
	counts := make(map[string]int)
	var order []string

	for _, c := range cards {
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
				return unicode.ToLower(r)
			}
			return ' '
		}, c.Name)

		for _, w := range strings.Fields(cleaned) {
			if _, stop := stopWords[w]; stop {
				continue
			}
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	keywords := make([]Keyword, 0, len(order))
	for _, w := range order {
		keywords = append(keywords, Keyword{Word: w, Count: counts[w]})
	}
	sort.SliceStable(keywords, func(i, j int) bool { return keywords[i].Count > keywords[j].Count })

	if n >= 0 && len(keywords) > n {
		keywords = keywords[:n]
	}
	return keywords
}

// WeekMood is the sentiment of the cards created in one week.
type WeekMood struct {
	// Week is "YYYY-WW" with weeks starting on Sunday; days before the
	// first Sunday of the year are week 00.
	Week string
	Mood string
}

// SentimentByWeek scores every card name (+1 per distinct positive word,
// -1 per distinct negative word), groups cards by the week their id says they
// were created in (UTC) and classifies each week's average score.
// Cards with an undecodable id are skipped. Weeks are returned in order.
func SentimentByWeek(cards []trello.Card) []WeekMood {
	type tally struct{ score, count int }
	weeks := make(map[string]*tally)

	for _, c := range cards {
		created, err := c.CreatedAt()
		if err != nil {
			continue
		}
		week := fmt.Sprintf("%04d-%02d", created.Year(), (created.YearDay()-1+7-int(created.Weekday()))/7)

		t, ok := weeks[week]
		if !ok {
			t = &tally{}
			weeks[week] = t
		}
		t.score += scoreName(c.Name)
		t.count++
	}

	result := make([]WeekMood, 0, len(weeks))
	for week, t := range weeks {
		avg := float64(t.score) / float64(t.count)
		mood := Neutral
		switch {
		case avg > moodThreshold:
			mood = Positive
		case avg < -moodThreshold:
			mood = Negative
		}
		result = append(result, WeekMood{Week: week, Mood: mood})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Week < result[j].Week })
	return result
}

func scoreName(name string) int {
	score := 0
	for w := range toSet(strings.Fields(strings.ToLower(name))...) {
		if _, ok := positiveWords[w]; ok {
			score++
		}
		if _, ok := negativeWords[w]; ok {
			score--
		}
	}
	return score
}

// KeywordList renders the keyword report.
func KeywordList(keywords []Keyword) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n--- Top %d Keywords ---\n", KeywordCount)
	for _, k := range keywords {
		fmt.Fprintf(&b, "- %s: %d\n", k.Word, k.Count)
	}
	return b.String()
}

// SentimentList renders the weekly sentiment report.
func SentimentList(weeks []WeekMood) string {
	var b strings.Builder
	b.WriteString("\n--- Weekly Sentiment Analysis ---\n")
	for _, w := range weeks {
		fmt.Fprintf(&b, "- Week %s: %s\n", w.Week, w.Mood)
	}
	return b.String()
}
