package report

import (
	"reflect"
	"strings"
	"testing"

	"github.com/tasklist/tasklist/internal/trello"
)

func TestBarChart(t *testing.T) {
	bars := []Bar{{"To Do", 4}, {"Doing", 2}, {"Done", 0}}
	// width 25 - label 5 - 10 = 10 columns for the largest value
	got := BarChart(bars, "Cards per List", 25)

	want := "\n--- Cards per List ---\n" +
		"To Do | ██████████ 4\n" +
		"Doing | █████ 2\n" +
		" Done |  0\n"
	if got != want {
		t.Errorf("BarChart() =\n%q\nwant\n%q", got, want)
	}
}

func TestBarChart_Edges(t *testing.T) {
	tests := []struct {
		name string
		bars []Bar
		want string
	}{
		{"empty", nil, "\n--- T ---\n(no data)\n"},
		{"all zero", []Bar{{"a", 0}}, "\n--- T ---\na |  0\n"},
		{"narrow terminal", []Bar{{"label", 3}}, "\n--- T ---\nlabel |  3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BarChart(tt.bars, "T", 12); got != tt.want {
				t.Errorf("BarChart() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCardsPerList(t *testing.T) {
	lists := []trello.List{{ID: "l1", Name: "To Do"}, {ID: "l2", Name: "Done"}}
	cards := []trello.Card{
		{ID: "c1", IDList: "l1"},
		{ID: "c2", IDList: "l2"},
		{ID: "c3", IDList: "l1"},
		{ID: "c4", IDList: "archived"},
	}

	want := []Bar{{"To Do", 2}, {"Done", 1}}
	if got := CardsPerList(lists, cards); !reflect.DeepEqual(got, want) {
		t.Errorf("CardsPerList() = %v, want %v", got, want)
	}
}

func TestTopKeywords(t *testing.T) {
	cards := []trello.Card{
		{Name: "Fix the login bug"},
		{Name: "Write docs for login"},
		{Name: "Deploy: login & docs!"},
		{Name: "Don't forget the BUG"},
	}

	got := TopKeywords(cards, 3)
	want := []Keyword{{"login", 3}, {"bug", 2}, {"docs", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopKeywords() = %v, want %v", got, want)
	}
}

func TestTopKeywords_StopWordsOnly(t *testing.T) {
	if got := TopKeywords([]trello.Card{{Name: "the and of"}}, 10); len(got) != 0 {
		t.Errorf("TopKeywords() = %v, want none", got)
	}
}

func TestSentimentByWeek(t *testing.T) {
	cards := []trello.Card{
		// 2024-01-01 (Monday, before the first Sunday)
		{ID: "6592a940aaaaaaaaaaaaaaaa", Name: "Finished the report, great success"},
		// 2024-01-07 and 2024-01-10 share a Sunday-based week
		{ID: "659a9240bbbbbbbbbbbbbbbb", Name: "urgent bug in login"},
		{ID: "659e86c0cccccccccccccccc", Name: "fix error error"},
		// 2024-03-03
		{ID: "65e46640dddddddddddddddd", Name: "done with one bug"},
		{ID: "zz", Name: "broken id"},
	}

	want := []WeekMood{
		{"2024-00", Positive},
		{"2024-01", Negative},
		{"2024-09", Neutral},
	}
	if got := SentimentByWeek(cards); !reflect.DeepEqual(got, want) {
		t.Errorf("SentimentByWeek() = %v, want %v", got, want)
	}
}

func TestScoreName_DistinctWords(t *testing.T) {
	if got := scoreName("Done done DONE bug"); got != 0 {
		t.Errorf("scoreName() = %d, want 0", got)
	}
}

func action(typ, date, listAfter string) trello.Action {
	a := trello.Action{Type: typ, Date: date}
	if listAfter != "" {
		a.Data.ListAfter = &trello.List{Name: listAfter}
	}
	return a
}

func TestActivityChart_Messages(t *testing.T) {
	tests := []struct {
		name    string
		actions []trello.Action
		want    string
	}{
		{"no actions", nil, "No activity to report."},
		{
			"only unrelated moves",
			[]trello.Action{action("updateCard", "2024-01-01T10:00:00.000Z", "Doing")},
			"No activity to report.",
		},
		{
			"single day",
			[]trello.Action{
				action("createCard", "2024-01-01T10:00:00.000Z", ""),
				action("updateCard", "2024-01-01T18:00:00.000Z", "done"),
			},
			"Not enough data to generate an activity chart.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActivityChart(tt.actions, "Done"); got != tt.want {
				t.Errorf("ActivityChart() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActivityChart_Plot(t *testing.T) {
	actions := []trello.Action{
		action("createCard", "2024-01-01T10:00:00.000Z", ""),
		action("createCard", "2024-01-01T11:00:00.000Z", ""),
		action("updateCard", "2024-01-04T09:00:00.000Z", "Done"),
		{Type: "createCard", Date: "not a date"},
	}

	got := ActivityChart(actions, "Done")
	for _, header := range []string{"--- Task Activity Over Time ---", "--- Tasks Created ---", "--- Tasks Completed ---"} {
		if !strings.Contains(got, header) {
			t.Errorf("chart missing %q:\n%s", header, got)
		}
	}
}

func TestReportLists(t *testing.T) {
	kw := KeywordList([]Keyword{{"login", 3}})
	if kw != "\n--- Top 10 Keywords ---\n- login: 3\n" {
		t.Errorf("KeywordList() = %q", kw)
	}
	s := SentimentList([]WeekMood{{"2024-01", Negative}})
	if s != "\n--- Weekly Sentiment Analysis ---\n- Week 2024-01: Negative\n" {
		t.Errorf("SentimentList() = %q", s)
	}
}
