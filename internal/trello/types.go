package trello

import (
	"fmt"
	"strconv"
	"time"
)

// Card is a Trello card as returned by the REST API.
type Card struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IDList  string `json:"idList"`
	IDBoard string `json:"idBoard"`
	Desc    string `json:"desc,omitempty"`
	Due     string `json:"due,omitempty"`
	Closed  bool   `json:"closed,omitempty"`
}

// CreatedAt decodes the creation time embedded in the first eight hex digits
// of a card id.
func (c Card) CreatedAt() (time.Time, error) {
	if len(c.ID) < 8 {
		return time.Time{}, fmt.Errorf("card id %q too short", c.ID)
	}
	secs, err := strconv.ParseInt(c.ID[:8], 16, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("card id %q: %w", c.ID, err)
	}
	return time.Unix(secs, 0).UTC(), nil
}

// List is a column on a board.
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Board holds the fields of a board this client reads.
type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Action is a board activity entry.
type Action struct {
	ID   string     `json:"id"`
	Type string     `json:"type"`
	Date string     `json:"date"`
	Data ActionData `json:"data"`
}

// ActionData carries the parts of an action payload used for reports.
type ActionData struct {
	Card       *Card `json:"card,omitempty"`
	ListBefore *List `json:"listBefore,omitempty"`
	ListAfter  *List `json:"listAfter,omitempty"`
}

// SearchResult is a card match enriched with where it lives on the board.
type SearchResult struct {
	ID        string
	Name      string
	ListName  string
	BoardName string
	// Position is the 1-based index of the card within its list, or -1
	// when the list's cards could not be fetched.
	Position int
}

// NewCard describes a card to create from a task.
type NewCard struct {
	Name     string
	DueDate  string
	Priority int
	Category string
	ParentID *int64
	// ListID overrides the configured default list when set.
	ListID string
}

// Description encodes priority, category and parent lineage into the card's
// free-text description.
func (n NewCard) Description() string {
	desc := fmt.Sprintf("Priority: %d\nCategory: %s", n.Priority, n.Category)
	if n.ParentID != nil {
		desc += fmt.Sprintf("\nSub-task of: %d", *n.ParentID)
	}
	return desc
}
