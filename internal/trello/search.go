package trello

import (
	"context"
	"net/url"
)

const (
	unknownList  = "Unknown List"
	unknownBoard = "Unknown Board"
)

type searchResponse struct {
	Cards []Card `json:"cards"`
}

// SearchCards runs a full-text card search on the configured board and
// resolves, for every match, its list name, board name and 1-based position
// in the list. Each distinct list and board is looked up once no matter how
// many matches it holds.
func (c *Client) SearchCards(ctx context.Context, query string) []SearchResult {
	params := url.Values{}
	params.Set("query", query)
	params.Set("idBoards", c.creds.BoardID)
	params.Set("card_fields", "name,idBoard,idList")
	params.Set("modelTypes", "cards")

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		c.logFetchError("search cards", err)
		return []SearchResult{}
	}
	if len(resp.Cards) == 0 {
		return []SearchResult{}
	}

	// Group matches by list, keeping first-seen order.
	var listOrder []string
	byList := make(map[string][]Card)
	for _, card := range resp.Cards {
		if _, ok := byList[card.IDList]; !ok {
			listOrder = append(listOrder, card.IDList)
		}
		byList[card.IDList] = append(byList[card.IDList], card)
	}

	boardNames := make(map[string]string)
	boardName := func(id string) string {
		if name, ok := boardNames[id]; ok {
			return name
		}
		name := unknownBoard
		var b Board
		if err := c.get(ctx, "/boards/"+url.PathEscape(id), nil, &b); err != nil {
			c.logFetchError("board", err)
		} else {
			name = b.Name
		}
		boardNames[id] = name
		return name
	}

	results := make([]SearchResult, 0, len(resp.Cards))
	for _, listID := range listOrder {
		listName := unknownList
		var l List
		if err := c.get(ctx, "/lists/"+url.PathEscape(listID), nil, &l); err != nil {
			c.logFetchError("list", err)
		} else {
			listName = l.Name
		}

		positions := make(map[string]int)
		var all []Card
		if err := c.get(ctx, "/lists/"+url.PathEscape(listID)+"/cards", nil, &all); err != nil {
			c.logFetchError("list cards", err)
		}
		for i, card := range all {
			positions[card.ID] = i + 1
		}

		for _, card := range byList[listID] {
			pos, ok := positions[card.ID]
			if !ok {
				pos = -1
			}
			results = append(results, SearchResult{
				ID:        card.ID,
				Name:      card.Name,
				ListName:  listName,
				BoardName: boardName(card.IDBoard),
				Position:  pos,
			})
		}
	}

	return results
}
