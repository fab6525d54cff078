package trello

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// fakeBoard is an in-memory Trello API.
type fakeBoard struct {
	mu       sync.Mutex
	hits     map[string]int
	posted   []map[string]string
	status   int // forced status for POST /cards and GET /members/me (0 = OK)
	lists    []List
	cards    map[string][]Card // list id -> cards in list order
	boards   map[string]Board
	search   []Card
	actions  []Action
	archived []string
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{
		hits:   make(map[string]int),
		cards:  make(map[string][]Card),
		boards: make(map[string]Board),
	}
}

func (f *fakeBoard) hit(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[key]++
}

func (f *fakeBoard) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeBoard) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /1/members/me", func(w http.ResponseWriter, r *http.Request) {
		f.hit("me")
		if r.URL.Query().Get("key") != "test_api_key" || r.URL.Query().Get("token") != "test_token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		writeJSON(w, map[string]string{"id": "me"})
	})

	mux.HandleFunc("POST /1/cards", func(w http.ResponseWriter, r *http.Request) {
		f.hit("create")
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		fields := make(map[string]string)
		for k := range r.PostForm {
			fields[k] = r.PostForm.Get(k)
		}
		f.mu.Lock()
		f.posted = append(f.posted, fields)
		f.mu.Unlock()
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		writeJSON(w, Card{ID: "new", Name: fields["name"]})
	})

	mux.HandleFunc("PUT /1/cards/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.hit("archive")
		if r.URL.Query().Get("closed") != "true" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		id := r.PathValue("id")
		if id == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.mu.Lock()
		f.archived = append(f.archived, id)
		f.mu.Unlock()
		writeJSON(w, Card{ID: id, Closed: true})
	})

	mux.HandleFunc("GET /1/boards/{id}/lists", func(w http.ResponseWriter, r *http.Request) {
		f.hit("board-lists")
		writeJSON(w, f.lists)
	})

	mux.HandleFunc("GET /1/boards/{id}/cards", func(w http.ResponseWriter, r *http.Request) {
		f.hit("board-cards")
		var all []Card
		for _, l := range f.lists {
			all = append(all, f.cards[l.ID]...)
		}
		writeJSON(w, all)
	})

	mux.HandleFunc("GET /1/boards/{id}/actions", func(w http.ResponseWriter, r *http.Request) {
		f.hit("actions")
		if r.URL.Query().Get("filter") != "createCard,updateCard" || r.URL.Query().Get("limit") != "1000" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeJSON(w, f.actions)
	})

	mux.HandleFunc("GET /1/boards/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.hit("board:" + r.PathValue("id"))
		b, ok := f.boards[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, b)
	})

	mux.HandleFunc("GET /1/lists/{id}/cards", func(w http.ResponseWriter, r *http.Request) {
		f.hit("list-cards:" + r.PathValue("id"))
		cards, ok := f.cards[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, cards)
	})

	mux.HandleFunc("GET /1/lists/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.hit("list:" + r.PathValue("id"))
		for _, l := range f.lists {
			if l.ID == r.PathValue("id") {
				writeJSON(w, l)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})

	mux.HandleFunc("GET /1/search", func(w http.ResponseWriter, r *http.Request) {
		f.hit("search")
		if r.URL.Query().Get("idBoards") != "test_board_id" || r.URL.Query().Get("modelTypes") != "cards" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeJSON(w, searchResponse{Cards: f.search})
	})

	return mux
}

// setupTestClient starts a fake board and returns a client pointed at it.
func setupTestClient(t *testing.T) (*Client, *fakeBoard) {
	t.Helper()

	board := newFakeBoard()
	srv := httptest.NewServer(board.handler(t))
	t.Cleanup(srv.Close)

	client := New(Credentials{
		APIKey:  "test_api_key",
		Token:   "test_token",
		BoardID: "test_board_id",
		ListID:  "test_list_id",
		BaseURL: srv.URL + "/1",
	}, WithLogger(zaptest.NewLogger(t)))
	return client, board
}

// unreachableClient points at a server that has already been shut down.
func unreachableClient(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	return New(Credentials{APIKey: "k", Token: "t", ListID: "l", BaseURL: base},
		WithLogger(zaptest.NewLogger(t)),
		WithTimeouts(time.Second, time.Second))
}

func TestCheckConnectivity(t *testing.T) {
	client, board := setupTestClient(t)
	ctx := context.Background()

	if !client.CheckConnectivity(ctx) {
		t.Error("CheckConnectivity() = false, want true")
	}

	board.status = http.StatusInternalServerError
	if client.CheckConnectivity(ctx) {
		t.Error("CheckConnectivity() = true on 500, want false")
	}

	if unreachableClient(t).CheckConnectivity(ctx) {
		t.Error("CheckConnectivity() = true for unreachable host, want false")
	}
}

func TestCheckConnectivity_BadCredentials(t *testing.T) {
	board := newFakeBoard()
	srv := httptest.NewServer(board.handler(t))
	defer srv.Close()

	client := New(Credentials{APIKey: "wrong", Token: "wrong", BaseURL: srv.URL + "/1"})
	if client.CheckConnectivity(context.Background()) {
		t.Error("CheckConnectivity() = true with bad credentials, want false")
	}
}

func TestCreateCard_MapsFields(t *testing.T) {
	client, board := setupTestClient(t)
	ctx := context.Background()

	ok, err := client.CreateCard(ctx, NewCard{
		Name:     "Test task online",
		DueDate:  "2025-12-31",
		Priority: 3,
		Category: "Work",
	})
	if err != nil || !ok {
		t.Fatalf("CreateCard() = %v, %v; want true, nil", ok, err)
	}

	want := map[string]string{
		"key":    "test_api_key",
		"token":  "test_token",
		"idList": "test_list_id",
		"name":   "Test task online",
		"desc":   "Priority: 3\nCategory: Work",
		"due":    "2025-12-31",
	}
	if !reflect.DeepEqual(board.posted[0], want) {
		t.Errorf("posted form = %v, want %v", board.posted[0], want)
	}
}

func TestCreateCard_SubTaskAndListOverride(t *testing.T) {
	client, board := setupTestClient(t)
	parent := int64(7)

	ok, err := client.CreateCard(context.Background(), NewCard{
		Name:     "child",
		Priority: 1,
		Category: "General",
		ParentID: &parent,
		ListID:   "other_list",
	})
	if err != nil || !ok {
		t.Fatalf("CreateCard() = %v, %v", ok, err)
	}

	got := board.posted[0]
	if got["desc"] != "Priority: 1\nCategory: General\nSub-task of: 7" {
		t.Errorf("desc = %q", got["desc"])
	}
	if got["idList"] != "other_list" {
		t.Errorf("idList = %q, want other_list", got["idList"])
	}
	if _, hasDue := got["due"]; hasDue {
		t.Error("due must be omitted when no due date is set")
	}
}

func TestCreateCard_Rejected(t *testing.T) {
	client, board := setupTestClient(t)
	board.status = http.StatusBadRequest

	ok, err := client.CreateCard(context.Background(), NewCard{Name: "x", Priority: 1, Category: "General"})
	if ok || err != nil {
		t.Errorf("CreateCard() on 400 = %v, %v; want false, nil", ok, err)
	}
}

func TestCreateCard_Unreachable(t *testing.T) {
	client := unreachableClient(t)

	ok, err := client.CreateCard(context.Background(), NewCard{Name: "x", Priority: 1, Category: "General"})
	if ok {
		t.Error("CreateCard() = true for unreachable host")
	}
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("CreateCard() error = %v, want ErrUnreachable", err)
	}
}

func TestReadOnlyCalls(t *testing.T) {
	client, board := setupTestClient(t)
	ctx := context.Background()

	board.lists = []List{{ID: "l1", Name: "To Do"}, {ID: "l2", Name: "Done"}}
	board.cards["l1"] = []Card{{ID: "c1", Name: "one", IDList: "l1"}, {ID: "c2", Name: "two", IDList: "l1"}}
	board.cards["l2"] = []Card{{ID: "c3", Name: "three", IDList: "l2"}}
	board.cards["test_list_id"] = []Card{{ID: "c9", Name: "default"}}
	board.actions = []Action{{ID: "a1", Type: "createCard", Date: "2025-01-01T10:00:00.000Z"}}

	if got := client.BoardLists(ctx); !reflect.DeepEqual(got, board.lists) {
		t.Errorf("BoardLists() = %v", got)
	}
	if got := client.ListCards(ctx, "l1"); len(got) != 2 || got[1].Name != "two" {
		t.Errorf("ListCards(l1) = %v", got)
	}
	if got := client.ListCards(ctx, ""); len(got) != 1 || got[0].Name != "default" {
		t.Errorf("ListCards(default) = %v", got)
	}
	if got := client.BoardCards(ctx); len(got) != 3 {
		t.Errorf("BoardCards() returned %d cards, want 3", len(got))
	}
	if got := client.BoardActions(ctx); len(got) != 1 || got[0].Type != "createCard" {
		t.Errorf("BoardActions() = %v", got)
	}
	if l, ok := client.FindList(ctx, "done"); !ok || l.ID != "l2" {
		t.Errorf("FindList(done) = %v, %v", l, ok)
	}
	if _, ok := client.FindList(ctx, "Nope"); ok {
		t.Error("FindList(Nope) found a list")
	}
}

func TestReadOnlyCalls_FailuresReturnEmpty(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	if got := client.ListCards(ctx, "missing"); got == nil || len(got) != 0 {
		t.Errorf("ListCards() on 404 = %v, want empty slice", got)
	}

	down := unreachableClient(t)
	if got := down.BoardLists(ctx); len(got) != 0 {
		t.Errorf("BoardLists() unreachable = %v", got)
	}
	if got := down.BoardCards(ctx); len(got) != 0 {
		t.Errorf("BoardCards() unreachable = %v", got)
	}
	if got := down.BoardActions(ctx); len(got) != 0 {
		t.Errorf("BoardActions() unreachable = %v", got)
	}
	if got := down.SearchCards(ctx, "x"); len(got) != 0 {
		t.Errorf("SearchCards() unreachable = %v", got)
	}
}

func TestArchiveCard(t *testing.T) {
	client, board := setupTestClient(t)
	ctx := context.Background()

	if !client.ArchiveCard(ctx, "c1") {
		t.Error("ArchiveCard(c1) = false, want true")
	}
	if client.ArchiveCard(ctx, "missing") {
		t.Error("ArchiveCard(missing) = true, want false")
	}
	if !reflect.DeepEqual(board.archived, []string{"c1"}) {
		t.Errorf("archived = %v", board.archived)
	}
	if unreachableClient(t).ArchiveCard(ctx, "c1") {
		t.Error("ArchiveCard() = true for unreachable host")
	}
}

func TestSearchCards_EnrichesAndBatches(t *testing.T) {
	client, board := setupTestClient(t)

	board.lists = []List{{ID: "l1", Name: "To Do"}, {ID: "l2", Name: "Doing"}}
	board.boards["b1"] = Board{ID: "b1", Name: "Home"}
	board.cards["l1"] = []Card{
		{ID: "c1", Name: "paint fence", IDList: "l1", IDBoard: "b1"},
		{ID: "c2", Name: "buy paint", IDList: "l1", IDBoard: "b1"},
		{ID: "c3", Name: "paint shed", IDList: "l1", IDBoard: "b1"},
	}
	board.cards["l2"] = []Card{
		{ID: "c4", Name: "mow lawn", IDList: "l2", IDBoard: "b1"},
		{ID: "c5", Name: "paint door", IDList: "l2", IDBoard: "b1"},
	}
	board.search = []Card{
		{ID: "c3", Name: "paint shed", IDList: "l1", IDBoard: "b1"},
		{ID: "c5", Name: "paint door", IDList: "l2", IDBoard: "b1"},
		{ID: "c1", Name: "paint fence", IDList: "l1", IDBoard: "b1"},
	}

	got := client.SearchCards(context.Background(), "paint")
	want := []SearchResult{
		{ID: "c3", Name: "paint shed", ListName: "To Do", BoardName: "Home", Position: 3},
		{ID: "c1", Name: "paint fence", ListName: "To Do", BoardName: "Home", Position: 1},
		{ID: "c5", Name: "paint door", ListName: "Doing", BoardName: "Home", Position: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SearchCards() = %+v\nwant %+v", got, want)
	}

	for _, key := range []string{"list:l1", "list:l2", "list-cards:l1", "list-cards:l2", "board:b1"} {
		if n := board.count(key); n != 1 {
			t.Errorf("%s fetched %d times, want 1", key, n)
		}
	}
}

func TestSearchCards_UnknownListAndBoard(t *testing.T) {
	client, board := setupTestClient(t)
	board.search = []Card{{ID: "c1", Name: "orphan", IDList: "gone", IDBoard: "nowhere"}}

	got := client.SearchCards(context.Background(), "orphan")
	want := []SearchResult{{ID: "c1", Name: "orphan", ListName: "Unknown List", BoardName: "Unknown Board", Position: -1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SearchCards() = %+v, want %+v", got, want)
	}
}

func TestSearchCards_NoMatches(t *testing.T) {
	client, board := setupTestClient(t)

	got := client.SearchCards(context.Background(), "nothing")
	if got == nil || len(got) != 0 {
		t.Errorf("SearchCards() = %v, want empty slice", got)
	}
	if board.count("search") != 1 {
		t.Errorf("search endpoint hit %d times", board.count("search"))
	}
}

func TestCard_CreatedAt(t *testing.T) {
	card := Card{ID: "5f5e1000aaaaaaaaaaaaaaaa"}
	got, err := card.CreatedAt()
	if err != nil {
		t.Fatalf("CreatedAt() failed: %v", err)
	}
	if want := time.Unix(0x5f5e1000, 0).UTC(); !got.Equal(want) {
		t.Errorf("CreatedAt() = %v, want %v", got, want)
	}

	if _, err := (Card{ID: "short"}).CreatedAt(); err == nil {
		t.Error("expected error for short id")
	}
	if _, err := (Card{ID: "zzzzzzzz0000"}).CreatedAt(); err == nil {
		t.Error("expected error for non-hex id")
	}
}
