// Package trello is a thin client for the parts of the Trello REST API the
// task list uses: creating, listing, archiving and searching cards.
//
// Read-only calls never fail loudly: transport errors and non-2xx statuses
// are logged and an empty result is returned. Only CreateCard separates a
// transport failure (ErrUnreachable) from an API rejection (false, nil).
package trello

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the Trello REST API root.
const DefaultBaseURL = "https://api.trello.com/1"

const (
	// ProbeTimeout bounds the connectivity check.
	ProbeTimeout = 5 * time.Second
	// CallTimeout bounds every data call.
	CallTimeout = 10 * time.Second
)

// ErrUnreachable reports that a request never got an HTTP response.
var ErrUnreachable = errors.New("could not connect to Trello, please check your network connection")

// Credentials identify the account and default board/list.
type Credentials struct {
	APIKey  string
	Token   string
	BoardID string
	ListID  string
	// BaseURL overrides DefaultBaseURL (empty = default)
	BaseURL string
}

// Client talks to the Trello API. It holds no state beyond its credentials.
type Client struct {
	creds        Credentials
	baseURL      string
	http         *http.Client
	logger       *zap.Logger
	probeTimeout time.Duration
	callTimeout  time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeouts overrides the probe and data call timeouts.
func WithTimeouts(probe, call time.Duration) Option {
	return func(c *Client) {
		c.probeTimeout = probe
		c.callTimeout = call
	}
}

// New creates a client for the given credentials.
func New(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:        creds,
		baseURL:      strings.TrimRight(creds.BaseURL, "/"),
		http:         &http.Client{},
		logger:       zap.NewNop(),
		probeTimeout: ProbeTimeout,
		callTimeout:  CallTimeout,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("trello")
	return c
}

// DefaultListID returns the configured list for new cards.
func (c *Client) DefaultListID() string {
	return c.creds.ListID
}

// statusError is a non-2xx API response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("Trello API error %d", e.code)
}

func (c *Client) auth() url.Values {
	v := url.Values{}
	v.Set("key", c.creds.APIKey)
	v.Set("token", c.creds.Token)
	return v
}

// do performs one request bounded by timeout and decodes a JSON body into
// out when out is non-nil. Transport failures are wrapped in ErrUnreachable.
func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, params url.Values, body url.Values, out any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	q := c.auth()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	var (
		reqBody io.Reader
		target  = c.baseURL + path
	)
	if body != nil {
		for k, vs := range q {
			body[k] = vs
		}
		reqBody = strings.NewReader(body.Encode())
	} else {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, &statusError{code: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode %s response: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	_, err := c.do(ctx, c.callTimeout, http.MethodGet, path, params, nil, out)
	return err
}

// CheckConnectivity probes the API with the configured credentials. It
// returns false on any network error or non-200 status.
func (c *Client) CheckConnectivity(ctx context.Context) bool {
	code, err := c.do(ctx, c.probeTimeout, http.MethodGet, "/members/me", nil, nil, nil)
	if err != nil {
		if errors.Is(err, ErrUnreachable) {
			c.logger.Warn("network error while connecting to Trello", zap.Error(err))
		} else {
			c.logger.Warn("Trello API connection failed", zap.Int("status", code))
		}
		return false
	}
	if code != http.StatusOK {
		c.logger.Warn("Trello API connection failed", zap.Int("status", code))
		return false
	}
	c.logger.Debug("connected to Trello API")
	return true
}

// CreateCard creates a card for a task. It reports false for an API
// rejection and returns ErrUnreachable when the request itself failed.
func (c *Client) CreateCard(ctx context.Context, card NewCard) (bool, error) {
	listID := card.ListID
	if listID == "" {
		listID = c.creds.ListID
	}

	form := url.Values{}
	form.Set("idList", listID)
	form.Set("name", card.Name)
	form.Set("desc", card.Description())
	if card.DueDate != "" {
		form.Set("due", card.DueDate)
	}

	code, err := c.do(ctx, c.callTimeout, http.MethodPost, "/cards", nil, form, nil)
	if err != nil {
		if errors.Is(err, ErrUnreachable) {
			c.logger.Error("Trello upload error", zap.Error(err))
			return false, err
		}
		c.logger.Error("Trello API error", zap.Int("status", code), zap.String("task", card.Name))
		return false, nil
	}
	if code != http.StatusOK && code != http.StatusCreated {
		c.logger.Error("Trello API error", zap.Int("status", code), zap.String("task", card.Name))
		return false, nil
	}

	c.logger.Info("successfully uploaded task", zap.String("task", card.Name))
	return true, nil
}

// ListCards returns the cards of listID, or of the default list when listID
// is empty.
func (c *Client) ListCards(ctx context.Context, listID string) []Card {
	if listID == "" {
		listID = c.creds.ListID
	}
	var cards []Card
	if err := c.get(ctx, "/lists/"+url.PathEscape(listID)+"/cards", nil, &cards); err != nil {
		c.logFetchError("list cards", err)
		return []Card{}
	}
	return cards
}

// BoardLists returns the lists of the configured board in board order.
func (c *Client) BoardLists(ctx context.Context) []List {
	var lists []List
	if err := c.get(ctx, "/boards/"+url.PathEscape(c.creds.BoardID)+"/lists", nil, &lists); err != nil {
		c.logFetchError("board lists", err)
		return []List{}
	}
	return lists
}

// FindList looks a board list up by name, ignoring case.
func (c *Client) FindList(ctx context.Context, name string) (List, bool) {
	for _, l := range c.BoardLists(ctx) {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return List{}, false
}

// BoardCards returns every open card on the configured board.
func (c *Client) BoardCards(ctx context.Context) []Card {
	var cards []Card
	if err := c.get(ctx, "/boards/"+url.PathEscape(c.creds.BoardID)+"/cards", nil, &cards); err != nil {
		c.logFetchError("board cards", err)
		return []Card{}
	}
	return cards
}

// BoardActions returns up to 1000 recent card create/update actions.
func (c *Client) BoardActions(ctx context.Context) []Action {
	params := url.Values{}
	params.Set("filter", "createCard,updateCard")
	params.Set("limit", "1000")

	var actions []Action
	if err := c.get(ctx, "/boards/"+url.PathEscape(c.creds.BoardID)+"/actions", params, &actions); err != nil {
		c.logFetchError("board actions", err)
		return []Action{}
	}
	return actions
}

// ArchiveCard closes a card. It reports true only on a 200 response.
func (c *Client) ArchiveCard(ctx context.Context, cardID string) bool {
	params := url.Values{}
	params.Set("closed", "true")

	code, err := c.do(ctx, c.callTimeout, http.MethodPut, "/cards/"+url.PathEscape(cardID), params, nil, nil)
	if err == nil && code != http.StatusOK {
		err = &statusError{code: code}
	}
	if err != nil {
		c.logFetchError("archive card", err)
		return false
	}
	c.logger.Info("successfully archived task", zap.String("card", cardID))
	return true
}

func (c *Client) logFetchError(op string, err error) {
	var se *statusError
	if errors.As(err, &se) {
		c.logger.Error("Trello API error", zap.String("op", op), zap.Int("status", se.code))
		return
	}
	c.logger.Error("Trello API request error", zap.String("op", op), zap.Error(err))
}
