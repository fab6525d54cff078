// Package sync decides where every new task goes (straight to the board or
// into the local queue) and flushes the queue to the board.
package sync

import (
	"context"

	"github.com/tasklist/tasklist/internal/schema"
	"github.com/tasklist/tasklist/internal/trello"
)

// Queue is the local store of pending tasks.
//
// *store.Store satisfies it.
type Queue interface {
	// Insert queues a task; a duplicate description is silently ignored.
	Insert(ctx context.Context, task *schema.Task) error

	// HasAny reports whether at least one task is queued.
	HasAny(ctx context.Context) (bool, error)

	// LoadAll returns every queued task in queue order.
	LoadAll(ctx context.Context) ([]*schema.Task, error)

	// Clear removes the tasks with the given ids.
	Clear(ctx context.Context, ids []int64) error
}

// Remote is the board the queue is flushed to.
//
// *trello.Client satisfies it.
type Remote interface {
	// CheckConnectivity reports whether the board is reachable with the
	// configured credentials. It never errors.
	CheckConnectivity(ctx context.Context) bool

	// CreateCard creates a card. It returns false, nil when the board
	// rejected the card and trello.ErrUnreachable when the request failed.
	CreateCard(ctx context.Context, card trello.NewCard) (bool, error)
}
