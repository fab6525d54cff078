package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tasklist/tasklist/internal/schema"
	"github.com/tasklist/tasklist/internal/trello"
)

// ErrEmptyDescription is returned by AddTask for a blank description.
var ErrEmptyDescription = errors.New("empty task description, nothing to add")

// Outcome tells where AddTask put a task.
type Outcome int

const (
	// OutcomeNone means nothing was stored.
	OutcomeNone Outcome = iota
	// OutcomeCreated means the task became a card on the board.
	OutcomeCreated
	// OutcomeQueued means the task was saved to the local queue.
	OutcomeQueued
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeQueued:
		return "queued"
	default:
		return "none"
	}
}

// AddRequest describes a task-creation intent.
type AddRequest struct {
	Task schema.Task
	// FlushFirst uploads the existing queue before adding the task.
	FlushFirst bool
	// ListID targets a specific board list (empty = configured default).
	ListID string
}

// UploadResult summarizes an Upload run.
type UploadResult struct {
	// Total is the queue length when the upload started.
	Total int
	// Uploaded counts the tasks turned into cards and removed from the queue.
	Uploaded int
	// Failed is the task the upload stopped at, nil when nothing failed.
	Failed *schema.Task
	// Cause is set when Failed was caused by a transport error.
	Cause error
}

// Remaining is the number of tasks still queued after the run.
func (r UploadResult) Remaining() int {
	return r.Total - r.Uploaded
}

// Complete reports whether the whole queue was uploaded.
func (r UploadResult) Complete() bool {
	return r.Failed == nil
}

// Syncer routes new tasks to the board or the local queue and flushes the
// queue in order.
type Syncer struct {
	queue  Queue
	remote Remote
	logger *zap.Logger
}

// New creates a Syncer.
//
// If logger is nil, logging is disabled.
func New(queue Queue, remote Remote, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		queue:  queue,
		remote: remote,
		logger: logger.Named("sync"),
	}
}

// AddTask creates a card when the board is reachable and accepts it, and
// queues the task locally otherwise. A task always ends up in exactly one
// of the two places.
func (s *Syncer) AddTask(ctx context.Context, req AddRequest) (Outcome, error) {
	task := req.Task
	if strings.TrimSpace(task.Description) == "" {
		s.logger.Error(ErrEmptyDescription.Error())
		return OutcomeNone, ErrEmptyDescription
	}
	task.SetDefaults()

	if req.FlushFirst {
		if has, err := s.queue.HasAny(ctx); err != nil {
			s.logger.Error("failed to check pending tasks", zap.Error(err))
		} else if has {
			if _, err := s.Upload(ctx); err != nil {
				s.logger.Error("upload before add failed", zap.Error(err))
			}
		}
	}

	if !s.remote.CheckConnectivity(ctx) {
		s.logger.Info("offline mode: saving task locally")
		return s.saveLocally(ctx, &task)
	}

	ok, err := s.remote.CreateCard(ctx, cardFor(&task, req.ListID))
	if err != nil || !ok {
		s.logger.Info("failed to upload task, saving locally", zap.String("task", task.Description))
		return s.saveLocally(ctx, &task)
	}

	return OutcomeCreated, nil
}

func (s *Syncer) saveLocally(ctx context.Context, task *schema.Task) (Outcome, error) {
	if err := s.queue.Insert(ctx, task); err != nil {
		s.logger.Error("error saving task locally", zap.Error(err))
		return OutcomeNone, err
	}
	return OutcomeQueued, nil
}

// Upload flushes the queue to the board one task at a time in queue order.
// It stops at the first task the board does not accept: the tasks uploaded
// before it are removed from the queue, it and every later task stay.
//
// The returned error covers local storage failures only; a halted upload is
// reported through UploadResult.Failed.
//
// The queue is cleared after the loop, so a run killed midway uploads the
// same tasks again next time.
func (s *Syncer) Upload(ctx context.Context) (UploadResult, error) {
	var result UploadResult

	has, err := s.queue.HasAny(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to check pending tasks: %w", err)
	}
	if !has {
		s.logger.Info("no tasks to upload")
		return result, nil
	}

	tasks, err := s.queue.LoadAll(ctx)
	if err != nil {
		s.logger.Error("error loading tasks from queue", zap.Error(err))
		return result, fmt.Errorf("failed to load pending tasks: %w", err)
	}
	result.Total = len(tasks)

	uploaded := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		ok, err := s.remote.CreateCard(ctx, cardFor(task, ""))
		if err != nil || !ok {
			s.logger.Error("failed to upload task, upload aborted",
				zap.String("task", task.Description), zap.Error(err))
			result.Failed = task
			result.Cause = err
			break
		}
		uploaded = append(uploaded, task.ID)
	}

	if err := s.queue.Clear(ctx, uploaded); err != nil {
		s.logger.Error("error clearing uploaded tasks", zap.Error(err))
		return result, fmt.Errorf("failed to clear uploaded tasks: %w", err)
	}
	result.Uploaded = len(uploaded)

	if result.Complete() {
		s.logger.Info("all tasks uploaded successfully and local cache cleared",
			zap.Int("uploaded", result.Uploaded))
	}
	return result, nil
}

func cardFor(task *schema.Task, listID string) trello.NewCard {
	return trello.NewCard{
		Name:     task.Description,
		DueDate:  task.DueDate,
		Priority: task.Priority,
		Category: task.Category,
		ParentID: task.ParentID,
		ListID:   listID,
	}
}
