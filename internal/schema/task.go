// Package schema provides the task records shared by the local store, the
// sync engine and the command line.
package schema

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const (
	// DateLayout is the on-disk and on-wire format of due dates.
	DateLayout = "2006-01-02"

	DefaultPriority = 1
	DefaultCategory = "General"

	MinPriority = 1
	MaxPriority = 3
)

// Task is a pending task stored in the local queue.
type Task struct {
	ID          int64  `json:"id"`
	Description string `json:"description" yaml:"description" validate:"required"`
	DueDate     string `json:"due_date,omitempty" yaml:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Priority    int    `json:"priority" yaml:"priority" validate:"min=1,max=3"`
	Category    string `json:"category" yaml:"category"`
	ParentID    *int64 `json:"parent_id,omitempty" yaml:"-"`
}

// IsSubTask reports whether the task belongs to a parent.
func (t *Task) IsSubTask() bool {
	return t.ParentID != nil
}

// SetDefaults fills the optional fields that were left blank.
func (t *Task) SetDefaults() {
	t.Description = strings.TrimSpace(t.Description)
	if t.Priority == 0 {
		t.Priority = DefaultPriority
	}
	if t.Category == "" {
		t.Category = DefaultCategory
	}
}

// Validate checks the task fields before they reach the store or the board.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if err := validate().Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	switch fe.Field() {
	case "DueDate":
		return fmt.Errorf("invalid date format: %q, use YYYY-MM-DD", fe.Value())
	case "Priority":
		return fmt.Errorf("invalid priority: %v, must be 1 (low), 2 (medium), or 3 (high)", fe.Value())
	default:
		return fmt.Errorf("%s failed %q validation", strings.ToLower(fe.Field()), fe.Tag())
	}
}

var (
	validateOnce sync.Once
	validateInst *validator.Validate
)

func validate() *validator.Validate {
	validateOnce.Do(func() {
		validateInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validateInst
}

// Edit lists the fields to change on a pending task. Nil fields are left
// untouched.
type Edit struct {
	Description *string
	DueDate     *string
	Priority    *int
	Category    *string
}

// Empty reports whether no field was supplied.
func (e Edit) Empty() bool {
	return e.Description == nil && e.DueDate == nil && e.Priority == nil && e.Category == nil
}

// Validate checks the supplied fields only. An empty DueDate clears the date.
func (e Edit) Validate() error {
	if e.Description != nil && strings.TrimSpace(*e.Description) == "" {
		return fmt.Errorf("description cannot be empty")
	}
	if e.DueDate != nil && *e.DueDate != "" {
		if _, err := time.Parse(DateLayout, *e.DueDate); err != nil {
			return fmt.Errorf("invalid date format: %q, use YYYY-MM-DD", *e.DueDate)
		}
	}
	if e.Priority != nil {
		if err := ValidatePriority(*e.Priority); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePriority checks that p is one of the three supported levels.
func ValidatePriority(p int) error {
	if p < MinPriority || p > MaxPriority {
		return fmt.Errorf("invalid priority: %d, must be 1 (low), 2 (medium), or 3 (high)", p)
	}
	return nil
}

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseDueDate normalizes a due date to YYYY-MM-DD. Besides the canonical
// layout it accepts English phrases such as "tomorrow" or "next friday",
// resolved against now.
func ParseDueDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d.Format(DateLayout), nil
	}
	r, err := dateParser.Parse(s, now)
	if err != nil || r == nil {
		return "", fmt.Errorf("invalid date format: %q, use YYYY-MM-DD", s)
	}
	return r.Time.Format(DateLayout), nil
}
