// Package listing backs the admin quiz list and its per-row publish toggle.
package listing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"quizforge-backend/internal/logger"
	"quizforge-backend/internal/models"
)

var (
	ErrRowBusy     = errors.New("an update for this quiz is already in progress")
	ErrUnknownQuiz = errors.New("quiz is not in the list")
	ErrRowChanged  = errors.New("quiz changed while confirming; try again")
)

type Gateway interface {
	ListQuizzes(ctx context.Context) ([]models.QuizSummary, error)
	SetPublished(ctx context.Context, id string, publish bool) (bool, error)
}

type Outcome int

const (
	OutcomeCancelled Outcome = iota
	OutcomePublished
	OutcomeUnpublished
)

// String is the alert text shown for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "Published"
	case OutcomeUnpublished:
		return "Unpublished"
	}
	return "Cancelled"
}

// ToggleError reports a failed publish toggle; the row keeps its old flag.
type ToggleError struct {
	ID      string
	Publish bool
	Err     error
}

func (e *ToggleError) Error() string {
	if e.Publish {
		return "Failed to publish"
	}
	return "Failed to unpublish"
}

func (e *ToggleError) Unwrap() error { return e.Err }

type Row struct {
	models.QuizSummary
	Busy bool
}

type Option func(*View)

func WithLogger(log *logger.Logger) Option {
	return func(v *View) { v.log = log }
}

type View struct {
	mu   sync.Mutex
	gw   Gateway
	log  *logger.Logger
	rows []models.QuizSummary
	busy map[string]bool
}

// Load fetches the list. Rows are ordered newest first.
func Load(ctx context.Context, gw Gateway, opts ...Option) (*View, error) {
	v := &View{gw: gw, log: logger.Nop(), busy: make(map[string]bool)}
	for _, opt := range opts {
		opt(v)
	}
	if err := v.Refresh(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// Refresh replaces the rows with a fresh list. Busy flags of in-flight toggles
// are kept.
func (v *View) Refresh(ctx context.Context) error {
	rows, err := v.gw.ListQuizzes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load quizzes: %w", err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	v.mu.Lock()
	defer v.mu.Unlock()
	v.rows = rows
	return nil
}

func (v *View) Rows() []Row {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Row, len(v.rows))
	for i, r := range v.rows {
		out[i] = Row{QuizSummary: r, Busy: v.busy[r.ID]}
	}
	return out
}

func (v *View) Row(id string) (Row, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.index(id)
	if i < 0 {
		return Row{}, false
	}
	return Row{QuizSummary: v.rows[i], Busy: v.busy[id]}, true
}

func (v *View) index(id string) int {
	for i, r := range v.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// ActionLabel is the text of the row's toggle button.
func (v *View) ActionLabel(id string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.index(id)
	if i < 0 {
		return ""
	}
	published := v.rows[i].Published
	switch {
	case v.busy[id] && published:
		return "Updating..."
	case v.busy[id]:
		return "Publishing..."
	case published:
		return "Unpublish"
	}
	return "Publish"
}

// TogglePublish flips the row's published flag after confirm agrees. The row
// is patched with the value the server returns; other rows stay usable while
// the request is in flight.
func (v *View) TogglePublish(ctx context.Context, id string, confirm func(prompt string) bool) (Outcome, error) {
	v.mu.Lock()
	i := v.index(id)
	if i < 0 {
		v.mu.Unlock()
		return OutcomeCancelled, ErrUnknownQuiz
	}
	if v.busy[id] {
		v.mu.Unlock()
		return OutcomeCancelled, ErrRowBusy
	}
	publish := !v.rows[i].Published
	v.mu.Unlock()

	prompt := "Unpublish this quiz?"
	if publish {
		prompt = "Publish this quiz?"
	}
	if confirm != nil && !confirm(prompt) {
		return OutcomeCancelled, nil
	}

	// The row may have been reloaded or toggled while confirm ran; only send
	// the direction that was confirmed.
	v.mu.Lock()
	if v.busy[id] {
		v.mu.Unlock()
		return OutcomeCancelled, ErrRowBusy
	}
	i = v.index(id)
	if i < 0 {
		v.mu.Unlock()
		return OutcomeCancelled, ErrUnknownQuiz
	}
	if v.rows[i].Published == publish {
		v.mu.Unlock()
		return OutcomeCancelled, ErrRowChanged
	}
	v.busy[id] = true
	v.mu.Unlock()

	published, err := v.gw.SetPublished(context.WithoutCancel(ctx), id, publish)

	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.busy, id)

	if err != nil {
		v.log.Error("failed to toggle publish", "quiz_id", id, "publish", publish, "error", err)
		return OutcomeCancelled, &ToggleError{ID: id, Publish: publish, Err: err}
	}
	if i := v.index(id); i >= 0 {
		v.rows[i].Published = published
	}
	if published {
		return OutcomePublished, nil
	}
	return OutcomeUnpublished, nil
}
