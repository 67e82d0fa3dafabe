// Package authoring holds the in-memory quiz draft an admin edits before it is
// saved through the gateway.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"quizforge-backend/internal/logger"
	"quizforge-backend/internal/models"
)

// DefaultTitle is the title of a brand-new draft.
const DefaultTitle = "Quiz Creator"

// AdminLocation is where the caller goes after a successful save.
const AdminLocation = "/admin"

var (
	ErrClosed        = errors.New("editor is closed")
	ErrSaveInFlight  = errors.New("a save is already in progress")
	ErrOptionIndex   = fmt.Errorf("option index must be in [0,%d)", models.OptionCount)
	ErrCorrectAnswer = fmt.Errorf("correct answer must be in [0,%d)", models.OptionCount)
	ErrUnknownField  = errors.New("unknown question field")
	ErrNoStoredQuiz  = errors.New("stored quiz was not loaded; reopen it before saving")
)

// Gateway is the slice of the persistence API the editor needs.
type Gateway interface {
	CreateQuiz(ctx context.Context, in models.QuizInput) (string, error)
	UpdateQuiz(ctx context.Context, id string, in models.QuizInput) error
}

type Field int

const (
	FieldQuestion Field = iota
	FieldCorrectAnswer
)

type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// Exit tells the caller to leave the editor.
type Exit struct {
	Location string
	Message  string
	QuizID   string
}

type Preview struct {
	Questions  int
	WithPrompt int
}

// View is a copy of the editor state for rendering.
type View struct {
	QuizID    string
	Title     string
	Questions []models.Question
	Current   int
	Saving    bool
	Closed    bool
}

type Option func(*Editor)

func WithLogger(log *logger.Logger) Option {
	return func(e *Editor) { e.log = log }
}

// Editor is safe for concurrent use. Gateway calls run outside the lock.
type Editor struct {
	mu        sync.Mutex
	gw        Gateway
	log       *logger.Logger
	quizID    string
	title     string
	questions []models.Question
	current   int
	nextID    int
	saving    bool
	closed    bool
	unseeded  bool // edit mode without stored questions
}

// New starts a draft. A non-empty quizID puts the editor in edit mode, and
// existing must then carry the stored title and questions: an edit-mode editor
// seeded without questions refuses to Save with ErrNoStoredQuiz so a blank
// draft never replaces a stored quiz.
//
// Stored question ids are kept, except that a repeated id is given a fresh one
// so the draft can be saved again.
func New(gw Gateway, quizID string, existing *models.QuizInput, opts ...Option) *Editor {
	e := &Editor{
		gw:     gw,
		log:    logger.Nop(),
		quizID: quizID,
		title:  DefaultTitle,
		nextID: 1,
	}
	for _, opt := range opts {
		opt(e)
	}

	if existing != nil {
		if strings.TrimSpace(existing.Title) != "" {
			e.title = existing.Title
		}
		for _, q := range existing.Questions {
			if q.ID >= e.nextID {
				e.nextID = q.ID + 1
			}
		}
		seen := make(map[int]bool, len(existing.Questions))
		for _, q := range existing.Questions {
			q = normalize(q)
			if seen[q.ID] {
				e.log.Warn("reassigning repeated question id", "quiz_id", quizID, "old_id", q.ID, "new_id", e.nextID)
				q.ID = e.nextID
				e.nextID++
			}
			seen[q.ID] = true
			e.questions = append(e.questions, q)
		}
	}
	if quizID != "" && len(e.questions) == 0 {
		e.unseeded = true
	}
	if len(e.questions) == 0 {
		e.questions = []models.Question{e.blank()}
	}
	return e
}

// normalize pads or trims options to exactly OptionCount entries.
func normalize(q models.Question) models.Question {
	q = q.Clone()
	if len(q.Options) != models.OptionCount {
		opts := make([]string, models.OptionCount)
		copy(opts, q.Options)
		q.Options = opts
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= models.OptionCount {
		q.CorrectAnswer = 0
	}
	return q
}

func (e *Editor) blank() models.Question {
	q := models.BlankQuestion(e.nextID)
	e.nextID++
	return q
}

func (e *Editor) AddQuestion() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.questions = append(e.questions, e.blank())
	e.current = len(e.questions) - 1
}

// RemoveQuestion is a no-op when only one question is left or index is out of
// range.
func (e *Editor) RemoveQuestion(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || len(e.questions) <= 1 || index < 0 || index >= len(e.questions) {
		return false
	}
	e.questions = append(e.questions[:index], e.questions[index+1:]...)
	e.current = max(0, index-1)
	return true
}

// UpdateQuestionField edits the current question. FieldCorrectAnswer takes a
// decimal index.
func (e *Editor) UpdateQuestionField(field Field, value string) error {
	switch field {
	case FieldQuestion:
		return e.SetPrompt(value)
	case FieldCorrectAnswer:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return ErrCorrectAnswer
		}
		return e.SetCorrectAnswer(n)
	}
	return ErrUnknownField
}

func (e *Editor) SetPrompt(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.questions[e.current].Question = text
	return nil
}

func (e *Editor) SetCorrectAnswer(index int) error {
	if index < 0 || index >= models.OptionCount {
		return ErrCorrectAnswer
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.questions[e.current].CorrectAnswer = index
	return nil
}

func (e *Editor) UpdateOption(index int, value string) error {
	if index < 0 || index >= models.OptionCount {
		return ErrOptionIndex
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.questions[e.current].Options[index] = value
	return nil
}

func (e *Editor) SetTitle(title string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.title = title
	return nil
}

// Navigate moves one question back or forward and reports whether it moved.
func (e *Editor) Navigate(dir Direction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || (dir != Prev && dir != Next) {
		return false
	}
	target := e.current + int(dir)
	if target < 0 || target >= len(e.questions) {
		return false
	}
	e.current = target
	return true
}

func (e *Editor) GoTo(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || index < 0 || index >= len(e.questions) {
		return false
	}
	e.current = index
	return true
}

func (e *Editor) Preview() Preview {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := Preview{Questions: len(e.questions)}
	for _, q := range e.questions {
		if strings.TrimSpace(q.Question) != "" {
			p.WithPrompt++
		}
	}
	return p
}

func (e *Editor) Snapshot() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return View{
		QuizID:    e.quizID,
		Title:     e.title,
		Questions: models.CloneQuestions(e.questions),
		Current:   e.current,
		Saving:    e.saving,
		Closed:    e.closed,
	}
}

// Save creates the quiz in create mode and updates it in edit mode. Edits never
// send the published flag, so the stored value is kept. On success the editor
// closes; on failure the draft is left as it was.
func (e *Editor) Save(ctx context.Context) (Exit, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return Exit{}, ErrClosed
	}
	if e.saving {
		e.mu.Unlock()
		return Exit{}, ErrSaveInFlight
	}
	if e.unseeded {
		e.mu.Unlock()
		return Exit{}, ErrNoStoredQuiz
	}
	e.saving = true
	id := e.quizID
	in := models.QuizInput{
		Title:     e.title,
		Questions: models.CloneQuestions(e.questions),
	}
	e.mu.Unlock()

	// A save that has been issued runs to completion.
	ctx = context.WithoutCancel(ctx)

	var (
		newID string
		err   error
	)
	if id == "" {
		newID, err = e.gw.CreateQuiz(ctx, in)
	} else {
		err = e.gw.UpdateQuiz(ctx, id, in)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false

	if err != nil {
		e.log.Error("failed to save quiz", "quiz_id", id, "questions", len(in.Questions), "error", err)
		return Exit{}, fmt.Errorf("failed to save quiz: %w", err)
	}

	msg := "Quiz updated"
	if id == "" {
		e.quizID = newID
		msg = "Quiz created"
	}
	e.closed = true
	e.log.Info("quiz saved", "quiz_id", e.quizID)
	return Exit{Location: AdminLocation, Message: msg, QuizID: e.quizID}, nil
}
