// Package profile drives the student's own profile form: locked once a record
// exists, editable on request, restored on cancel.
package profile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"quizforge-backend/internal/logger"
	"quizforge-backend/internal/models"
)

type State int

const (
	Locked State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "locked"
}

var (
	ErrLocked       = errors.New("profile is locked; start editing first")
	ErrUnknownField = errors.New("unknown profile field")
	ErrNoSession    = errors.New("a signed-in session is required")
	ErrNotEditing   = errors.New("profile is not being edited")
	ErrSaveInFlight = errors.New("a save is already in progress")
)

// Gateway is the slice of the persistence API the form needs.
type Gateway interface {
	GetStudentProfile(ctx context.Context, email string) (*models.StudentProfile, error)
	UpsertStudentProfile(ctx context.Context, email string, fields models.StudentProfileFields) error
}

// fieldSetters are keyed by the JSON name of each editable column.
var fieldSetters = map[string]func(*models.StudentProfileFields, string){
	"name":            func(f *models.StudentProfileFields, v string) { f.Name = v },
	"roll_number":     func(f *models.StudentProfileFields, v string) { f.RollNumber = v },
	"university":      func(f *models.StudentProfileFields, v string) { f.University = v },
	"program":         func(f *models.StudentProfileFields, v string) { f.Program = v },
	"current_year":    func(f *models.StudentProfileFields, v string) { f.CurrentYear = v },
	"graduation_year": func(f *models.StudentProfileFields, v string) { f.GraduationYear = v },
}

// FieldNames lists the editable fields in a stable order.
func FieldNames() []string {
	names := make([]string, 0, len(fieldSetters))
	for k := range fieldSetters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type Option func(*Form)

func WithLogger(log *logger.Logger) Option {
	return func(f *Form) { f.log = log }
}

type Form struct {
	mu       sync.Mutex
	gw       Gateway
	log      *logger.Logger
	email    string
	state    State
	values   models.StudentProfileFields
	snapshot models.StudentProfileFields
	saving   bool
}

// Load fetches the session user's profile. With no stored record the form
// opens in Editing with blank values.
func Load(ctx context.Context, gw Gateway, session *models.Session, opts ...Option) (*Form, error) {
	if session == nil || session.Email == "" {
		return nil, ErrNoSession
	}
	f := &Form{gw: gw, log: logger.Nop(), email: session.Email}
	for _, opt := range opts {
		opt(f)
	}

	p, err := gw.GetStudentProfile(ctx, session.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if p == nil {
		f.state = Editing
		return f, nil
	}
	f.state = Locked
	f.values = p.Fields()
	f.snapshot = f.values
	return f, nil
}

func (f *Form) Email() string { return f.email }

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) Values() models.StudentProfileFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// StartEditing unlocks the form and remembers the current values for Cancel.
func (f *Form) StartEditing() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Editing {
		return
	}
	f.snapshot = f.values
	f.state = Editing
}

func (f *Form) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Editing || f.saving {
		return
	}
	f.values = f.snapshot
	f.state = Locked
}

func (f *Form) Set(field, value string) error {
	set, ok := fieldSetters[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Editing {
		return ErrLocked
	}
	if f.saving {
		return ErrSaveInFlight
	}
	set(&f.values, value)
	return nil
}

// Save persists the current values and then shows what the server stored,
// which may be normalized. If that read fails the sent values are shown. On
// failure the form stays in Editing with the values intact.
func (f *Form) Save(ctx context.Context) error {
	f.mu.Lock()
	if f.state != Editing {
		f.mu.Unlock()
		return ErrNotEditing
	}
	if f.saving {
		f.mu.Unlock()
		return ErrSaveInFlight
	}
	f.saving = true
	values := f.values
	f.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	err := f.gw.UpsertStudentProfile(ctx, f.email, values)
	stored := values
	if err == nil {
		p, rerr := f.gw.GetStudentProfile(ctx, f.email)
		switch {
		case rerr != nil:
			f.log.Warn("failed to reload saved student profile", "email", f.email, "error", rerr)
		case p != nil:
			stored = p.Fields()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.saving = false
	if err != nil {
		f.log.Error("failed to save student profile", "email", f.email, "error", err)
		return fmt.Errorf("failed to save profile: %w", err)
	}
	f.snapshot = stored
	f.values = stored
	f.state = Locked
	f.log.Info("student profile saved", "email", f.email)
	return nil
}
