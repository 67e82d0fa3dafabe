package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizforge-backend/internal/models"
	"quizforge-backend/internal/repository"
)

// memQuizStore mimics the stores: ids are opaque strings and unknown ids are
// repository.ErrNotFound.
type memQuizStore struct {
	mu      sync.Mutex
	quizzes map[string]*models.Quiz
	seq     int
	err     error
	// blockSetPublished, when set, is waited on inside SetPublished.
	blockSetPublished chan struct{}
}

func newMemQuizStore() *memQuizStore {
	return &memQuizStore{quizzes: map[string]*models.Quiz{}}
}

func (m *memQuizStore) Create(_ context.Context, q *models.Quiz) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	q.ID = uuid.NewString()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Date(2025, 1, 1, 0, 0, m.seq, 0, time.UTC)
	}
	q.UpdatedAt = q.CreatedAt
	cp := *q
	cp.Questions = models.CloneQuestions(q.Questions)
	m.quizzes[q.ID] = &cp
	return nil
}

func (m *memQuizStore) GetByID(_ context.Context, id string) (*models.Quiz, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *q
	cp.Questions = models.CloneQuestions(q.Questions)
	return &cp, nil
}

func (m *memQuizStore) Update(_ context.Context, id string, title string, questions []models.Question, published *bool) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return repository.ErrNotFound
	}
	q.Title = title
	q.Questions = models.CloneQuestions(questions)
	if published != nil {
		q.Published = *published
	}
	return nil
}

func (m *memQuizStore) SetPublished(_ context.Context, id string, published bool) (bool, error) {
	if m.blockSetPublished != nil {
		<-m.blockSetPublished
	}
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	q.Published = published
	return q.Published, nil
}

func (m *memQuizStore) List(_ context.Context) ([]models.QuizSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.QuizSummary, 0, len(m.quizzes))
	for _, q := range m.quizzes {
		out = append(out, q.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func (l *memLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	if l.err != nil {
		return func() {}, false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return func() {}, false, nil
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, true, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	messages []models.WSMessage
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, msg models.WSMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.messages = append(p.messages, msg)
	return p.err
}

type memKV struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) GetDel(_ context.Context, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	delete(m.data, key)
	return v, nil
}

func (m *memKV) Del(_ context.Context, key string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) keysWithPrefix(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys
}

var errStoreDown = errors.New("connection refused")
