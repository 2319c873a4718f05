// Package session keeps live quiz sessions in memory and serializes the
// transitions applied to each of them.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

// ErrNotFound is returned for unknown or evicted session ids.
var ErrNotFound = errors.New("session not found")

// Options configures a Manager.
type Options struct {
	SoundDefault bool
	IdleTTL      time.Duration // zero disables eviction
	Events       EventLogger   // nil logs nothing
}

// Result is the outcome of a transition: whether it was accepted and the
// session view afterwards. Rejected transitions leave the view unchanged.
type Result struct {
	Accepted bool `json:"accepted"`
	quiz.View
}

type entry struct {
	mu       sync.Mutex
	session  *quiz.Session
	cues     *cueFanout
	lastUsed atomic.Int64
}

func (e *entry) touch(t time.Time) {
	e.lastUsed.Store(t.UnixNano())
}

// Manager owns the live sessions.
type Manager struct {
	loader       quiz.Loader
	events       EventLogger
	soundDefault bool
	idleTTL      time.Duration
	now          func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
}

// NewManager creates a session manager that loads quizzes through loader.
func NewManager(loader quiz.Loader, opts Options) *Manager {
	events := opts.Events
	if events == nil {
		events = NopEventLogger{}
	}
	return &Manager{
		loader:       loader,
		events:       events,
		soundDefault: opts.SoundDefault,
		idleTTL:      opts.IdleTTL,
		now:          time.Now,
		entries:      make(map[string]*entry),
	}
}

// Create starts a session for quizID and loads its quiz. A load failure
// still yields a session, in the failed phase, that can be reloaded.
func (m *Manager) Create(ctx context.Context, quizID string) (string, quiz.View) {
	id := uuid.NewString()
	e := &entry{cues: newCueFanout()}
	e.session = quiz.NewSession(quiz.SessionConfig{
		QuizID:       quizID,
		SoundEnabled: m.soundDefault,
		Cues:         e.cues,
	})
	e.touch(m.now())

	err := e.session.Load(ctx, m.loader)
	m.logLoad(id, e.session, err)

	m.mu.Lock()
	m.entries[id] = e
	m.mu.Unlock()

	return id, e.session.View()
}

func (m *Manager) entry(id string) (*entry, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// do runs fn with exclusive access to the session.
func (m *Manager) do(id string, fn func(s *quiz.Session) bool) (Result, error) {
	e, err := m.entry(id)
	if err != nil {
		return Result{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch(m.now())

	accepted := fn(e.session)
	return Result{Accepted: accepted, View: e.session.View()}, nil
}

// View returns the current view of a session.
func (m *Manager) View(id string) (quiz.View, error) {
	res, err := m.do(id, func(*quiz.Session) bool { return true })
	return res.View, err
}

// Summary returns the results of a completed session.
func (m *Manager) Summary(id string) (quiz.Summary, bool, error) {
	var (
		sum quiz.Summary
		ok  bool
	)
	_, err := m.do(id, func(s *quiz.Session) bool {
		sum, ok = s.Summary()
		return ok
	})
	return sum, ok, err
}

// Select records a tentative answer.
func (m *Manager) Select(id string, a quiz.Answer) (Result, error) {
	return m.do(id, func(s *quiz.Session) bool {
		return s.SelectAnswer(a)
	})
}

// Submit grades the selected answer.
func (m *Manager) Submit(id string) (Result, error) {
	return m.do(id, func(s *quiz.Session) bool {
		if !s.SubmitAnswer() {
			return false
		}
		history := s.History()
		last := history[len(history)-1]
		m.logEvent(id, s, EventAnswerSubmitted, map[string]any{
			"question_id": last.QuestionID,
			"position":    s.Index() + 1,
			"correct":     last.Correct,
			"score":       s.Score(),
		})
		return true
	})
}

// Advance moves to the next question or completes the quiz.
func (m *Manager) Advance(id string) (Result, error) {
	return m.do(id, func(s *quiz.Session) bool {
		if !s.Advance() {
			return false
		}
		if s.Phase() == quiz.PhaseCompleted {
			pct := s.Percentage()
			m.logEvent(id, s, EventQuizCompleted, map[string]any{
				"score":      s.Score(),
				"total":      s.Total(),
				"percentage": pct,
				"tier":       quiz.TierFor(pct).String(),
			})
		}
		return true
	})
}

// Restart clears all progress. It is rejected while the session has no
// questions.
func (m *Manager) Restart(id string) (Result, error) {
	return m.do(id, func(s *quiz.Session) bool {
		if p := s.Phase(); p == quiz.PhaseLoading || p == quiz.PhaseFailed {
			return false
		}
		answered := len(s.History())
		s.Restart()
		m.logEvent(id, s, EventQuizRestarted, map[string]any{
			"answered": answered,
		})
		return true
	})
}

// Reload refetches the quiz and starts over. It is accepted when the quiz
// loaded.
func (m *Manager) Reload(ctx context.Context, id string) (Result, error) {
	return m.do(id, func(s *quiz.Session) bool {
		err := s.Reload(ctx, m.loader)
		m.logLoad(id, s, err)
		return err == nil
	})
}

// SetSound turns the answer cue on or off.
func (m *Manager) SetSound(id string, enabled bool) (Result, error) {
	return m.do(id, func(s *quiz.Session) bool {
		s.SetSoundEnabled(enabled)
		return true
	})
}

// ToggleSound flips the answer cue flag.
func (m *Manager) ToggleSound(id string) (Result, error) {
	return m.do(id, func(s *quiz.Session) bool {
		s.ToggleSound()
		return true
	})
}

// Subscribe returns the cues played by a session from now on. The channel
// is closed by cancel or when the session goes away.
func (m *Manager) Subscribe(id string) (<-chan quiz.Cue, func(), error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := e.cues.subscribe()
	return ch, cancel, nil
}

// Delete ends a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	delete(m.entries, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.cues.closeAll()
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep evicts sessions idle for longer than the idle TTL and returns how
// many were removed.
func (m *Manager) Sweep() int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTTL).UnixNano()

	m.mu.Lock()
	var evicted []*entry
	for id, e := range m.entries {
		if e.lastUsed.Load() < cutoff {
			delete(m.entries, id)
			evicted = append(evicted, e)
		}
	}
	m.mu.Unlock()

	for _, e := range evicted {
		e.cues.closeAll()
	}
	if len(evicted) > 0 {
		slog.Info("idle sessions evicted", "count", len(evicted))
	}
	return len(evicted)
}

// Run sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	if m.idleTTL <= 0 {
		return
	}
	interval := m.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) logLoad(id string, s *quiz.Session, err error) {
	if err != nil {
		slog.Warn("quiz load failed", "session_id", id, "quiz_id", s.QuizID(), "error", err)
		m.logEvent(id, s, EventQuizLoadFailed, map[string]any{
			"error":      err.Error(),
			"empty_quiz": errors.Is(err, quiz.ErrEmptyQuiz),
		})
		return
	}
	m.logEvent(id, s, EventSessionStarted, map[string]any{
		"questions": s.Total(),
	})
}

func (m *Manager) logEvent(id string, s *quiz.Session, eventType string, data map[string]any) {
	err := m.events.LogEvent(Event{
		SessionID: id,
		QuizID:    s.QuizID(),
		EventType: eventType,
		Data:      data,
		CreatedAt: m.now(),
	})
	if err != nil {
		slog.Warn("failed to log event", "type", eventType, "session_id", id, "error", err)
	}
}
