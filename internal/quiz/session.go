package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Phase is the externally visible state of a session.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseAwaitingSelection
	PhaseAwaitingSubmit
	PhaseAnswered
	PhaseCompleted
	PhaseFailed
)

var phaseNames = map[Phase]string{
	PhaseLoading:           "loading",
	PhaseAwaitingSelection: "awaiting_selection",
	PhaseAwaitingSubmit:    "awaiting_submit",
	PhaseAnswered:          "answered",
	PhaseCompleted:         "completed",
	PhaseFailed:            "failed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// InProgress reports whether p is one of the question-answering phases.
func (p Phase) InProgress() bool {
	return p == PhaseAwaitingSelection || p == PhaseAwaitingSubmit || p == PhaseAnswered
}

var (
	// ErrLoadFailure marks a session whose quiz could not be fetched.
	ErrLoadFailure = errors.New("quiz load failed")
	// ErrEmptyQuiz marks a session whose quiz resolved to zero questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
)

// Loader resolves a quiz by its identifier.
type Loader interface {
	LoadQuiz(ctx context.Context, quizID string) (Quiz, error)
}

// SessionConfig holds the inputs of a new session.
type SessionConfig struct {
	QuizID       string
	SoundEnabled bool
	Cues         CuePlayer // nil plays nothing
}

// Session is one run through a single quiz. It is not safe for concurrent
// use; callers serialize transitions.
type Session struct {
	quizID string
	title  string
	loaded bool
	err    error

	questions []FlatQuestion
	index     int
	selected  Answer
	submitted bool
	completed bool
	score     int
	history   []AnsweredRecord

	soundEnabled bool
	cues         CuePlayer
}

// NewSession creates a session in the loading phase.
func NewSession(cfg SessionConfig) *Session {
	cues := cfg.Cues
	if cues == nil {
		cues = NopCuePlayer{}
	}
	return &Session{
		quizID:       cfg.QuizID,
		soundEnabled: cfg.SoundEnabled,
		cues:         cues,
	}
}

// Load fetches the quiz and starts the session. It only runs while loading
// or after a failure; a load error leaves the session in PhaseFailed and is
// also returned.
func (s *Session) Load(ctx context.Context, loader Loader) error {
	if p := s.Phase(); p != PhaseLoading && p != PhaseFailed {
		return nil
	}

	q, err := loader.LoadQuiz(ctx, s.quizID)
	if err != nil {
		s.fail(fmt.Errorf("%w: %s: %w", ErrLoadFailure, s.quizID, err))
		return s.err
	}
	return s.Begin(q)
}

// Reload discards all progress and fetches the quiz again.
func (s *Session) Reload(ctx context.Context, loader Loader) error {
	s.loaded = false
	s.err = nil
	s.title = ""
	s.questions = nil
	s.reset()
	return s.Load(ctx, loader)
}

// Begin starts the session with an already resolved quiz.
func (s *Session) Begin(q Quiz) error {
	questions := q.Flatten()
	if len(questions) == 0 {
		s.fail(fmt.Errorf("%w: %s", ErrEmptyQuiz, s.quizID))
		return s.err
	}

	s.title = q.Title
	s.questions = questions
	s.loaded = true
	s.err = nil
	s.reset()

	slog.Debug("quiz session started",
		"quiz_id", s.quizID,
		"questions", len(questions),
	)
	return nil
}

func (s *Session) fail(err error) {
	s.err = err
	s.loaded = false
	s.questions = nil
	s.reset()
}

// SelectAnswer records a tentative choice for the current question. It is
// rejected once the question has been submitted, or when the choice does
// not fit the question.
func (s *Session) SelectAnswer(a Answer) bool {
	if !s.Phase().InProgress() || s.submitted {
		return false
	}
	if !s.questions[s.index].Accepts(a) {
		return false
	}
	s.selected = a
	return true
}

// SubmitAnswer grades the selected answer, appends it to the history and
// plays the matching cue when sound is enabled.
func (s *Session) SubmitAnswer() bool {
	if s.Phase() != PhaseAwaitingSubmit {
		return false
	}

	q := s.questions[s.index]
	correct := s.selected.Equal(q.Correct)

	s.history = append(s.history, AnsweredRecord{
		QuestionID: q.ID,
		Selected:   s.selected,
		Correct:    correct,
	})
	if correct {
		s.score++
	}
	s.submitted = true

	if s.soundEnabled {
		s.playCue(CueFor(correct))
	}
	return true
}

// playCue runs the cue side effect; errors and panics are logged and never
// reach the caller.
func (s *Session) playCue(c Cue) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("cue player panicked", "quiz_id", s.quizID, "cue", c.Sound(), "panic", r)
		}
	}()
	if err := s.cues.Play(c); err != nil {
		slog.Debug("cue playback failed", "quiz_id", s.quizID, "error", err)
	}
}

// Advance moves past an answered question, completing the session after
// the last one.
func (s *Session) Advance() bool {
	if s.Phase() != PhaseAnswered {
		return false
	}
	if s.index < len(s.questions)-1 {
		s.index++
		s.selected = Answer{}
		s.submitted = false
		return true
	}
	s.completed = true
	return true
}

// Restart clears all progress. The loaded questions are kept.
func (s *Session) Restart() {
	s.reset()
}

func (s *Session) reset() {
	s.index = 0
	s.selected = Answer{}
	s.submitted = false
	s.completed = false
	s.score = 0
	s.history = nil
}

// SetSoundEnabled turns the answer cue on or off for this session.
func (s *Session) SetSoundEnabled(enabled bool) {
	s.soundEnabled = enabled
}

// ToggleSound flips the sound flag and returns the new value.
func (s *Session) ToggleSound() bool {
	s.soundEnabled = !s.soundEnabled
	return s.soundEnabled
}

// SetCuePlayer replaces the cue sink; nil plays nothing.
func (s *Session) SetCuePlayer(p CuePlayer) {
	if p == nil {
		p = NopCuePlayer{}
	}
	s.cues = p
}

// Phase derives the session phase from its state.
func (s *Session) Phase() Phase {
	switch {
	case s.err != nil:
		return PhaseFailed
	case !s.loaded:
		return PhaseLoading
	case s.completed:
		return PhaseCompleted
	case s.submitted:
		return PhaseAnswered
	case s.selected.IsSet():
		return PhaseAwaitingSubmit
	default:
		return PhaseAwaitingSelection
	}
}

func (s *Session) QuizID() string     { return s.quizID }
func (s *Session) Title() string      { return s.title }
func (s *Session) Err() error         { return s.err }
func (s *Session) Total() int         { return len(s.questions) }
func (s *Session) Index() int         { return s.index }
func (s *Session) Selected() Answer   { return s.selected }
func (s *Session) Submitted() bool    { return s.submitted }
func (s *Session) Score() int         { return s.score }
func (s *Session) SoundEnabled() bool { return s.soundEnabled }

// Current returns the question at the current index.
func (s *Session) Current() (FlatQuestion, bool) {
	if !s.loaded || s.index >= len(s.questions) {
		return FlatQuestion{}, false
	}
	return s.questions[s.index], true
}

// Questions returns a copy of the flattened question list.
func (s *Session) Questions() []FlatQuestion {
	return append([]FlatQuestion(nil), s.questions...)
}

// History returns a copy of the answered records in submission order.
func (s *Session) History() []AnsweredRecord {
	return append([]AnsweredRecord(nil), s.history...)
}

// Percentage returns the rounded score percentage over all questions.
func (s *Session) Percentage() int {
	return Percentage(s.score, len(s.questions))
}
