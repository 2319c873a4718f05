package session_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
	"github.com/p-n-ai/pai-quiz/internal/session"
)

var errUnavailable = errors.New("upstream unavailable")

type mapLoader struct {
	mu      sync.Mutex
	quizzes map[string]quiz.Quiz
	fail    bool
}

func (l *mapLoader) LoadQuiz(_ context.Context, id string) (quiz.Quiz, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail {
		return quiz.Quiz{}, errUnavailable
	}
	q, ok := l.quizzes[id]
	if !ok {
		return quiz.Quiz{}, errUnavailable
	}
	return q, nil
}

func (l *mapLoader) setFail(fail bool) {
	l.mu.Lock()
	l.fail = fail
	l.mu.Unlock()
}

func newLoader() *mapLoader {
	return &mapLoader{quizzes: map[string]quiz.Quiz{
		"tf": {
			Title: "True or false",
			Sections: []quiz.Section{{
				Name: "Basics",
				Questions: []quiz.Question{
					{ID: 1, Prompt: "Go has goroutines", Correct: quiz.Bool(true), CorrectText: "صح"},
					{ID: 2, Prompt: "Go has classes", Correct: quiz.Bool(false), CorrectText: "خطأ"},
				},
			}},
		},
		"empty": {Title: "Empty"},
	}}
}

func newManager(t *testing.T, loader quiz.Loader) (*session.Manager, *session.MemoryEventLogger) {
	t.Helper()
	events := session.NewMemoryEventLogger()
	return session.NewManager(loader, session.Options{SoundDefault: true, Events: events}), events
}

func mustResult(t *testing.T) func(session.Result, error) session.Result {
	t.Helper()
	return func(res session.Result, err error) session.Result {
		t.Helper()
		if err != nil {
			t.Fatalf("transition error = %v", err)
		}
		return res
	}
}

func TestManager_FullRun(t *testing.T) {
	m, events := newManager(t, newLoader())

	id, view := m.Create(context.Background(), "tf")
	if view.Phase != quiz.PhaseAwaitingSelection {
		t.Fatalf("phase = %v, want awaiting_selection", view.Phase)
	}
	if !view.SoundEnabled {
		t.Error("SoundEnabled = false, want default true")
	}

	res := mustResult(t)(m.Select(id, quiz.Bool(true)))
	if !res.Accepted || res.Phase != quiz.PhaseAwaitingSubmit {
		t.Fatalf("Select() = %+v", res)
	}
	res = mustResult(t)(m.Submit(id))
	if !res.Accepted || res.Score != 1 {
		t.Fatalf("Submit() accepted=%v score=%d", res.Accepted, res.Score)
	}
	mustResult(t)(m.Advance(id))
	mustResult(t)(m.Select(id, quiz.Bool(true)))
	mustResult(t)(m.Submit(id))
	res = mustResult(t)(m.Advance(id))
	if res.Phase != quiz.PhaseCompleted {
		t.Fatalf("phase = %v, want completed", res.Phase)
	}

	sum, ok, err := m.Summary(id)
	if err != nil || !ok {
		t.Fatalf("Summary() ok=%v error=%v", ok, err)
	}
	if sum.Score != 1 || sum.Percentage != 50 || sum.Tier != quiz.TierNeedsReview {
		t.Errorf("Summary() = %+v, want 1/2 50%% needs_review", sum)
	}

	want := []string{
		session.EventSessionStarted,
		session.EventAnswerSubmitted,
		session.EventAnswerSubmitted,
		session.EventQuizCompleted,
	}
	if got := events.Types(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	last := events.Events()[3]
	if last.SessionID != id || last.QuizID != "tf" || last.Data["percentage"] != 50 {
		t.Errorf("completed event = %+v", last)
	}
}

func TestManager_RejectedTransitionKeepsView(t *testing.T) {
	m, _ := newManager(t, newLoader())
	id, before := m.Create(context.Background(), "tf")

	res := mustResult(t)(m.Submit(id))
	if res.Accepted {
		t.Fatal("Submit() without a selection should be rejected")
	}
	if !reflect.DeepEqual(res.View, before) {
		t.Errorf("view changed after rejected submit:\n got %+v\nwant %+v", res.View, before)
	}

	res = mustResult(t)(m.Advance(id))
	if res.Accepted {
		t.Error("Advance() before submit should be rejected")
	}
}

func TestManager_LoadFailureAndReload(t *testing.T) {
	loader := newLoader()
	loader.setFail(true)
	m, events := newManager(t, loader)

	id, view := m.Create(context.Background(), "tf")
	if view.Phase != quiz.PhaseFailed || view.Error == "" {
		t.Fatalf("view = %+v, want failed with error", view)
	}

	res := mustResult(t)(m.Restart(id))
	if res.Accepted {
		t.Error("Restart() on a failed session should be rejected")
	}
	res = mustResult(t)(m.Select(id, quiz.Bool(true)))
	if res.Accepted {
		t.Error("Select() on a failed session should be rejected")
	}

	loader.setFail(false)
	res = mustResult(t)(m.Reload(context.Background(), id))
	if !res.Accepted || res.Phase != quiz.PhaseAwaitingSelection {
		t.Fatalf("Reload() = %+v, want accepted awaiting_selection", res)
	}

	want := []string{session.EventQuizLoadFailed, session.EventSessionStarted}
	if got := events.Types(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestManager_EmptyQuiz(t *testing.T) {
	m, events := newManager(t, newLoader())

	_, view := m.Create(context.Background(), "empty")
	if view.Phase != quiz.PhaseFailed {
		t.Fatalf("phase = %v, want failed", view.Phase)
	}
	ev := events.Events()
	if len(ev) != 1 || ev[0].Data["empty_quiz"] != true {
		t.Errorf("events = %+v, want one quiz_load_failed with empty_quiz", ev)
	}
}

func TestManager_Restart(t *testing.T) {
	m, events := newManager(t, newLoader())
	id, _ := m.Create(context.Background(), "tf")

	mustResult(t)(m.Select(id, quiz.Bool(true)))
	mustResult(t)(m.Submit(id))

	res := mustResult(t)(m.Restart(id))
	if !res.Accepted || res.Score != 0 || res.Position != 1 || res.Phase != quiz.PhaseAwaitingSelection {
		t.Errorf("Restart() = %+v, want fresh first question", res)
	}
	ev := events.Events()
	if got := ev[len(ev)-1]; got.EventType != session.EventQuizRestarted || got.Data["answered"] != 1 {
		t.Errorf("last event = %+v, want quiz_restarted with answered=1", got)
	}
}

func TestManager_Sound(t *testing.T) {
	m, _ := newManager(t, newLoader())
	id, _ := m.Create(context.Background(), "tf")

	res := mustResult(t)(m.SetSound(id, false))
	if res.SoundEnabled {
		t.Error("SetSound(false) left sound on")
	}
	res = mustResult(t)(m.ToggleSound(id))
	if !res.SoundEnabled {
		t.Error("ToggleSound() left sound off")
	}
}

func TestManager_Cues(t *testing.T) {
	m, _ := newManager(t, newLoader())
	id, _ := m.Create(context.Background(), "tf")

	cues, cancel, err := m.Subscribe(id)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer cancel()

	mustResult(t)(m.Select(id, quiz.Bool(false)))
	mustResult(t)(m.Submit(id))

	select {
	case c := <-cues:
		if c != quiz.CueIncorrect {
			t.Errorf("cue = %v, want incorrect", c)
		}
	case <-time.After(time.Second):
		t.Fatal("no cue delivered")
	}

	mustResult(t)(m.SetSound(id, false))
	mustResult(t)(m.Advance(id))
	mustResult(t)(m.Select(id, quiz.Bool(false)))
	mustResult(t)(m.Submit(id))

	select {
	case c := <-cues:
		t.Errorf("cue %v delivered with sound off", c)
	default:
	}

	cancel()
	cancel()
	if _, open := <-cues; open {
		t.Error("cue channel still open after cancel")
	}
}

func TestManager_SlowSubscriberDoesNotBlock(t *testing.T) {
	m, _ := newManager(t, newLoader())
	id, _ := m.Create(context.Background(), "tf")

	_, cancel, err := m.Subscribe(id)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			m.Restart(id)
			m.Select(id, quiz.Bool(true))
			m.Submit(id)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("transitions blocked on an unread cue channel")
	}
}

func TestManager_UnknownSession(t *testing.T) {
	m, _ := newManager(t, newLoader())

	if _, err := m.View("nope"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("View() error = %v, want ErrNotFound", err)
	}
	if _, err := m.Submit("nope"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Submit() error = %v, want ErrNotFound", err)
	}
	if _, _, err := m.Subscribe("nope"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Subscribe() error = %v, want ErrNotFound", err)
	}
	if err := m.Delete("nope"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestManager_Delete(t *testing.T) {
	m, _ := newManager(t, newLoader())
	id, _ := m.Create(context.Background(), "tf")

	cues, _, err := m.Subscribe(id)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if err := m.Delete(id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
	if _, open := <-cues; open {
		t.Error("cue channel still open after Delete")
	}
}

func TestManager_ConcurrentSubmitsAcceptOnce(t *testing.T) {
	m, events := newManager(t, newLoader())
	id, _ := m.Create(context.Background(), "tf")
	mustResult(t)(m.Select(id, quiz.Bool(true)))

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := m.Submit(id)
			if err == nil && res.Accepted {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	if accepted.Load() != 1 {
		t.Errorf("accepted submits = %d, want 1", accepted.Load())
	}
	view, err := m.View(id)
	if err != nil {
		t.Fatal(err)
	}
	if view.Score != 1 {
		t.Errorf("Score = %d, want 1", view.Score)
	}
	if n := len(events.Events()); n != 2 {
		t.Errorf("len(events) = %d, want 2", n)
	}
}
