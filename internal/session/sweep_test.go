package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

type fixedLoader struct{}

func (fixedLoader) LoadQuiz(context.Context, string) (quiz.Quiz, error) {
	return quiz.Quiz{Title: "one", Sections: []quiz.Section{{
		Questions: []quiz.Question{{ID: 1, Prompt: "p", Correct: quiz.Bool(true)}},
	}}}, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestManager_Sweep(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewManager(fixedLoader{}, Options{IdleTTL: 30 * time.Minute})
	m.now = clock.Now

	idle, _ := m.Create(context.Background(), "q")
	clock.Advance(20 * time.Minute)
	active, _ := m.Create(context.Background(), "q")

	clock.Advance(15 * time.Minute)
	if _, err := m.View(active); err != nil {
		t.Fatalf("View(active) error = %v", err)
	}

	if n := m.Sweep(); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
	if _, err := m.View(idle); err == nil {
		t.Error("idle session survived the sweep")
	}
	if _, err := m.View(active); err != nil {
		t.Errorf("active session evicted: %v", err)
	}
}

func TestManager_SweepDisabled(t *testing.T) {
	m := NewManager(fixedLoader{}, Options{})
	m.Create(context.Background(), "q")

	if n := m.Sweep(); n != 0 {
		t.Errorf("Sweep() = %d, want 0", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.Run(ctx)
}

func TestManager_RunStopsOnCancel(t *testing.T) {
	m := NewManager(fixedLoader{}, Options{IdleTTL: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
