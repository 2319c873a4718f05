package session

import (
	"sync"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

const cueBuffer = 4

// cueFanout is the cue player of a managed session. It hands each cue to
// every subscriber without blocking; a subscriber whose buffer is full
// misses the cue.
type cueFanout struct {
	mu   sync.Mutex
	next int
	subs map[int]chan quiz.Cue
}

func newCueFanout() *cueFanout {
	return &cueFanout{subs: make(map[int]chan quiz.Cue)}
}

func (f *cueFanout) Play(c quiz.Cue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- c:
		default:
		}
	}
	return nil
}

func (f *cueFanout) subscribe() (<-chan quiz.Cue, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++
	ch := make(chan quiz.Cue, cueBuffer)
	f.subs[id] = ch

	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if ch, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(ch)
		}
	}
}

func (f *cueFanout) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}
