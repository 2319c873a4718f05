package quiz

// Cue is the audio feedback played after an answer is submitted.
type Cue string

const (
	CueCorrect   Cue = "correct"
	CueIncorrect Cue = "incorrect"
)

// Sound returns the static asset path clients play for the cue.
func (c Cue) Sound() string {
	if c == CueCorrect {
		return "/sounds/true.mp3"
	}
	return "/sounds/false.mp3"
}

// CueFor returns the cue for an answer outcome.
func CueFor(correct bool) Cue {
	if correct {
		return CueCorrect
	}
	return CueIncorrect
}

// CuePlayer delivers audio cues. Play must not block; a failed or dropped
// cue never affects session state.
type CuePlayer interface {
	Play(cue Cue) error
}

// CuePlayerFunc adapts a function to CuePlayer.
type CuePlayerFunc func(Cue) error

func (f CuePlayerFunc) Play(c Cue) error { return f(c) }

// NopCuePlayer discards every cue.
type NopCuePlayer struct{}

func (NopCuePlayer) Play(Cue) error { return nil }
