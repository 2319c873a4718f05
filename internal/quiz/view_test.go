package quiz_test

import (
	"testing"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

func optionStates(v quiz.View) []quiz.OptionState {
	var states []quiz.OptionState
	for _, o := range v.Question.Options {
		states = append(states, o.State)
	}
	return states
}

func equalStates(a, b []quiz.OptionState) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestView_MultipleChoiceStates(t *testing.T) {
	s := startedSession(t, multipleChoiceQuiz(), quiz.SessionConfig{QuizID: "mc"})

	v := s.View()
	if v.Question == nil || v.Question.Kind != quiz.KindMultipleChoice {
		t.Fatalf("Question = %+v, want multiple choice", v.Question)
	}
	if v.Position != 1 || v.Total != 4 || v.Progress != 25 {
		t.Errorf("Position/Total/Progress = %d/%d/%d, want 1/4/25", v.Position, v.Total, v.Progress)
	}
	if v.CanSubmit {
		t.Error("CanSubmit should be false before a selection")
	}

	s.SelectAnswer(quiz.Option(2))
	v = s.View()
	want := []quiz.OptionState{quiz.OptionNeutral, quiz.OptionNeutral, quiz.OptionSelected, quiz.OptionNeutral}
	if got := optionStates(v); !equalStates(got, want) {
		t.Errorf("states after select = %v, want %v", got, want)
	}
	if !v.CanSubmit {
		t.Error("CanSubmit should be true after a selection")
	}

	s.SubmitAnswer()
	v = s.View()
	want = []quiz.OptionState{quiz.OptionRevealed, quiz.OptionNeutral, quiz.OptionIncorrect, quiz.OptionNeutral}
	if got := optionStates(v); !equalStates(got, want) {
		t.Errorf("states after wrong submit = %v, want %v", got, want)
	}
	if v.Feedback == nil || v.Feedback.Correct || v.Feedback.CorrectText != "a" {
		t.Errorf("Feedback = %+v, want incorrect with text a", v.Feedback)
	}
	if v.Next != quiz.NextQuestion {
		t.Errorf("Next = %q, want %q", v.Next, quiz.NextQuestion)
	}
}

func TestView_TrueFalseStates(t *testing.T) {
	s := startedSession(t, trueFalseQuiz(), quiz.SessionConfig{QuizID: "tf"})

	v := s.View()
	if v.Question.Kind != quiz.KindTrueFalse || len(v.Question.Options) != 2 {
		t.Fatalf("Question = %+v, want two true/false options", v.Question)
	}

	s.SelectAnswer(quiz.Bool(true))
	s.SubmitAnswer()
	v = s.View()
	want := []quiz.OptionState{quiz.OptionCorrect, quiz.OptionNeutral}
	if got := optionStates(v); !equalStates(got, want) {
		t.Errorf("states = %v, want %v", got, want)
	}
}

func TestView_LastQuestionOffersResults(t *testing.T) {
	s := startedSession(t, trueFalseQuiz(), quiz.SessionConfig{QuizID: "tf"})
	answer(t, s, quiz.Bool(true))

	s.SelectAnswer(quiz.Bool(false))
	s.SubmitAnswer()
	v := s.View()
	if v.Next != quiz.NextResults {
		t.Errorf("Next = %q, want %q", v.Next, quiz.NextResults)
	}
	if v.Progress != 100 {
		t.Errorf("Progress = %d, want 100", v.Progress)
	}
}

func TestView_IsDerived(t *testing.T) {
	s := startedSession(t, trueFalseQuiz(), quiz.SessionConfig{QuizID: "tf"})
	before := s.View()
	_ = s.View()

	if s.Phase() != before.Phase || len(s.History()) != 0 {
		t.Error("View() must not change the session")
	}
}

func TestSummary_UnavailableBeforeCompletion(t *testing.T) {
	s := startedSession(t, trueFalseQuiz(), quiz.SessionConfig{QuizID: "tf"})
	if _, ok := s.Summary(); ok {
		t.Error("Summary() should be unavailable mid-quiz")
	}
}
