package quiz

// OptionState is how a single answer option should be presented.
type OptionState string

const (
	OptionNeutral   OptionState = "neutral"
	OptionSelected  OptionState = "selected"
	OptionCorrect   OptionState = "correct"
	OptionIncorrect OptionState = "incorrect"
	OptionRevealed  OptionState = "revealed"
)

// Question kinds.
const (
	KindMultipleChoice = "multiple_choice"
	KindTrueFalse      = "true_false"
)

// Next-button actions shown after a question is answered.
const (
	NextQuestion = "next"
	NextResults  = "results"
)

type OptionView struct {
	Answer Answer      `json:"answer"`
	Label  string      `json:"label"`
	State  OptionState `json:"state"`
}

type QuestionView struct {
	ID          int          `json:"id"`
	Prompt      string       `json:"question"`
	SectionName string       `json:"sectionName"`
	Difficulty  string       `json:"difficulty"`
	Kind        string       `json:"kind"`
	Options     []OptionView `json:"options"`
}

type Feedback struct {
	Correct     bool   `json:"correct"`
	CorrectText string `json:"correctAnswerText"`
}

// View is the render model of a session at one instant. It is derived from
// the session on demand and never stored.
type View struct {
	QuizID       string        `json:"quizId"`
	Title        string        `json:"title,omitempty"`
	Phase        Phase         `json:"phase"`
	Position     int           `json:"position,omitempty"`
	Total        int           `json:"total"`
	Progress     int           `json:"progress"`
	Score        int           `json:"score"`
	Question     *QuestionView `json:"question,omitempty"`
	Selected     Answer        `json:"selectedAnswer"`
	CanSubmit    bool          `json:"canSubmit"`
	Feedback     *Feedback     `json:"feedback,omitempty"`
	Next         string        `json:"next,omitempty"`
	SoundEnabled bool          `json:"soundEnabled"`
	Error        string        `json:"error,omitempty"`

	// Err is the load error behind PhaseFailed.
	Err error `json:"-"`
}

// View derives the render model of the current question.
func (s *Session) View() View {
	v := View{
		QuizID:       s.quizID,
		Title:        s.title,
		Phase:        s.Phase(),
		Total:        len(s.questions),
		Score:        s.score,
		Selected:     s.selected,
		SoundEnabled: s.soundEnabled,
	}

	if v.Phase == PhaseFailed {
		v.Error = s.err.Error()
		v.Err = s.err
		return v
	}
	if !v.Phase.InProgress() {
		return v
	}

	q := s.questions[s.index]
	v.Position = s.index + 1
	v.Progress = Percentage(s.index+1, len(s.questions))
	v.CanSubmit = v.Phase == PhaseAwaitingSubmit
	v.Question = s.questionView(q)

	if s.submitted && len(s.history) > 0 {
		last := s.history[len(s.history)-1]
		v.Feedback = &Feedback{Correct: last.Correct, CorrectText: q.CorrectText}
		v.Next = NextResults
		if s.index < len(s.questions)-1 {
			v.Next = NextQuestion
		}
	}
	return v
}

func (s *Session) questionView(q FlatQuestion) *QuestionView {
	qv := &QuestionView{
		ID:          q.ID,
		Prompt:      q.Prompt,
		SectionName: q.SectionName,
		Difficulty:  q.Difficulty,
	}

	if q.IsTrueFalse() {
		qv.Kind = KindTrueFalse
		for _, b := range []bool{true, false} {
			a := Bool(b)
			qv.Options = append(qv.Options, OptionView{
				Answer: a,
				Label:  a.String(),
				State:  optionState(a, s.selected, q.Correct, s.submitted),
			})
		}
		return qv
	}

	qv.Kind = KindMultipleChoice
	for i, label := range q.Options {
		a := Option(i)
		qv.Options = append(qv.Options, OptionView{
			Answer: a,
			Label:  label,
			State:  optionState(a, s.selected, q.Correct, s.submitted),
		})
	}
	return qv
}

func optionState(option, selected, correct Answer, submitted bool) OptionState {
	switch {
	case option.Equal(selected) && submitted:
		if option.Equal(correct) {
			return OptionCorrect
		}
		return OptionIncorrect
	case option.Equal(selected):
		return OptionSelected
	case submitted && option.Equal(correct):
		return OptionRevealed
	default:
		return OptionNeutral
	}
}

// ReviewItem is one row of the result screen. SelectedText is the label of
// the chosen option and stays empty for true/false questions.
type ReviewItem struct {
	Position     int    `json:"position"`
	QuestionID   int    `json:"questionId"`
	Prompt       string `json:"question"`
	CorrectText  string `json:"correctAnswerText"`
	Selected     Answer `json:"selectedAnswer"`
	SelectedText string `json:"selectedAnswerText,omitempty"`
	Correct      bool   `json:"isCorrect"`
}

// Summary is the result screen of a completed session.
type Summary struct {
	QuizID     string       `json:"quizId"`
	Title      string       `json:"title"`
	Score      int          `json:"score"`
	Total      int          `json:"total"`
	Percentage int          `json:"percentage"`
	Tier       Tier         `json:"tier"`
	Review     []ReviewItem `json:"review"`
}

// Summary returns the results of a completed session. History entries line
// up with the flattened questions by position.
func (s *Session) Summary() (Summary, bool) {
	if s.Phase() != PhaseCompleted {
		return Summary{}, false
	}

	pct := s.Percentage()
	sum := Summary{
		QuizID:     s.quizID,
		Title:      s.title,
		Score:      s.score,
		Total:      len(s.questions),
		Percentage: pct,
		Tier:       TierFor(pct),
		Review:     make([]ReviewItem, 0, len(s.questions)),
	}
	for i, q := range s.questions {
		item := ReviewItem{
			Position:    i + 1,
			QuestionID:  q.ID,
			Prompt:      q.Prompt,
			CorrectText: q.CorrectText,
		}
		if i < len(s.history) {
			item.Selected = s.history[i].Selected
			item.Correct = s.history[i].Correct
			if idx, ok := item.Selected.Index(); ok && idx < len(q.Options) {
				item.SelectedText = q.Options[idx]
			}
		}
		sum.Review = append(sum.Review, item)
	}
	return sum, true
}
