// Package quiz implements the quiz-taking session: the flattened question
// list, answer selection and submission, scoring and the derived views.
package quiz

// Question is a single multiple-choice or true/false question.
// A question without options is a true/false question.
type Question struct {
	ID          int      `json:"id" yaml:"id"`
	Prompt      string   `json:"question" yaml:"question"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"`
	Correct     Answer   `json:"correctAnswer" yaml:"correctAnswer"`
	CorrectText string   `json:"correctAnswerText" yaml:"correctAnswerText"`
}

// IsTrueFalse reports whether q is answered with a boolean.
func (q Question) IsTrueFalse() bool {
	return len(q.Options) == 0
}

// Accepts reports whether a is a well-formed answer for q.
func (q Question) Accepts(a Answer) bool {
	if q.IsTrueFalse() {
		return a.IsBool()
	}
	i, ok := a.Index()
	return ok && i >= 0 && i < len(q.Options)
}

// Section groups questions under a name and a difficulty label.
type Section struct {
	Name       string     `json:"name" yaml:"name"`
	Difficulty string     `json:"difficulty" yaml:"difficulty"`
	Questions  []Question `json:"questions" yaml:"questions"`
}

// Quiz is a titled sequence of sections.
type Quiz struct {
	Title    string    `json:"title" yaml:"title"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// Document is the on-disk envelope of a quiz: {"quiz": {...}}.
type Document struct {
	Quiz Quiz `json:"quiz" yaml:"quiz"`
}

// FlatQuestion is a question annotated with the section it came from.
type FlatQuestion struct {
	Question
	SectionName string `json:"sectionName"`
	Difficulty  string `json:"difficulty"`
}

// Flatten concatenates every section's questions in order.
func (q Quiz) Flatten() []FlatQuestion {
	var out []FlatQuestion
	for _, s := range q.Sections {
		for _, question := range s.Questions {
			out = append(out, FlatQuestion{
				Question:    question,
				SectionName: s.Name,
				Difficulty:  s.Difficulty,
			})
		}
	}
	return out
}

// TotalQuestions returns the number of questions across all sections.
func (q Quiz) TotalQuestions() int {
	n := 0
	for _, s := range q.Sections {
		n += len(s.Questions)
	}
	return n
}

// AnsweredRecord is the outcome of one submitted question.
type AnsweredRecord struct {
	QuestionID int    `json:"questionId"`
	Selected   Answer `json:"selectedAnswer"`
	Correct    bool   `json:"isCorrect"`
}
