package quiz_test

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		score, total, want int
	}{
		{0, 4, 0},
		{1, 2, 50},
		{2, 3, 67},
		{1, 3, 33},
		{1, 8, 13},
		{4, 4, 100},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := quiz.Percentage(tt.score, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.score, tt.total, got, tt.want)
		}
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		pct  int
		want quiz.Tier
	}{
		{100, quiz.TierExcellent},
		{90, quiz.TierExcellent},
		{89, quiz.TierVeryGood},
		{75, quiz.TierVeryGood},
		{74, quiz.TierGood},
		{60, quiz.TierGood},
		{59, quiz.TierNeedsReview},
		{0, quiz.TierNeedsReview},
	}
	for _, tt := range tests {
		if got := quiz.TierFor(tt.pct); got != tt.want {
			t.Errorf("TierFor(%d) = %v, want %v", tt.pct, got, tt.want)
		}
	}
}

func TestAnswer_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    quiz.Answer
		wantErr bool
	}{
		{"0", quiz.Option(0), false},
		{"3", quiz.Option(3), false},
		{"true", quiz.Bool(true), false},
		{"false", quiz.Bool(false), false},
		{"null", quiz.Answer{}, false},
		{"1.0", quiz.Option(1), false},
		{"2e0", quiz.Option(2), false},
		{"1.5", quiz.Answer{}, true},
		{`"1"`, quiz.Answer{}, true},
		{`"true"`, quiz.Answer{}, true},
		{"1e20", quiz.Answer{}, true},
		{`{"x":1}`, quiz.Answer{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got quiz.Answer
			err := json.Unmarshal([]byte(tt.in), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAnswer_ZeroIsNotUnset(t *testing.T) {
	var a quiz.Answer
	if a.IsSet() {
		t.Error("zero Answer should be unset")
	}
	if !quiz.Option(0).IsSet() {
		t.Error("Option(0) should be set")
	}
	if quiz.Option(0).Equal(a) {
		t.Error("Option(0) must differ from unset")
	}
}

func TestQuestion_DecodeDocument(t *testing.T) {
	raw := `{"quiz":{"title":"T","sections":[{"name":"S","difficulty":"متوسط","questions":[
		{"id":1,"question":"q","options":["a","b"],"correctAnswer":0,"correctAnswerText":"a"},
		{"id":2,"question":"tf","correctAnswer":false,"correctAnswerText":"خطأ"}]}]}}`

	var doc quiz.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	qs := doc.Quiz.Flatten()
	if len(qs) != 2 {
		t.Fatalf("len(Flatten()) = %d, want 2", len(qs))
	}
	if !qs[0].Correct.Equal(quiz.Option(0)) || qs[0].IsTrueFalse() {
		t.Errorf("first question = %+v, want option 0 multiple choice", qs[0])
	}
	if !qs[1].Correct.Equal(quiz.Bool(false)) || !qs[1].IsTrueFalse() {
		t.Errorf("second question = %+v, want true/false false", qs[1])
	}
}

func TestAnswer_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		in      string
		want    quiz.Answer
		wantErr bool
	}{
		{"2", quiz.Option(2), false},
		{"2.0", quiz.Option(2), false},
		{"false", quiz.Bool(false), false},
		{"2.5", quiz.Answer{}, true},
		{`"2"`, quiz.Answer{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var doc struct {
				Answer quiz.Answer `yaml:"answer"`
			}
			err := yaml.Unmarshal([]byte("answer: "+tt.in), &doc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("yaml.Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !doc.Answer.Equal(tt.want) {
				t.Errorf("yaml.Unmarshal(%s) = %v, want %v", tt.in, doc.Answer, tt.want)
			}
		})
	}
}

func TestQuestion_DecodeYAML(t *testing.T) {
	raw := `
quiz:
  title: T
  sections:
    - name: S
      difficulty: hard
      questions:
        - id: 1
          question: q
          options: [a, b]
          correctAnswer: 1
          correctAnswerText: b
        - id: 2
          question: tf
          correctAnswer: true
          correctAnswerText: yes
`
	var doc quiz.Document
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	qs := doc.Quiz.Flatten()
	if !qs[0].Correct.Equal(quiz.Option(1)) {
		t.Errorf("first correct = %v, want 1", qs[0].Correct)
	}
	if !qs[1].Correct.Equal(quiz.Bool(true)) {
		t.Errorf("second correct = %v, want true", qs[1].Correct)
	}
}
