package catalog

import "strings"

// IndexStats summarises the whole catalogue.
type IndexStats struct {
	Courses int `json:"courses"`
	Quizzes int `json:"quizzes"`
}

// CourseStats summarises one course.
type CourseStats struct {
	Quizzes   int `json:"quizzes"`
	Questions int `json:"questions"`
	Minutes   int `json:"minutes"`
}

// StatsFor totals the advertised quiz counts of every course.
func StatsFor(courses []Course) IndexStats {
	s := IndexStats{Courses: len(courses)}
	for _, c := range courses {
		s.Quizzes += c.QuizCount
	}
	return s
}

// Stats totals the quizzes listed under c.
func (c Course) Stats() CourseStats {
	s := CourseStats{Quizzes: len(c.Quizzes)}
	for _, q := range c.Quizzes {
		s.Questions += q.Questions
		s.Minutes += q.Minutes()
	}
	return s
}

// Minutes parses the leading number of EstimatedTime ("15 دقيقة",
// "20 min", "١٥ دقيقة"). Unparsable values count as zero.
func (q QuizInfo) Minutes() int {
	n := 0
	for _, r := range strings.TrimSpace(q.EstimatedTime) {
		d, ok := digitValue(r)
		if !ok {
			break
		}
		n = n*10 + d
	}
	return n
}

// digitValue accepts ASCII, Arabic-Indic and Extended Arabic-Indic digits.
func digitValue(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= '\u0660' && r <= '\u0669':
		return int(r - '\u0660'), true
	case r >= '\u06F0' && r <= '\u06F9':
		return int(r - '\u06F0'), true
	}
	return 0, false
}

// Level is a normalized difficulty.
type Level string

const (
	LevelEasy    Level = "easy"
	LevelMedium  Level = "medium"
	LevelHard    Level = "hard"
	LevelUnknown Level = "unknown"
)

var levels = map[string]Level{
	"سهل":    LevelEasy,
	"easy":   LevelEasy,
	"متوسط":  LevelMedium,
	"medium": LevelMedium,
	"صعب":    LevelHard,
	"hard":   LevelHard,
}

// LevelOf normalizes a difficulty label.
func LevelOf(label string) Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(label))]; ok {
		return l
	}
	return LevelUnknown
}
