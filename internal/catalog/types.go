package catalog

// Course is an entry of the courses index.
type Course struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Color       string     `json:"color"`
	QuizCount   int        `json:"quizCount"`
	Quizzes     []QuizInfo `json:"quizzes"`
}

// QuizInfo describes a quiz as listed on its course page.
type QuizInfo struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Questions     int    `json:"questions"`
	EstimatedTime string `json:"estimatedTime"`
	Difficulty    string `json:"difficulty"`
}

// Index is the courses document: {"courses": [...]}.
type Index struct {
	Courses []Course `json:"courses"`
}

// Quiz returns the quiz with the given id listed under c.
func (c Course) Quiz(id string) (QuizInfo, bool) {
	for _, q := range c.Quizzes {
		if q.ID == id {
			return q, true
		}
	}
	return QuizInfo{}, false
}
