package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/p-n-ai/pai-quiz/internal/catalog"
)

type quizListing struct {
	catalog.QuizInfo
	Minutes int           `json:"minutes"`
	Level   catalog.Level `json:"level"`
}

type courseListing struct {
	catalog.Course
	Quizzes []quizListing       `json:"quizzes"`
	Stats   catalog.CourseStats `json:"stats"`
}

type coursesResponse struct {
	Courses []courseListing    `json:"courses"`
	Stats   catalog.IndexStats `json:"stats"`
}

type courseResponse struct {
	Course courseListing `json:"course"`
}

func listCourse(c catalog.Course) courseListing {
	quizzes := make([]quizListing, 0, len(c.Quizzes))
	for _, q := range c.Quizzes {
		quizzes = append(quizzes, quizListing{
			QuizInfo: q,
			Minutes:  q.Minutes(),
			Level:    catalog.LevelOf(q.Difficulty),
		})
	}
	return courseListing{Course: c, Quizzes: quizzes, Stats: c.Stats()}
}

// handleCourses lists every course. A broken index renders as an empty
// catalogue.
func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.catalog.Courses(r.Context())
	if err != nil {
		slog.Error("failed to load courses", "error", err)
		courses = nil
	}

	resp := coursesResponse{
		Courses: make([]courseListing, 0, len(courses)),
		Stats:   catalog.StatsFor(courses),
	}
	for _, c := range courses {
		resp.Courses = append(resp.Courses, listCourse(c))
	}
	writeCached(w, r, resp)
}

func (s *Server) handleCourse(w http.ResponseWriter, r *http.Request) {
	course, err := s.catalog.Course(r.Context(), r.PathValue("courseID"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeCached(w, r, courseResponse{Course: listCourse(course)})
}
