// Package catalog loads the courses index and quiz documents from a
// document store (filesystem, HTTP, PostgreSQL), optionally through a cache.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

var (
	// ErrNotFound is returned when a course or quiz document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrLoadFailure is returned when a document exists but cannot be
	// fetched, decoded or validated.
	ErrLoadFailure = errors.New("load failure")
)

// CoursesPath is the store path of the courses index.
const CoursesPath = "courses/courses.json"

var quizIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// QuizPath returns the store path of a quiz document.
func QuizPath(quizID string) string {
	return "data/" + quizID + ".json"
}

// ValidQuizID reports whether id is safe to use as a document name.
func ValidQuizID(id string) bool {
	return quizIDPattern.MatchString(id)
}

// DocumentStore fetches raw JSON documents by path. Implementations return
// ErrNotFound for missing documents and ErrLoadFailure for everything else.
type DocumentStore interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Catalog decodes and validates documents from a store.
type Catalog struct {
	store   DocumentStore
	schemas *Schemas
}

// New creates a catalog reading from store.
func New(store DocumentStore) (*Catalog, error) {
	schemas, err := LoadSchemas()
	if err != nil {
		return nil, err
	}
	return &Catalog{store: store, schemas: schemas}, nil
}

// Courses returns every course in the index, in document order.
func (c *Catalog) Courses(ctx context.Context) ([]Course, error) {
	data, err := c.store.Fetch(ctx, CoursesPath)
	if err != nil {
		return nil, fmt.Errorf("fetching courses: %w", err)
	}
	if err := c.schemas.ValidateIndex(data); err != nil {
		return nil, err
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("%w: decoding courses: %v", ErrLoadFailure, err)
	}
	return idx.Courses, nil
}

// Course returns a single course by id.
func (c *Catalog) Course(ctx context.Context, id string) (Course, error) {
	courses, err := c.Courses(ctx)
	if err != nil {
		return Course{}, err
	}
	for _, course := range courses {
		if course.ID == id {
			return course, nil
		}
	}
	return Course{}, fmt.Errorf("course %s: %w", id, ErrNotFound)
}

// LoadQuiz fetches, validates and decodes a quiz document.
func (c *Catalog) LoadQuiz(ctx context.Context, quizID string) (quiz.Quiz, error) {
	if !ValidQuizID(quizID) {
		return quiz.Quiz{}, fmt.Errorf("quiz %q: %w", quizID, ErrNotFound)
	}

	data, err := c.store.Fetch(ctx, QuizPath(quizID))
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("fetching quiz %s: %w", quizID, err)
	}
	if err := c.schemas.ValidateQuiz(data); err != nil {
		return quiz.Quiz{}, fmt.Errorf("quiz %s: %w", quizID, err)
	}

	var doc quiz.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return quiz.Quiz{}, fmt.Errorf("%w: decoding quiz %s: %v", ErrLoadFailure, quizID, err)
	}

	slog.Debug("quiz loaded",
		"quiz_id", quizID,
		"sections", len(doc.Quiz.Sections),
		"questions", doc.Quiz.TotalQuestions(),
	)
	return doc.Quiz, nil
}
