package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/p-n-ai/pai-quiz/internal/catalog"
	"github.com/p-n-ai/pai-quiz/internal/platform/database/dbtest"
)

func TestNewPostgresStore_NilPool(t *testing.T) {
	if _, err := catalog.NewPostgresStore(nil); err == nil {
		t.Error("NewPostgresStore(nil) should return error")
	}
}

func TestPostgresStore(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	store, err := catalog.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}

	if err := store.Put(ctx, catalog.CoursesPath, []byte(coursesJSON)); err != nil {
		t.Fatalf("Put(courses) error = %v", err)
	}
	if err := store.Put(ctx, catalog.QuizPath("quiz1"), []byte(quiz1JSON)); err != nil {
		t.Fatalf("Put(quiz1) error = %v", err)
	}
	// Upsert replaces the previous body.
	if err := store.Put(ctx, catalog.QuizPath("quiz1"), []byte(quiz1JSON)); err != nil {
		t.Fatalf("Put(quiz1) again error = %v", err)
	}

	c := newCatalog(t, store)
	q, err := c.LoadQuiz(ctx, "quiz1")
	if err != nil {
		t.Fatalf("LoadQuiz() error = %v", err)
	}
	if q.TotalQuestions() != 3 {
		t.Errorf("TotalQuestions() = %d, want 3", q.TotalQuestions())
	}

	courses, err := c.Courses(ctx)
	if err != nil {
		t.Fatalf("Courses() error = %v", err)
	}
	if len(courses) != 2 {
		t.Errorf("len(Courses()) = %d, want 2", len(courses))
	}

	if err := store.Delete(ctx, catalog.QuizPath("quiz1")); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Fetch(ctx, catalog.QuizPath("quiz1")); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Fetch after Delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, catalog.QuizPath("quiz1")); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}
