package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/p-n-ai/pai-quiz/internal/catalog"
)

func newStaticSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /courses/courses.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(coursesJSON))
	})
	mux.HandleFunc("GET /data/quiz1.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(quiz1JSON))
	})
	mux.HandleFunc("GET /data/flaky.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPStore_LoadQuiz(t *testing.T) {
	srv := newStaticSite(t)
	c := newCatalog(t, catalog.NewHTTPStore(srv.URL+"/", srv.Client()))

	q, err := c.LoadQuiz(context.Background(), "quiz1")
	if err != nil {
		t.Fatalf("LoadQuiz() error = %v", err)
	}
	if q.TotalQuestions() != 3 {
		t.Errorf("TotalQuestions() = %d, want 3", q.TotalQuestions())
	}

	courses, err := c.Courses(context.Background())
	if err != nil {
		t.Fatalf("Courses() error = %v", err)
	}
	if len(courses) != 2 {
		t.Errorf("len(Courses()) = %d, want 2", len(courses))
	}
}

func TestHTTPStore_Errors(t *testing.T) {
	srv := newStaticSite(t)
	store := catalog.NewHTTPStore(srv.URL, srv.Client())

	tests := []struct {
		name string
		path string
		want error
	}{
		{"404 is not found", catalog.QuizPath("missing"), catalog.ErrNotFound},
		{"502 is a load failure", catalog.QuizPath("flaky"), catalog.ErrLoadFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Fetch(context.Background(), tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("Fetch(%s) error = %v, want %v", tt.path, err, tt.want)
			}
		})
	}
}

func TestHTTPStore_Unreachable(t *testing.T) {
	srv := newStaticSite(t)
	url := srv.URL
	srv.Close()

	_, err := catalog.NewHTTPStore(url, nil).Fetch(context.Background(), catalog.CoursesPath)
	if !errors.Is(err, catalog.ErrLoadFailure) {
		t.Errorf("Fetch() error = %v, want ErrLoadFailure", err)
	}
}
