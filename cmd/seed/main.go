// Command seed copies the course index and quiz documents from a data
// directory into PostgreSQL and drops their cached copies.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/catalog"
	"github.com/p-n-ai/pai-quiz/internal/platform/cache"
	"github.com/p-n-ai/pai-quiz/internal/platform/config"
	"github.com/p-n-ai/pai-quiz/internal/platform/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !cfg.HasDatabase() {
		slog.Error("QUIZ_DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	dst, err := catalog.NewPostgresStore(db.Pool)
	if err != nil {
		slog.Error("failed to create store", "error", err)
		os.Exit(1)
	}

	var inv invalidator
	if cfg.HasCache() {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Error("failed to connect cache", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		inv = c
	}

	schemas, err := catalog.LoadSchemas()
	if err != nil {
		slog.Error("failed to load schemas", "error", err)
		os.Exit(1)
	}

	res, err := seed(ctx, catalog.NewFileStore(cfg.Data.Dir), dst, inv, schemas)
	if err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seed complete", "dir", cfg.Data.Dir, "written", res.Written, "skipped", res.Skipped)
}

type documentWriter interface {
	Put(ctx context.Context, path string, body []byte) error
}

type invalidator interface {
	Delete(ctx context.Context, keys ...string) error
}

type result struct {
	Written int
	Skipped int
}

// seed copies every valid document of src into dst. Invalid documents are
// logged and skipped; a write failure aborts the run.
func seed(ctx context.Context, src *catalog.FileStore, dst documentWriter, inv invalidator, schemas *catalog.Schemas) (result, error) {
	var (
		res  result
		keys []string
	)

	err := src.Walk(func(path string) error {
		var validate func([]byte) error
		switch {
		case path == catalog.CoursesPath:
			validate = schemas.ValidateIndex
		case strings.HasPrefix(path, "data/"):
			validate = schemas.ValidateQuiz
		default:
			return nil
		}

		body, err := src.Fetch(ctx, path)
		if err != nil {
			slog.Warn("skipping unreadable document", "path", path, "error", err)
			res.Skipped++
			return nil
		}
		if err := validate(body); err != nil {
			slog.Warn("skipping invalid document", "path", path, "error", err)
			res.Skipped++
			return nil
		}

		if err := dst.Put(ctx, path, body); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		keys = append(keys, catalog.CacheKey(path))
		res.Written++
		return nil
	})
	if err != nil {
		return res, err
	}

	if inv != nil && len(keys) > 0 {
		if err := inv.Delete(ctx, keys...); err != nil {
			slog.Warn("failed to invalidate cached documents", "error", err)
		}
	}
	return res, nil
}
