package main

import (
	"log/slog"
	"os"

	"github.com/Vansh983/ai-ta/config"
	"github.com/Vansh983/ai-ta/dao"
	"github.com/Vansh983/ai-ta/model"
)

// Bootstraps the schema: pgvector extension first, then the tables, then the
// query-path indexes. Safe to re-run.
func main() {
	if err := config.Load(); err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	db, err := dao.Open(config.Cfg.DB.DSN())
	if err != nil {
		slog.Error("Failed to connect to database", "err", err)
		os.Exit(1)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		slog.Error("Failed to enable pgvector extension", "err", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseMaterial{},
		&model.VectorEmbedding{},
		&model.ChatSession{},
		&model.ChatMessage{},
	); err != nil {
		slog.Error("Failed to migrate tables", "err", err)
		os.Exit(1)
	}

	// 3072-dim vectors are over the 2000-dim cap of pgvector ANN indexes,
	// so similarity search scans within a course. This composite keeps the
	// scan and the created_at tie-break cheap.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_vector_embeddings_course_created
		ON vector_embeddings (course_id, created_at);
	`).Error; err != nil {
		slog.Error("Failed to create embedding support index", "err", err)
		os.Exit(1)
	}

	slog.Info("Database schema ready")
}
