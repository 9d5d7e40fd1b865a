package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vansh983/ai-ta/config"
	"github.com/Vansh983/ai-ta/controller"
	"github.com/Vansh983/ai-ta/dao"
	"github.com/Vansh983/ai-ta/router"
	"github.com/Vansh983/ai-ta/service/chat"
	"github.com/Vansh983/ai-ta/service/ingestion"
	"github.com/Vansh983/ai-ta/service/mq"
	"github.com/Vansh983/ai-ta/service/retrieval"
	"github.com/Vansh983/ai-ta/service/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := config.Load(); err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	if err := run(); err != nil {
		slog.Error("Server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := dao.Open(config.Cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	users := dao.NewUserDAO(db)
	courses := dao.NewCourseDAO(db)
	materials := dao.NewMaterialDAO(db)
	embeddings := dao.NewEmbeddingDAO(db)
	chats := dao.NewChatDAO(db)

	store := storage.NewClient(config.Cfg.OSS)
	archiver := storage.NewArchiver(store, chats)

	embedder, err := ingestion.NewOpenAIEmbedder(config.Cfg.Model.APIKey, config.Cfg.Model.BaseURL)
	if err != nil {
		return err
	}
	completer, err := chat.NewOpenAICompleter(config.Cfg.Model.APIKey, config.Cfg.Model.BaseURL)
	if err != nil {
		return err
	}

	extractor := ingestion.NewExtractor(store)
	pipeline := ingestion.NewPipeline(courses, materials, embeddings, extractor, embedder)
	retriever := retrieval.NewRetriever(embeddings, embedder)
	generator := chat.NewGenerator(retriever, chats, archiver, materials, extractor, completer)

	queue, err := mq.NewService(config.Cfg.MQ)
	if err != nil {
		return err
	}
	if err := queue.Register(mq.TopicIngestion, mq.TagMaterial, mq.IngestHandler(pipeline)); err != nil {
		return err
	}
	if err := queue.Start(); err != nil {
		return err
	}
	defer queue.Shutdown()

	// Catch materials whose ingest message was lost while the server was down.
	go func() {
		if n := pipeline.ProcessUnprocessedMaterials(ctx); n > 0 {
			slog.Info("Processed materials on startup", "count", n)
		}
	}()

	r := router.Register(router.Controllers{
		Health:   controller.NewHealthController(db, store),
		Auth:     controller.NewAuthController(users),
		Course:   controller.NewCourseController(courses, users, materials, embeddings),
		Material: controller.NewMaterialController(courses, users, materials, store, queue, pipeline),
		Chat:     controller.NewChatController(courses, retriever, chats, generator),
	})

	srv := &http.Server{
		Addr:    ":" + config.Cfg.Server.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "port", config.Cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
