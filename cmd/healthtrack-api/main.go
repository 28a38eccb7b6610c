package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	httpadapter "github.com/healthtrack/symptom-agent/internal/adapters/http"
	"github.com/healthtrack/symptom-agent/internal/adapters/llm"
	"github.com/healthtrack/symptom-agent/internal/adapters/pdf"
	"github.com/healthtrack/symptom-agent/internal/adapters/speech"
	"github.com/healthtrack/symptom-agent/internal/adapters/storage"
	"github.com/healthtrack/symptom-agent/internal/app/chat"
	"github.com/healthtrack/symptom-agent/internal/app/report"
	"github.com/healthtrack/symptom-agent/internal/app/session"
	"github.com/healthtrack/symptom-agent/internal/app/state"
	"github.com/healthtrack/symptom-agent/internal/config"
	"github.com/healthtrack/symptom-agent/internal/domain"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	blob, err := openStateStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize state storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := blob.Close(); closeErr != nil {
			slog.Error("Failed to close state storage", "error", closeErr)
		}
	}()
	slog.Info("State storage ready", "backend", cfg.StorageBackend)

	store := state.NewStore(ctx, blob)

	var llmClient domain.LLMClient
	if cfg.UseMockLLM {
		slog.Info("Using mock LLM client")
		llmClient = llm.NewMockLLM()
	} else {
		llmClient, err = llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.ChatModel, cfg.ReportModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		if !llmClient.Ready() {
			slog.Warn("HT_GEMINI_API_KEY not set; model-dependent operations are disabled")
		}
	}

	exporter := pdf.NewExporter(cfg.ExportDir)
	recognizer := speech.WithTimeout(speech.NewUnavailable(), cfg.VoiceTimeout)

	sessions := session.NewManager(store)
	dispatcher := chat.NewDispatcher(store, llmClient)
	reports := report.NewGenerator(store, llmClient, exporter)

	handler := httpadapter.NewServer(store, sessions, dispatcher, reports, recognizer)

	addr := ":" + cfg.Port
	slog.Info("healthtrack API listening", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func openStateStore(cfg *config.Config) (domain.StateStore, error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return storage.Open(storage.BackendRedis, storage.WithRedisClient(client))
	case config.StorageSQLite:
		return storage.Open(storage.BackendSQLite, storage.WithSQLitePath(cfg.SQLitePath))
	case config.StorageMemory:
		return storage.Open(storage.BackendMemory)
	default:
		return storage.Open(storage.BackendFile, storage.WithDataDir(cfg.DataDir))
	}
}
