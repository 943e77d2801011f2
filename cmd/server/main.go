package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"farmtrack/backend/internal/api"
	"farmtrack/backend/internal/config"
	"farmtrack/backend/internal/database"
	"farmtrack/backend/internal/reports/export"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	logger := config.GetLogger()
	if err != nil {
		logger.Fatal(err)
	}
	config.SetLogLevel(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer migrateCancel()
	if err := database.EnsureSchema(migrateCtx, pool, cfg.SchemaPath); err != nil {
		logger.Fatal(err)
	}

	store := database.NewStore(pool)
	exporter := export.NewExporter(cfg.ExportsDir, export.PDFRenderer{})
	srv := api.NewServer(store, store, exporter, cfg.JWTSecret, cfg.CORSAllowedOrigins)

	logger.WithField("port", cfg.Port).Info("farmtrack backend listening")
	if err := http.ListenAndServe(":"+cfg.Port, srv.Router()); err != nil {
		logger.Fatal(err)
	}
}
