package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/ArthurDelaporte/Yatube-Back/internal/cache"
	"github.com/ArthurDelaporte/Yatube-Back/internal/config"
	"github.com/ArthurDelaporte/Yatube-Back/internal/database"
	"github.com/ArthurDelaporte/Yatube-Back/internal/logs"
	"github.com/ArthurDelaporte/Yatube-Back/internal/server"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadConfig()
	logs.Init(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		logs.LogJSON("FATAL", "JWT_SECRET missing", nil)
	}

	db, err := database.Connect(cfg.DBDriver, cfg.DBUrl, cfg.LogLevel)
	if err != nil {
		logs.LogJSON("FATAL", "Database connection failed", map[string]interface{}{"error": err.Error()})
	}
	if err := server.Migrate(db); err != nil {
		logs.LogJSON("FATAL", "Migration failed", map[string]interface{}{"error": err.Error()})
	}

	media, err := server.NewMediaStore(context.Background(), cfg)
	if err != nil {
		logs.LogJSON("FATAL", "Media store unavailable", map[string]interface{}{"error": err.Error()})
	}

	r, err := server.SetupRouter(server.Deps{
		Config: cfg,
		DB:     db,
		Media:  media,
		Pages:  cache.NewPageCache(cfg.PageCacheTTL),
	})
	if err != nil {
		logs.LogJSON("FATAL", "Router setup failed", map[string]interface{}{"error": err.Error()})
	}

	logs.LogJSON("INFO", "Server starting", map[string]interface{}{"extra": ":" + cfg.Port})
	if err := r.Run(":" + cfg.Port); err != nil {
		logs.LogJSON("FATAL", "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
