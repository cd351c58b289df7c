// Command albumshop-web runs the album shop storefront.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"albumshop/internal/config"
	"albumshop/internal/db"
	"albumshop/internal/logger"
	"albumshop/internal/shopapi"
	"albumshop/internal/web"
	webfs "albumshop/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Dev)
	if err != nil {
		return err
	}
	defer log.Sync()

	api := shopapi.NewClient(cfg.APIBaseURL)

	// Postgres-backed sessions when a database is configured, in-memory
	// sessions otherwise.
	var sessions web.Manager
	if cfg.DatabaseURL != "" {
		database, err := db.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		sessions = web.NewDBSessions(database)
		go reapExpiredSessions(database, log)
		log.Info("using database-backed sessions")
	} else {
		sessions = web.NewMemorySessions()
		log.Info("using in-memory sessions")
	}

	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}

	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:        cfg.Addr,
		API:         api,
		Sessions:    sessions,
		TemplatesFS: templates,
		StaticFS:    static,
		Log:         log,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}

// reapExpiredSessions periodically removes expired session rows.
func reapExpiredSessions(database *db.DB, log *zap.SugaredLogger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		n, err := database.Sessions().DeleteExpired(context.Background())
		if err != nil {
			log.Warnw("reaping expired sessions", "error", err)
			continue
		}
		if n > 0 {
			log.Infow("reaped expired sessions", "count", n)
		}
	}
}
