package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dstrand/tally/internal/connectivity"
	"github.com/dstrand/tally/internal/database"
	"github.com/dstrand/tally/internal/logging"
	"github.com/dstrand/tally/internal/remote"
	"github.com/dstrand/tally/internal/server"
	syncer "github.com/dstrand/tally/internal/sync"
	"github.com/dstrand/tally/internal/ws"
)

func main() {
	port := os.Getenv("TALLY_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("TALLY_DB_PATH")
	if dbPath == "" {
		dbPath = "tally.db"
	}

	remoteURL := os.Getenv("TALLY_REMOTE_URL")
	if remoteURL == "" {
		remoteURL = "http://localhost:9090"
	}

	var ownerID *string
	if v := os.Getenv("TALLY_OWNER_ID"); v != "" {
		ownerID = &v
	}

	logger := logging.Setup(os.Getenv("TALLY_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.SeedDefaultCategories(db); err != nil {
		log.Fatalf("failed to seed categories: %v", err)
	}

	rc := remote.NewClient(remoteURL)
	monitor := connectivity.NewMonitor(0, logger.With("component", "connectivity"))
	defer monitor.Close()

	loader := syncer.NewLoader(db, rc, logger.With("component", "loader"))
	sy := syncer.NewSyncer(db, rc, monitor, loader, logger.With("component", "sync"))

	monitor.OnReconnect(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := sy.Sync(ctx); err != nil {
			logger.Warn("sync after reconnect failed", "error", err)
		}
	})

	hub := ws.NewHub(logger.With("component", "ws"))
	srv := server.New(db, monitor, sy, hub, ownerID, logger)

	// One-shot reachability probe at startup; a reachable remote flips
	// the monitor online, which settles into a drain plus snapshot pull.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			logger.Info("remote store unreachable at startup, working offline", "error", err)
			return
		}
		monitor.Report(true)
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("tally running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
