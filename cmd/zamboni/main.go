package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soluk/zamboni/internal/api/rest"
	"github.com/soluk/zamboni/internal/api/websocket"
	"github.com/soluk/zamboni/internal/cache"
	"github.com/soluk/zamboni/internal/config"
	"github.com/soluk/zamboni/internal/nst"
	"github.com/soluk/zamboni/internal/pipeline"
	"github.com/soluk/zamboni/internal/publisher"
	"github.com/soluk/zamboni/internal/scheduler"
	"github.com/soluk/zamboni/internal/store"
	"github.com/soluk/zamboni/internal/teamcode"
)

const (
	serviceName    = "zamboni"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s - Fantasy Hockey Lookup Service", serviceName, serviceVersion)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database connection
	db, err := store.NewDatabase(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("✓ Connected to database")

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// Initialize Redis client with retry logic
	var redisCache *cache.RedisCache
	maxRetries := 30
	retryDelay := 2 * time.Second

	log.Println("Connecting to Redis...")
	for i := 0; i < maxRetries; i++ {
		redisCache, err = cache.NewRedisCache(cfg.RedisURL)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Printf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
			time.Sleep(retryDelay)
		} else {
			log.Fatalf("Failed to connect to Redis after %d attempts: %v", maxRetries, err)
		}
	}
	defer redisCache.Close()

	log.Println("✓ Connected to Redis")

	redisPublisher := publisher.NewRedisStreamPublisher(redisCache.Client())
	log.Println("✓ Redis publisher initialized")

	// Wire the pipeline
	resolver, err := loadResolver(cfg)
	if err != nil {
		log.Fatalf("Failed to load team reference: %v", err)
	}

	client := nst.NewClient(cfg.NSTBaseURL, cfg.BrowserFallback)
	fetcher := nst.NewFetcher(client, redisCache, resolver, cfg.CacheTTL())
	builder := pipeline.NewBuilder(cfg, fetcher, resolver, nil)

	// Initialize WebSocket server
	wsServer := websocket.NewServer()
	go func() {
		log.Printf("Starting WebSocket server on port %s", cfg.WSPort)
		if err := wsServer.Start(cfg.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()

	// Initialize scheduler
	sched := scheduler.NewOrchestrator(cfg, builder, db, redisPublisher, wsServer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sched.Start(ctx)
	log.Println("✓ Scheduler started")

	// Initialize REST API server
	restServer := rest.NewServer(cfg.RESTPort, db, sched)
	go func() {
		log.Printf("Starting REST API server on port %s", cfg.RESTPort)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%s", cfg.RESTPort)
	log.Printf("  WebSocket: ws://0.0.0.0:%s", cfg.WSPort)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Printf("%s stopped", serviceName)
}

// loadResolver builds the team-code resolver, preferring the configured
// reference CSV over the built-in league map.
func loadResolver(cfg *config.Config) (*teamcode.Resolver, error) {
	if cfg.TeamMapPath == "" {
		return teamcode.NewResolver(teamcode.DefaultReference()), nil
	}
	ref, err := teamcode.LoadReference(cfg.TeamMapPath)
	if err != nil {
		return nil, err
	}
	return teamcode.NewResolver(ref), nil
}
