package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/soluk/zamboni/internal/cache"
	"github.com/soluk/zamboni/internal/config"
	"github.com/soluk/zamboni/internal/nst"
	"github.com/soluk/zamboni/internal/pipeline"
	"github.com/soluk/zamboni/internal/teamcode"
)

// buildlookup runs one end-to-end build and exits: fetch stats, score teams,
// aggregate the schedule, write the CSVs and diagnostics. It needs no
// database; Redis is optional.
func main() {
	forceRefresh := flag.Bool("force-refresh", false, "bypass the stat cache for this run")
	noCache := flag.Bool("no-cache", false, "run without Redis even when configured")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var resolver *teamcode.Resolver
	if cfg.TeamMapPath != "" {
		ref, err := teamcode.LoadReference(cfg.TeamMapPath)
		if err != nil {
			log.Fatalf("Failed to load team reference: %v", err)
		}
		resolver = teamcode.NewResolver(ref)
	} else {
		resolver = teamcode.NewResolver(teamcode.DefaultReference())
	}

	var redisCache *cache.RedisCache
	if !*noCache {
		redisCache, err = cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v); running without cache", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	client := nst.NewClient(cfg.NSTBaseURL, cfg.BrowserFallback)
	fetcher := nst.NewFetcher(client, redisCache, resolver, cfg.CacheTTL())
	builder := pipeline.NewBuilder(cfg, fetcher, resolver, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	force := *forceRefresh || cfg.ForceRefresh
	result, err := builder.Run(ctx, force)
	if err != nil {
		log.Fatalf("❌ Build failed: %v", err)
	}

	log.Printf("✓ Build complete: %d teams, %d rows in %v", len(result.Defense), len(result.Rows), result.Duration.Round(time.Millisecond))
	if result.Quality.ConstantSOS {
		log.Printf("⚠️  output has constant strength-of-schedule; check stat source connectivity")
	}
}
