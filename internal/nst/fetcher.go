package nst

import (
	"context"
	"log"
	"time"

	"github.com/soluk/zamboni/internal/cache"
	"github.com/soluk/zamboni/internal/rating"
	"github.com/soluk/zamboni/internal/teamcode"
)

// minValidTeams is the smallest distinct-team count a fetched table must
// carry before it is trusted enough to cache. A league table with fewer
// teams almost always means a truncated or error page.
const minValidTeams = 20

// situationLoc maps each situation to the venue filter used on fetch. Only
// the 5v5 table combines both venues explicitly.
var situationLoc = map[rating.Situation]string{
	rating.SituationSVA: "B",
	rating.SituationPP:  "",
	rating.SituationPK:  "",
}

// Fetcher retrieves per-situation stat tables, caching valid results for the
// configured freshness window. The cache is optional; with none configured
// every call fetches directly.
type Fetcher struct {
	client   *Client
	cache    *cache.RedisCache
	resolver *teamcode.Resolver
	ttl      time.Duration
}

// NewFetcher creates a fetcher. cacheTTL bounds how long fetched tables stay
// fresh; redisCache may be nil.
func NewFetcher(client *Client, redisCache *cache.RedisCache, resolver *teamcode.Resolver, cacheTTL time.Duration) *Fetcher {
	return &Fetcher{client: client, cache: redisCache, resolver: resolver, ttl: cacheTTL}
}

// FetchSituation returns one situation's stat table for seasonLabel.
// forceRefresh bypasses and invalidates the cache; it is an explicit
// parameter on every call, never ambient state. Failures degrade to an empty
// table so the scoring core can fill neutrally.
func (f *Fetcher) FetchSituation(ctx context.Context, seasonLabel string, sit rating.Situation, forceRefresh bool) []rating.TeamStats {
	loc := situationLoc[sit]
	key := cache.TableKey(seasonLabel, string(sit), loc)

	if f.cache != nil {
		if forceRefresh {
			if err := f.cache.Delete(ctx, key); err != nil {
				log.Printf("⚠️  failed to invalidate cache key %s: %v", key, err)
			}
		} else if stats, ok := f.cache.GetTable(ctx, key); ok {
			if distinctTeams(stats) >= minValidTeams {
				log.Printf("  ✓ %s table for %s served from cache (%d teams)", sit, seasonLabel, len(stats))
				return stats
			}
			log.Printf("⚠️  cached %s table for %s is invalid; refetching", sit, seasonLabel)
		}
	}

	html, err := f.client.FetchTable(ctx, seasonLabel, string(sit), loc)
	if err != nil {
		log.Printf("❌ fetching %s table for %s: %v", sit, seasonLabel, err)
		return nil
	}

	stats, err := ParseTeamTable(html, f.resolver)
	if err != nil {
		log.Printf("❌ parsing %s table for %s: %v", sit, seasonLabel, err)
		return nil
	}

	if teams := distinctTeams(stats); teams < minValidTeams {
		log.Printf("⚠️  %s table for %s looks incomplete (rows=%d, teams=%d); not caching", sit, seasonLabel, len(stats), teams)
		return stats
	}

	if f.cache != nil {
		if err := f.cache.SetTable(ctx, key, stats, f.ttl); err != nil {
			log.Printf("⚠️  failed to cache %s table: %v", sit, err)
		}
	}
	log.Printf("  ✓ fetched %s table for %s (%d teams)", sit, seasonLabel, len(stats))
	return stats
}

// FetchAll returns all three situation tables. Missing tables come back as
// empty slices, matching the degrade-not-fail contract.
func (f *Fetcher) FetchAll(ctx context.Context, seasonLabel string, forceRefresh bool) map[rating.Situation][]rating.TeamStats {
	out := make(map[rating.Situation][]rating.TeamStats, len(rating.Situations))
	for _, sit := range rating.Situations {
		out[sit] = f.FetchSituation(ctx, seasonLabel, sit, forceRefresh)
	}
	return out
}

func distinctTeams(stats []rating.TeamStats) int {
	seen := make(map[string]struct{}, len(stats))
	for _, s := range stats {
		seen[s.Team] = struct{}{}
	}
	return len(seen)
}
