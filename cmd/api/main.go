package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/pro-prioritet/tracker/config"
	"github.com/pro-prioritet/tracker/internal/auth"
	"github.com/pro-prioritet/tracker/internal/kvstore"
	"github.com/pro-prioritet/tracker/internal/server"
)

const serviceName = "tracker-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	kv, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("kv store: %v", err)
	}

	provider := auth.NewHTTPProvider(cfg.Auth.BaseURL, cfg.API.AnonKey)

	r := server.BuildRouter(server.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		KV:          kv,
		Auth:        provider,
		RateLimit:   rate.Limit(cfg.Server.RateLimit),
	})

	log.Printf("listening on :%s (kv backend: %s)", cfg.Server.Port, cfg.Server.KVBackend)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func buildStore(cfg *config.Config) (kvstore.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.Server.KVBackend {
	case "postgres":
		pool, err := kvstore.NewPool(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		return kvstore.NewPGStore(ctx, pool)
	default:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		return kvstore.NewRedisStore(client), nil
	}
}
