package main

import (
	"context"
	"log"
	"time"

	"ecom-connector/internal/core/cache"
	"ecom-connector/internal/core/config"
	"ecom-connector/internal/core/logger"
	"ecom-connector/internal/core/server"
	"ecom-connector/internal/features/marketplace/adapters"
	"ecom-connector/internal/features/marketplace/domain"
	"ecom-connector/internal/features/marketplace/handler"
	"ecom-connector/internal/features/marketplace/ports"
	"ecom-connector/internal/features/marketplace/service"

	"go.uber.org/zap"
)

// @title ecom-connector API
// @version 1.0
// @description Unified connector API over Shopee, TikTok Shop, Lazada and Zalo OA.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	platforms, err := buildPlatforms(cfg)
	if err != nil {
		l.Fatal("Failed to build platform connectors", zap.Error(err))
	}
	if len(platforms) == 0 {
		l.Fatal("No platform credentials configured")
	}

	// Optional Redis cache for product listings
	var productCache cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.RedisURL)
		if err != nil {
			l.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisCache.Ping(ctx); err != nil {
			cancel()
			l.Fatal("Redis ping failed", zap.Error(err))
		}
		cancel()
		productCache = redisCache
		l.Info("Redis cache enabled", zap.Int("ttl_seconds", cfg.CacheTTLSeconds))
	}

	marketplaceSvc := service.NewMarketplaceService(
		platforms, productCache, time.Duration(cfg.CacheTTLSeconds)*time.Second)

	// Startup health probe, logged but not fatal: a vendor outage should not
	// keep the whole connector down.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	for name, probeErr := range marketplaceSvc.HealthCheck(ctx) {
		if probeErr != nil {
			l.Warn("Platform health check failed",
				zap.String("platform", name),
				zap.Error(probeErr),
			)
			continue
		}
		l.Info("Platform connection verified", zap.String("platform", name))
	}
	cancel()

	marketplaceHdl := handler.NewMarketplaceHandler(marketplaceSvc)

	srv := server.New(cfg)
	marketplaceHdl.RegisterRoutes(srv.App)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}

// buildPlatforms wires an adapter for every platform with credentials present
// in the environment.
func buildPlatforms(cfg *config.AppConfig) (map[domain.PlatformType]ports.Platform, error) {
	platforms := make(map[domain.PlatformType]ports.Platform)
	timeout := time.Duration(cfg.PlatformTimeoutMS) * time.Millisecond

	add := func(platform domain.PlatformType, creds domain.Credentials) error {
		connector, err := adapters.NewConnector(domain.ConnectorConfig{
			Platform:    platform,
			Credentials: creds,
			Sandbox:     cfg.PlatformSandbox,
			Timeout:     timeout,
		})
		if err != nil {
			return err
		}
		platforms[platform] = connector
		return nil
	}

	if cfg.Shopee.Configured() {
		if err := add(domain.PlatformShopee, domain.ShopeeCredentials{
			PartnerID:   cfg.Shopee.PartnerID,
			PartnerKey:  cfg.Shopee.PartnerKey,
			ShopID:      cfg.Shopee.ShopID,
			AccessToken: cfg.Shopee.AccessToken,
		}); err != nil {
			return nil, err
		}
	}

	if cfg.TikTok.Configured() {
		if err := add(domain.PlatformTikTokShop, domain.TikTokShopCredentials{
			AppKey:      cfg.TikTok.AppKey,
			AppSecret:   cfg.TikTok.AppSecret,
			ShopID:      cfg.TikTok.ShopID,
			AccessToken: cfg.TikTok.AccessToken,
		}); err != nil {
			return nil, err
		}
	}

	if cfg.Lazada.Configured() {
		if err := add(domain.PlatformLazada, domain.LazadaCredentials{
			AppKey:      cfg.Lazada.AppKey,
			AppSecret:   cfg.Lazada.AppSecret,
			AccessToken: cfg.Lazada.AccessToken,
		}); err != nil {
			return nil, err
		}
	}

	if cfg.ZaloOA.Configured() {
		if err := add(domain.PlatformZaloOA, domain.ZaloOACredentials{
			AppID:       cfg.ZaloOA.AppID,
			SecretKey:   cfg.ZaloOA.SecretKey,
			AccessToken: cfg.ZaloOA.AccessToken,
		}); err != nil {
			return nil, err
		}
	}

	return platforms, nil
}
