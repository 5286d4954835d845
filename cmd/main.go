package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"welcomewindow/backend/internal/alert"
	"welcomewindow/backend/internal/api/handler"
	"welcomewindow/backend/internal/approval"
	"welcomewindow/backend/internal/chathub"
	"welcomewindow/backend/internal/config"
	"welcomewindow/backend/internal/localization"
	"welcomewindow/backend/internal/mw"
	"welcomewindow/backend/internal/session"
	"welcomewindow/backend/internal/storage"
	"welcomewindow/backend/internal/trivia"

	"github.com/SherClockHolmes/webpush-go"
	"golang.org/x/time/rate"
)

func main() {
	logger := log.New(os.Stdout, "welcome-window ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Persistence
	db, err := storage.OpenDatabase(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Printf("database ready (%s)", cfg.Database.Driver)

	rdb, err := storage.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatalf("failed to connect Redis: %v", err)
	}
	store := storage.NewStorageService(db, rdb)

	var mirror chathub.EventMirror
	if rdb != nil {
		m := storage.NewEventMirror(rdb, cfg.Redis.Channel, 0)
		go m.Run(ctx)
		mirror = m
		logger.Printf("mirroring events to redis channel %s", cfg.Redis.Channel)
	}

	// 2. Host alerts
	var channels []alert.Channel
	if cfg.Alerts.VAPIDPublicKey != "" && cfg.Alerts.VAPIDPrivateKey != "" {
		channels = append(channels, alert.NewWebPushChannel(store, &webpush.Options{
			VAPIDPublicKey:  cfg.Alerts.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.Alerts.VAPIDPrivateKey,
			Subscriber:      cfg.Alerts.Subject,
			TTL:             cfg.Alerts.TTL,
		}))
	}
	if cfg.Alerts.TelegramToken != "" && cfg.Alerts.TelegramChatID != 0 {
		tg, err := alert.NewTelegramChannel(cfg.Alerts.TelegramToken, cfg.Alerts.TelegramChatID)
		if err != nil {
			logger.Printf("telegram alerts disabled: %v", err)
		} else {
			channels = append(channels, tg)
		}
	}
	alerts := alert.NewWorkerPool(cfg.Alerts.Workers, cfg.Alerts.QueueSize, cfg.Site.Name, channels...)
	alerts.Start(ctx)
	logger.Printf("alert channels: %v", alerts.Channels())

	// 3. Real-time core
	loc, err := localization.NewLocalizer()
	if err != nil {
		logger.Fatalf("failed to load translations: %v", err)
	}
	notifier := chathub.NewNotifier(mirror)
	gate := approval.NewService(store, notifier, alerts)
	registry := chathub.NewRegistry(store, notifier, cfg.Features.LogVisits)
	relay := chathub.NewRelay(store, notifier, cfg.Features.MaxMessageLength, cfg.Site.HostName)
	hub := chathub.NewHub(notifier, registry, relay, chathub.HubOptions{
		Games:           store,
		Access:          gate,
		Translator:      loc,
		RequireApproval: cfg.Features.RequireApproval,
		HistoryLimit:    cfg.Features.ChatHistoryLimit,
		HostName:        cfg.Site.HostName,
	})

	// 4. HTTP
	creds, err := session.NewCredentials(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.Auth.AdminPasswordHash)
	if err != nil {
		logger.Fatalf("invalid admin credentials: %v", err)
	}
	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	go limiter.RunJanitor(ctx, time.Minute)

	h := handler.NewHandler(handler.Deps{
		Config:      cfg,
		Store:       store,
		Hub:         hub,
		Gate:        gate,
		Sessions:    session.NewManager(cfg.Auth.SessionSecret, cfg.Auth.SessionLifetime, cfg.Auth.SecureCookies),
		Credentials: creds,
		Trivia:      trivia.NewClient(cfg.Trivia),
		Localizer:   loc,
		StatusCache: mw.NewResponseCache(time.Duration(cfg.Server.StatusCacheTTLSeconds) * time.Second),
		Limiter:     limiter,
	})

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        handler.NewRouter(h),
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}
	hub.CloseAll(shutdownCtx)
	cancel()

	if rdb != nil {
		rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Println("server gracefully stopped")
}
