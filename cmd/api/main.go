package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"supa-casino-backend/internal/config"
	"supa-casino-backend/internal/handlers"
	"supa-casino-backend/internal/services"
	"supa-casino-backend/internal/store"
	"supa-casino-backend/internal/store/jsonstore"
	"supa-casino-backend/internal/store/memstore"
	"supa-casino-backend/internal/store/redisstore"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.SetLevel(logrus.DebugLevel)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer st.Close()
	log.WithField("backend", cfg.Store.Backend).Info("store ready")

	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour
	rememberTTL := time.Duration(cfg.Session.RememberDays) * 24 * time.Hour

	hub := handlers.NewHub(log)

	authService := services.NewAuthService(st, st, st, log, sessionTTL, rememberTTL)
	balanceService := services.NewBalanceService(st, st)
	gameService := services.NewGameService(st, services.NewGenerator(), hub, log)

	cookie := handlers.CookieOptions{Name: cfg.Session.CookieName, Secure: cfg.Session.SecureCookies}

	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:       authService,
		AuthH:      handlers.NewAuthHandler(authService, cookie, log),
		BalanceH:   handlers.NewBalanceHandler(balanceService, log),
		GameH:      handlers.NewGameHandler(gameService, log),
		Hub:        hub,
		CookieName: cfg.Session.CookieName,
		Log:        log,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		return redisstore.Open(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	case config.BackendMemory:
		return memstore.New(), nil
	default:
		return jsonstore.Open(cfg.Store.Path)
	}
}
