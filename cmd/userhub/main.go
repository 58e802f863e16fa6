package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"userhub/backend/internal/config"
	"userhub/backend/internal/events"
	"userhub/backend/internal/hash"
	"userhub/backend/internal/httpserver"
	"userhub/backend/internal/logging"
	mw "userhub/backend/internal/middleware"
	"userhub/backend/internal/repo"
	"userhub/backend/internal/search"
	"userhub/backend/internal/service"
	"userhub/backend/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	codec := &tokens.Codec{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}
	hasher := hash.Argon2Hasher{Params: cfg.Argon}
	userRepo := &repo.UserRepo{DB: db}

	var sink service.EventSink
	var producer *events.Producer
	if cfg.KafkaAddress != "" {
		producer = events.NewProducer(cfg.KafkaAddress, cfg.KafkaTopic)
		sink = producer
		defer producer.Close()
	} else {
		logger.Warn("KAFKA_ADDRESS not set, user events disabled")
	}

	var userIndex *search.UserIndex
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		userIndex = &search.UserIndex{ES: es, Index: cfg.UserIndex}
	} else {
		logger.Warn("ES_URL not set, user search disabled")
	}

	authSvc := &service.AuthService{
		Users:  userRepo,
		Hasher: hasher,
		Codec:  codec,
		Events: sink,
	}
	userSvc := &service.UserService{
		Repo:   userRepo,
		Hasher: hasher,
		Events: sink,
		Index:  userIndex,
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(mw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth:      &httpserver.AuthHTTP{Auth: authSvc, Users: userSvc},
		Users:     &httpserver.UserHTTP{Users: userSvc},
		TokenAuth: mw.NewTokenAuth(codec),
		LoginRate: rate.Limit(cfg.LoginRatePerSec),
	})

	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
