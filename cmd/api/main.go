package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adimasruri/go-workshop-orders/internal/config"
	"github.com/adimasruri/go-workshop-orders/internal/engine"
	"github.com/adimasruri/go-workshop-orders/internal/httpx"
	kafkax "github.com/adimasruri/go-workshop-orders/internal/kafka"
	"github.com/adimasruri/go-workshop-orders/internal/postgres"
	"github.com/adimasruri/go-workshop-orders/internal/redisx"
	"github.com/adimasruri/go-workshop-orders/internal/workshop"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := config.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Notification producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, workshop.TopicStatusChanged, 1024, log)
	prod.Start(ctx)

	// Engine
	store := postgres.NewStore(db)
	views := &redisx.Views{RDB: rdb, Log: log}
	svc := engine.New(store, prod, views, log, cfg.ServiceName)

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{Engine: svc, Redis: rdb, Log: log}).Register(router)
	(&httpx.ProductsHandler{Engine: svc, Log: log}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // flush queued events, then close the writer
	prod.WaitClosed()
}
