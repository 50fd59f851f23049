package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adimasruri/go-workshop-orders/internal/config"
	kafkax "github.com/adimasruri/go-workshop-orders/internal/kafka"
	"github.com/adimasruri/go-workshop-orders/internal/notifier"
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

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notifier.Service{
		Dedup:  &redisx.Dedup{RDB: rdb, Service: "notifier"},
		Mailer: &notifier.LogMailer{Log: log},
		Log:    log,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, workshop.TopicStatusChanged, cfg.NotifierWorkers, log)

	go func() {
		log.WithField("group", cfg.NotifierGroup).
			WithField("topic", workshop.TopicStatusChanged).
			Info("notifier consumer started")
		if err := cons.Start(ctx, svc.HandleStatusChanged); err != nil {
			log.WithError(err).Error("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
