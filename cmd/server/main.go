package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	channelrepository "dm-relay/backend/internal/channel/repository"
	channelservice "dm-relay/backend/internal/channel/service"
	"dm-relay/backend/internal/config"
	"dm-relay/backend/internal/db"
	"dm-relay/backend/internal/fanout"
	membershiprepository "dm-relay/backend/internal/membership/repository"
	messagerepository "dm-relay/backend/internal/message/repository"
	"dm-relay/backend/internal/presence"
	"dm-relay/backend/internal/server"
	"dm-relay/backend/internal/session"
	"dm-relay/backend/internal/telemetry"
	otelsetup "dm-relay/backend/internal/telemetry/otel"
	"dm-relay/backend/internal/telemetry/producer"
	userrepository "dm-relay/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "dmrelay-server", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	// Delivery/request events go to Kafka when brokers are configured,
	// otherwise to OTel Logs (no-op without an OTLP endpoint).
	var emitter telemetry.EventEmitter
	if brokers := cfg.DeliveryKafkaBrokersList(); len(brokers) > 0 {
		kafkaProducer, err := producer.NewKafkaProducer(brokers, cfg.DeliveryKafkaTopic)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		defer kafkaProducer.Close()
		emitter = kafkaProducer
		log.Printf("delivery telemetry: kafka %v topic %s", brokers, cfg.DeliveryKafkaTopic)
	} else {
		emitter = otelsetup.NewEventEmitter(providers.LoggerProvider)
	}

	users := userrepository.NewPostgresRepository(conn)
	channels := channelrepository.NewPostgresRepository(conn)
	memberships := membershiprepository.NewPostgresRepository(conn)
	messages := messagerepository.NewPostgresRepository(conn)

	registry := presence.NewRegistry()
	tracker := presence.NewHeartbeatTracker()

	dispatcher, err := fanout.NewDispatcher(registry, providers.MeterProvider, emitter)
	if err != nil {
		log.Fatalf("fanout: %v", err)
	}
	resolver := channelservice.NewResolver(users, channels, messages, dispatcher)

	handler := server.New(server.Deps{
		Users:       users,
		Memberships: memberships,
		Messages:    messages,
		Resolver:    resolver,
		Dispatcher:  dispatcher,
		Tracker:     tracker,
		Session:     session.NewEndpoint(registry, tracker, users),
		DB:          conn,
		Window:      cfg.Window(),
		Emitter:     emitter,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async emits finish before tearing down the providers.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(context.Background()); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
