package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"donorlift/internal/audit"
	"donorlift/internal/availability"
	availabilityhandler "donorlift/internal/availability/handler"
	availabilityservice "donorlift/internal/availability/service"
	"donorlift/internal/donation"
	donationhandler "donorlift/internal/donation/handler"
	donationservice "donorlift/internal/donation/service"
	"donorlift/internal/http/router"
	"donorlift/internal/identity"
	"donorlift/internal/jwtauth"
	"donorlift/internal/pickup"
	"donorlift/internal/pickup/geoindex"
	pickuphandler "donorlift/internal/pickup/handler"
	pickupservice "donorlift/internal/pickup/service"
	"donorlift/internal/platform/config"
	"donorlift/internal/platform/httpserver"
	"donorlift/internal/platform/logger"
	"donorlift/internal/platform/metrics"
	"donorlift/internal/platform/postgres"
	"donorlift/internal/platform/redis"
)

// main wires dependencies and owns the process lifecycle. Memory stores are
// the default; Postgres, Redis, and Kafka attach when their URLs are
// configured. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: memory by default, Postgres when DATABASE_URL is set.
	var (
		availabilityStore availabilityservice.Store
		pickupStore       pickup.Store
		donationStore     donation.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connect failed", "error", err.Error())
			os.Exit(1)
		}
		defer pool.Close()
		pickupPG := pickup.NewPostgresStore(pool)
		availabilityStore = availability.NewPostgresStore(pool)
		pickupStore = pickupPG
		donationStore = donation.NewPostgresStore(pool, pickupPG)
		log.Info("using postgres stores")
	} else {
		memPickups := pickup.NewInMemoryStore()
		availabilityStore = availability.NewInMemoryStore()
		pickupStore = memPickups
		donationStore = donation.NewInMemoryStore(memPickups)
		log.Info("using in-memory stores")
	}

	identityStore := identity.NewInMemoryStore()
	if err := identity.SeedDev(ctx, identityStore); err != nil {
		log.Error("identity seed failed", "error", err.Error())
		os.Exit(1)
	}

	// Redis geo index, optional.
	var (
		pickupGeo   pickupservice.GeoIndex
		donationGeo donationservice.GeoIndex
	)
	rdb, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err.Error())
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		idx := geoindex.New(rdb.Client)
		pickupGeo = idx
		donationGeo = idx
		log.Info("redis geo index enabled")
	}

	// Audit pipeline: publisher -> worker -> sinks.
	auditor := audit.NewPublisher(256, log)
	auditStore := audit.NewInMemoryStore()
	sinks := []audit.Sink{auditStore}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka sink init failed", "error", err.Error())
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		log.Info("kafka audit sink enabled", "topic", cfg.KafkaTopic)
	}
	worker := audit.NewWorker(auditor.Events(), log, sinks...)

	jwtManager := jwtauth.NewManager(cfg.JWTSigningKey, 24*time.Hour)

	availabilitySvc := availabilityservice.New(availabilityStore, auditor, m)
	donationSvc := donationservice.New(donationStore, identityStore, donationGeo, auditor, m)
	pickupSvc := pickupservice.New(pickupStore, donationSvc, pickupGeo, auditor, m)

	checks := map[string]router.HealthChecker{}
	if rdb != nil {
		checks["redis"] = rdb
	}
	handler := router.New([]router.Registrar{
		availabilityhandler.New(availabilitySvc, log, m, jwtManager),
		pickuphandler.New(pickupSvc, log, m, jwtManager),
		donationhandler.New(donationSvc, log, m, jwtManager),
	}, checks)

	srv := httpserver.New(cfg.Addr, handler)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return worker.Run(groupCtx)
	})
	group.Go(func() error {
		log.Info("starting donorlift", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
