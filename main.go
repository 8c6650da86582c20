package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bouquetStore/config"
	"bouquetStore/gateway"
	"bouquetStore/handlers"
	"bouquetStore/repository"
	"bouquetStore/services"

	"github.com/gorilla/mux"
)

func main() {
	configPath := flag.String("config", os.Getenv("BOUQUET_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg.Server.LogLevel)

	ctx, cncl := context.WithTimeout(context.Background(), 10*time.Second)
	defer cncl()

	db, err := repository.OpenPostgres(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("db connected")

	rdb, err := repository.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("redis connected")

	if err = repository.Migrate(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	uR, err := repository.NewUserRepository(db, cfg.Auth.BcryptCost)
	must(err)
	sR, err := repository.NewSessionRepository(ctx, rdb)
	must(err)
	mR, err := repository.NewMaterialRepository(db)
	must(err)
	pR, err := repository.NewProductRepository(db)
	must(err)
	cartR, err := repository.NewCartRepository(ctx, rdb, cfg.Redis.CartTTL)
	must(err)
	oR, err := repository.NewOrderRepository(db)
	must(err)
	tR, err := repository.NewTokenRepository(db)
	must(err)

	push, err := gateway.NewPushGateway(ctx, cfg.Push)
	if err != nil {
		slog.Error("Failed to initialise push gateway", "error", err)
		os.Exit(1)
	}
	payments := gateway.NewMidtransGateway(cfg.Payment)

	pricing := services.NewPricingService(mR)
	notifier := services.NewNotificationService(uR, tR, push, services.NotificationOptions{
		StaffRoles:         cfg.Notify.StaffRoles,
		FallbackRecipients: cfg.Notify.FallbackRecipients,
		MaxItems:           cfg.Notify.MaxItems,
	})

	hp := handlers.HandlerParams{
		UsrService:   services.NewUserService(uR, sR, cfg.Auth),
		MatService:   services.NewMaterialService(mR),
		PrdService:   services.NewProductService(pR, pricing),
		CrtService:   services.NewCartService(pR, cartR, pricing),
		OrdService:   services.NewOrderService(cartR, oR, payments, notifier, cfg.Payment.VerifySignatures),
		NotifService: notifier,
		StaffRoles:   cfg.Notify.StaffRoles,
	}
	ha := handlers.NewHandler(hp)
	router := mux.NewRouter()
	ha.RegisterRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "port", cfg.Server.Port, "push", cfg.Push.Provider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	notifier.Wait()
	slog.Info("server exited")
}

func must(err error) {
	if err != nil {
		slog.Error("Failed to initialise repository", "error", err)
		os.Exit(1)
	}
}
