// README: Entry point; loads config, runs migrations, wires services, starts
// the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrilink/internal/auth"
	"agrilink/internal/config"
	httptransport "agrilink/internal/http"
	"agrilink/internal/infra"
	"agrilink/internal/modules/assignment"
	"agrilink/internal/modules/order"
	"agrilink/internal/modules/product"
	"agrilink/internal/modules/settings"
	"agrilink/internal/modules/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := infra.Migrate(cfg.DB.DSN, cfg.DB.MigrationsDir); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	txRunner := infra.PoolTxRunner{Pool: dbPool}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLDays)*24*time.Hour)

	userStore := user.NewStore(dbPool)
	userSvc := user.NewService(userStore)

	settingsStore := settings.NewStore(dbPool)
	settingsSvc := settings.NewService(settingsStore, redisClient)

	productStore := product.NewStore(dbPool)
	productSvc := product.NewService(productStore, settingsSvc)

	orderStore := order.NewStore(dbPool)
	orderSvc := order.NewService(orderStore, productSvc, userStore, txRunner)

	assignmentStore := assignment.NewStore(dbPool)
	assignmentSvc := assignment.NewService(assignmentStore, orderStore, userStore, txRunner)

	if cfg.Delivery.AutoAssign {
		orderSvc.SetAssigner(assignmentSvc)
	}

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Users:          userSvc,
		Products:       productSvc,
		Orders:         orderSvc,
		Assignments:    assignmentSvc,
		Settings:       settingsSvc,
		Tokens:         tokens,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
