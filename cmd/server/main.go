// The server binary exposes the calculation engine over HTTP. It is a
// thin shell: all pricing logic lives in the core packages.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/abhishekuniyalibyte/clover-calculator/api"
	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/engine"
	"github.com/abhishekuniyalibyte/clover-calculator/core/snapshot"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/config"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/logging"
)

func main() {
	cfgPath := flag.String("config", "", "config file path")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}
	cfg := config.Get()

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()
	log := logging.Named("server")

	resolver, err := catalog.NewResolver(catalog.NewFileStore(cfg.Catalog.Directory), cfg.Catalog.CacheSize)
	if err != nil {
		log.Fatal("catalog resolver init failed", zap.Error(err))
	}

	store, err := snapshot.Open(cfg.Storage.DatabasePath)
	if err != nil {
		log.Fatal("snapshot store init failed", zap.Error(err))
	}
	defer store.Close()

	eng := engine.New()
	eng.Convention = engine.DayCountConvention(cfg.Engine.DayCountConvention)
	eng.AmortizationMonths = cfg.Engine.AmortizationMonths

	listenAddr := cfg.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           api.NewRouter(resolver, eng, store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", listenAddr))
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown error", zap.Error(err))
		}
	}
}
