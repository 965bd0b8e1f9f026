package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"antiproxy-go/internal/config"
	"antiproxy-go/internal/constants"
	"antiproxy-go/internal/dispatch"
	"antiproxy-go/internal/logging"
	"antiproxy-go/internal/monitoring/tracing"
	srv "antiproxy-go/internal/server"
	"antiproxy-go/internal/upstream"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	cfg, err := config.LoadWithFile(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if *debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if err := logging.Setup(cfg); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}

	traceShutdown, err := tracing.Init(context.Background())
	if err != nil {
		log.WithError(err).Warn("failed to initialize tracing")
	}
	if traceShutdown != nil {
		defer func() {
			if err := traceShutdown(context.Background()); err != nil {
				log.WithError(err).Warn("failed to shutdown tracing")
			}
		}()
	}

	log.Infof("Starting antiproxy %s (config: %s)", constants.FullVersion(), *configPath)
	log.Info("429 handling: returned to the caller for account rotation (no retry)")

	client := upstream.New(cfg)
	limiter := dispatch.NewLimiter(cfg.MinRequestInterval())
	dispatcher := dispatch.New(dispatch.NewEndpointSet(cfg.Endpoints), limiter, client, cfg.RequestTimeout())

	// Hot reload: only the dispatch spacing is safe to change at runtime;
	// endpoint or transport changes need a restart.
	watcher := config.NewWatcher(*configPath, func(next *config.Config) {
		limiter.SetInterval(next.MinRequestInterval())
		log.WithField("interval_ms", next.MinRequestIntervalMS).Info("dispatch interval updated")
	})
	if err := watcher.Start(); err != nil {
		log.WithError(err).Warn("config watcher unavailable")
	}
	defer watcher.Stop()

	engine := srv.BuildEngine(cfg, dispatcher)
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", cfg.Port),
		Handler: engine,
	}

	go func() {
		log.Infof("antiproxy listening on http://%s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("Shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancelShutdown()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}
}
