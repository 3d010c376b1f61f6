package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/config"
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/experiment"
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/hookrpc"
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/hooks"
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/ledger"
	"github.com/danielpatrickdp/adaptive-state/prompt-experiments/internal/metrics"
)

// #region main

func main() {
	settings := config.FromEnv()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	var raw []experiment.RawExperiment
	if settings.Enabled {
		var err error
		raw, err = config.LoadExperiments(settings.ConfigPath, logger)
		if err != nil {
			log.Fatalf("failed to load experiments: %v", err)
		}
	} else {
		logger.Printf("prompt-experiments: disabled by EXPERIMENTS_ENABLED=false")
	}

	// Observers: metrics always, ledger and debug log when configured
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	observers := experiment.Observers{collector}

	if settings.DBPath != "" {
		led, err := ledger.Open(settings.DBPath, logger)
		if err != nil {
			log.Fatalf("failed to open ledger: %v", err)
		}
		defer func() {
			if err := led.Close(); err != nil {
				logger.Printf("prompt-experiments: ledger close: %v", err)
			}
			if n := led.Dropped(); n > 0 {
				logger.Printf("prompt-experiments: ledger dropped %d record(s)", n)
			}
		}()
		observers = append(observers, led)
	}
	if settings.Debug {
		observers = append(observers, experiment.LogObserver{Logger: logger})
	}

	plugin := hooks.NewPlugin(raw, logger, observers)
	bus := hooks.NewBus()
	if plugin.Register(bus) {
		if err := metrics.RegisterStoreSize(reg, plugin.Store()); err != nil {
			log.Fatalf("failed to register store gauge: %v", err)
		}
		bus.Dispatch(hooks.Startup{})
	}

	// gRPC hook service
	lis, err := net.Listen("tcp", settings.HooksAddr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", settings.HooksAddr, err)
	}
	srv := grpc.NewServer(grpc.UnaryInterceptor(hookrpc.RecoveryInterceptor(logger)))
	hookrpc.Register(srv, bus)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)

	go func() {
		if err := srv.Serve(lis); err != nil {
			log.Fatalf("grpc serve: %v", err)
		}
	}()

	var metricsSrv *http.Server
	if settings.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		metricsSrv = &http.Server{Addr: settings.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("prompt-experiments: metrics server: %v", err)
			}
		}()
	}

	logger.Printf("prompt-experiments: ready | hooks: %s | metrics: %s | ledger: %s",
		settings.HooksAddr, orNone(settings.MetricsAddr), orNone(settings.DBPath))

	// Graceful shutdown on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Printf("prompt-experiments: shutting down")
	healthSrv.Shutdown()
	srv.GracefulStop()
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsSrv.Shutdown(shutdownCtx)
	}
}

// #endregion main

// #region helpers

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// #endregion helpers
