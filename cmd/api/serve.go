package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"menuflow/pkg/api"
	"menuflow/pkg/config"
	"menuflow/pkg/events/rabbitmq"
	"menuflow/pkg/logger"
	"menuflow/pkg/order"
	"menuflow/pkg/otel"
	"menuflow/pkg/pricing"
	"menuflow/pkg/restaurant"
	"menuflow/pkg/storage"
)

func newServeCmd() *cobra.Command {
	var (
		cfgPath   string
		port      int
		datastore string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("datastore") {
				cfg.DatastoreURI = datastore
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "path to YAML config")
	cmd.Flags().IntVar(&port, "port", 0, "listening port (overrides PORT)")
	cmd.Flags().StringVar(&datastore, "datastore", "", "datastore connection URI (overrides DATASTORE_URI)")
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	log := logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), "menuflow", otel.GetTraceID)
	defer log.Sync()

	tp, shutdownTracing, err := otel.InitTracing(log, otel.Config{
		ServiceName: "menuflow",
		Host:        cfg.OTel.Host,
		Probability: cfg.OTel.Probability,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	backend, err := storage.Open(ctx, cfg.DatastoreURI)
	if err != nil {
		return fmt.Errorf("open datastore: %w", err)
	}
	defer func() {
		if err := backend.Close(context.Background()); err != nil {
			log.Error(context.Background(), "close datastore", "error", err)
		}
	}()
	log.Info(ctx, "datastore connected", "kind", backend.Kind)

	var notifier order.Notifier
	if cfg.AMQP.URL != "" {
		pub, err := rabbitmq.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer pub.Close()
		notifier = pub
		log.Info(ctx, "order events enabled", "exchange", cfg.AMQP.Exchange)
	}

	restaurants := restaurant.NewService(backend.Restaurants)
	orders := order.NewService(backend.Orders, pricing.New(restaurants), notifier, log)
	handler := api.NewRouter(api.NewHandlers(restaurants, orders, log), tp.Tracer("menuflow"))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", srv.Addr, "tls", cfg.TLS.Enabled())
		if cfg.TLS.Enabled() {
			errCh <- srv.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server closed: %w", err)
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
