package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thrivenig/travelbook/config"
	"github.com/thrivenig/travelbook/internal/kafka"
	"github.com/thrivenig/travelbook/pkg/logger"
)

var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelbook_request_events_total",
		Help: "Request lifecycle events consumed from the stream, by type.",
	}, []string{"type"})

	bookingOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelbook_booking_outcomes_total",
		Help: "Terminal booking outcomes, by outcome.",
	}, []string{"outcome"})
)

func main() {
	log := logger.NewLogger()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatal("load config", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.RequestEventsTopic, log)
	defer consumer.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: cfg.Worker.MetricsAddress, Handler: mux}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server stopped", "error", err)
		}
	}()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, event kafka.RequestEvent) error {
			eventsTotal.WithLabelValues(event.Type).Inc()
			if event.Outcome != "" {
				bookingOutcomes.WithLabelValues(event.Outcome).Inc()
			}

			log.Info("request event",
				"type", event.Type,
				"request_id", event.RequestID,
				"identity_id", event.IdentityID,
				"origin", event.Origin,
				"destination", event.Destination,
				"outcome", event.Outcome,
				"order_id", event.OrderID,
			)
			return nil
		}); err != nil {
			log.Error("consumer stopped", "error", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info("shutting down", "signal", s.String())

	cancel()
	if err := metricsServer.Shutdown(context.Background()); err != nil {
		log.Error("metrics shutdown", "error", err)
	}
}
