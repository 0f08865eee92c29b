// Package main implements the VDA5050 telemetry gateway entry point.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleet-control/vdagw/internal/api"
	"github.com/fleet-control/vdagw/internal/config"
	"github.com/fleet-control/vdagw/internal/ingest"
	"github.com/fleet-control/vdagw/internal/journal"
	"github.com/fleet-control/vdagw/internal/metrics"
	"github.com/fleet-control/vdagw/internal/store"
	"github.com/fleet-control/vdagw/internal/telemetry"
)

const Version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to YAML config (default: $VDAGW_CONFIG or ./config.yaml)")
	flag.Parse()

	log.Printf("Starting VDA5050 telemetry gateway v%s", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully")

	gatewayMetrics := metrics.New()

	stateStore := store.New()

	hub := telemetry.NewHub(cfg.Stream.QueueSize, gatewayMetrics)
	streamer := telemetry.NewStreamer(hub, stateStore, cfg.Stream.Heartbeat())
	log.Println("Broadcast hub initialized")

	recordJournal := journal.New(cfg.Journal)
	if recordJournal != nil {
		log.Printf("Telemetry journal enabled at %s", cfg.Journal.Path)
	}

	bridge := ingest.New(cfg.MQTT, stateStore, hub, recordJournal, gatewayMetrics)

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	if err := bridge.Start(connectCtx); err != nil {
		cancelConnect()
		log.Fatalf("Failed to start MQTT bridge: %v", err)
	}
	cancelConnect()
	log.Printf("MQTT bridge connected to %s (namespace %s)", cfg.MQTT.BrokerURL, cfg.MQTT.Namespace)

	server := api.NewServer(stateStore, streamer, bridge, gatewayMetrics.Handler(),
		cfg.HTTP.ReadTimeout(), cfg.HTTP.IdleTimeout())

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.HTTP.Addr); err != nil {
			serverErr <- err
		}
	}()
	log.Printf("HTTP server listening on %s", cfg.HTTP.Addr)
	log.Printf("Stream endpoint: http://localhost%s/api/v1/stream", cfg.HTTP.Addr)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErr:
		log.Printf("Server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Disconnect ingest first so no new records arrive, then close all
	// sessions by stopping the hub; only then can the HTTP server drain
	// its long-lived stream handlers.
	bridge.Stop()
	log.Println("MQTT bridge stopped")

	hub.Stop()
	log.Println("Broadcast hub stopped")

	if err := server.Stop(ctx); err != nil {
		log.Printf("Error stopping HTTP server: %v", err)
	} else {
		log.Println("HTTP server stopped gracefully")
	}

	if err := recordJournal.Close(); err != nil {
		log.Printf("Error closing telemetry journal: %v", err)
	}

	log.Println("VDA5050 telemetry gateway shutdown complete")
}
