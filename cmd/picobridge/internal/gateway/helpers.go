package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tinyland-inc/picobridge/cmd/picobridge/internal"
	"github.com/tinyland-inc/picobridge/pkg/bridge"
	"github.com/tinyland-inc/picobridge/pkg/channels"
	"github.com/tinyland-inc/picobridge/pkg/config"
	"github.com/tinyland-inc/picobridge/pkg/logger"
	"github.com/tinyland-inc/picobridge/pkg/server"
	"github.com/tinyland-inc/picobridge/pkg/state"
)

const shutdownTimeout = 10 * time.Second

func gatewayCmd(debug bool) error {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("🔍 Debug mode enabled")
	}

	gw, err := newGateway(cfg)
	if err != nil {
		return err
	}
	defer gw.store.Close()

	ctx := context.Background()
	if seeded, err := gw.controller.SeedBinding(ctx, cfg.Channels.LINE.DefaultDestination); err != nil {
		logger.WarnCF("gateway", "Could not seed default destination", map[string]any{"error": err.Error()})
	} else if seeded {
		fmt.Printf("✓ Seeded LINE destination %s\n", cfg.Channels.LINE.DefaultDestination)
	}

	logger.WarnCF("gateway", "Telegram webhook requests are not authenticated; keep its path private", map[string]any{
		"path": cfg.Gateway.TelegramPath,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := gw.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	fmt.Printf("✓ Gateway started on %s\n", gw.server.Addr())
	fmt.Printf("  LINE webhook:     %s\n", cfg.Gateway.LINEPath)
	fmt.Printf("  Telegram webhook: %s\n", cfg.Gateway.TelegramPath)
	fmt.Println("  Health: /health /ready   Metrics: /metrics")
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
	case err := <-errCh:
		logger.ErrorCF("gateway", "Server error", map[string]any{"error": err.Error()})
		return err
	}

	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := gw.server.Stop(shutdownCtx); err != nil {
		logger.ErrorCF("gateway", "Shutdown error", map[string]any{"error": err.Error()})
	}
	fmt.Println("✓ Gateway stopped")
	return nil
}

type gateway struct {
	store      state.Store
	controller *bridge.Controller
	server     *server.Server
	registry   *prometheus.Registry
}

// newGateway wires the store, both platform clients, the controller and the
// HTTP server from cfg. Nothing is started.
func newGateway(cfg *config.Config) (*gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Gateway.SendTimeoutSeconds) * time.Second

	line, err := channels.NewLINEChannel(channels.LINEOptions{
		AccessToken: cfg.Channels.LINE.ChannelAccessToken,
		Endpoint:    cfg.Channels.LINE.APIEndpoint,
		HTTPClient:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}

	if _, err := channels.ParseChatID(cfg.Channels.Telegram.ChatID); err != nil {
		return nil, fmt.Errorf("channels.telegram.chat_id: %w", err)
	}
	telegram, err := channels.NewTelegramChannel(channels.TelegramOptions{
		Token:     cfg.Channels.Telegram.Token,
		APIServer: cfg.Channels.Telegram.APIServer,
		Proxy:     cfg.Channels.Telegram.Proxy,
		Timeout:   timeout,
	})
	if err != nil {
		return nil, err
	}

	store, err := state.Open(cfg.State)
	if err != nil {
		return nil, fmt.Errorf("error opening state store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	controller := bridge.NewController(store, line, telegram, bridge.Options{
		TelegramChatID:    cfg.Channels.Telegram.ChatID,
		LINETag:           cfg.Bridge.LINETag,
		TelegramTag:       cfg.Bridge.TelegramTag,
		UnknownSender:     cfg.Bridge.UnknownSender,
		JoinReply:         cfg.Bridge.JoinReply,
		LINEAllowFrom:     cfg.Channels.LINE.AllowFrom,
		TelegramAllowFrom: cfg.Channels.Telegram.AllowFrom,
		Metrics:           bridge.NewMetrics(registry),
	})

	srv := server.New(server.Options{
		Host: cfg.Gateway.Host,
		Port: cfg.Gateway.Port,
		Routes: []server.Route{
			{Path: cfg.Gateway.LINEPath, Handler: controller.LINEWebhookHandler(cfg.Channels.LINE.ChannelSecret)},
			{Path: cfg.Gateway.TelegramPath, Handler: controller.TelegramWebhookHandler()},
		},
		Gatherer: registry,
	})

	return &gateway{
		store:      store,
		controller: controller,
		server:     srv,
		registry:   registry,
	}, nil
}
