package main

import (
	"chat-relay/auth"
	"chat-relay/infrastructure/status"
	"chat-relay/infrastructure/ws"
	"chat-relay/internal"
	"chat-relay/notify"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	fiberws "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanups always execute.
// Unrecoverable store connectivity at startup is the only globally
// fatal condition; everything after this point degrades per-request.
func run() error {
	config, err := internal.Load()
	if err != nil {
		return err
	}
	log := internal.NewLogger(config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	registry := runtime.NewRegistry()
	conversationRepository := repositories.NewConversationRepository(db, log)
	messageRepository := repositories.NewMessageRepository(db, log)
	verifier := auth.NewVerifier(config.JWTSecret)

	notifier := notify.NewHTTPNotifier(config.NotifierEndpoint,
		&http.Client{Timeout: config.NotifierTimeout})
	notifierWorker := workers.NewNotifierWorker(log, notifier,
		config.NotifierBufferSize, config.NotifierTimeout)

	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(notifierWorker)

	service := services.NewChatService(log, verifier,
		conversationRepository, messageRepository, registry,
		notifierWorker, config.MaxContentLength)

	handler := ws.NewHandler(log, service, ws.Config{
		WriteWait:      config.WriteWait,
		PongWait:       config.PongWait,
		PingPeriod:     config.PingPeriod,
		MaxMessageSize: config.MaxMessageSize,
		SinkBufferSize: config.SinkBufferSize,
		SendBufferSize: config.SendBufferSize,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go supervisor.Run(ctx)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", fiberws.New(handler.Handle))

	status.NewServer(log, registry, handler).Register(app)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting relay", "address", address)
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	if err := app.Shutdown(); err != nil {
		log.Warn("Error during shutdown", "error", err)
	}
	log.Info("Relay stopped cleanly")

	return nil
}
