package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"vidwatch/anon-chat/dispatch"
	"vidwatch/anon-chat/envconfig"
	"vidwatch/anon-chat/janitor"
	"vidwatch/anon-chat/middleware"
	"vidwatch/anon-chat/ratelimit"
	"vidwatch/anon-chat/registry"
	"vidwatch/anon-chat/rooms"
	wsserver "vidwatch/anon-chat/ws_server"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	envconfig.InitEnvConfig()

	reg := registry.NewRegistry()
	roomManager := rooms.NewManager(logger)
	dispatcher := dispatch.New(roomManager, reg, logger)
	limiter := ratelimit.NewLimiter()

	server := wsserver.New(reg, roomManager, dispatcher, limiter, logger)

	sweeper := janitor.New(roomManager, janitor.DefaultInterval, janitor.DefaultMaxAge, logger)
	go sweeper.Run()

	monitor := wsserver.NewMonitor(reg, wsserver.DefaultProbeInterval, logger)
	go monitor.Run()

	middlewareStack := middleware.CreateStack(
		middleware.OriginCheck(envconfig.EnvConfig.AllowedOrigins, logger),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/", handleHealth)
	mux.HandleFunc("/ws", middlewareStack(server.HandleWebSocket))

	httpServer := &http.Server{
		Addr:    ":" + envconfig.EnvConfig.Port,
		Handler: mux,
	}

	go func() {
		logger.Info().Str("port", envconfig.EnvConfig.Port).Msg("chat relay listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("error starting server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	monitor.Stop()
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}

// Plaintext health check used for uptime monitoring
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Anonymous watch chat relay is running"))
}
