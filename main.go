package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/config"
	"github.com/yoyocubano/weddings-events-luxembourg-libre/gateway"
	"github.com/yoyocubano/weddings-events-luxembourg-libre/handlers"
	"github.com/yoyocubano/weddings-events-luxembourg-libre/providers"
	"github.com/yoyocubano/weddings-events-luxembourg-libre/router"
)

var rootCmd = &cobra.Command{
	Use:   "concierge",
	Short: "Conversational lead-capture gateway for WE Weddings & Events Luxembourg",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("exiting")
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	var adapters []providers.Adapter
	if cfg.GoogleAPIKey != "" {
		adapters = append(adapters, providers.NewGemini(cfg.GoogleAPIKey))
	}
	if cfg.ChatAPIKey != "" {
		adapters = append(adapters, providers.NewChatCompletions(cfg.ChatAPIKey, cfg.ChatBaseURL))
	}
	if len(adapters) == 0 {
		log.Warn().Msg("no provider credentials configured, /chat will answer 500")
	}

	candidates := make([]gateway.Candidate, 0, len(cfg.Candidates))
	for _, c := range cfg.Candidates {
		candidates = append(candidates, gateway.Candidate{Provider: c.Provider, Model: c.Model})
	}
	gw := gateway.New(adapters, candidates)

	// Redis backs the WebSocket channel and the rate limiter. When it is
	// unreachable the service still serves POST /chat: availability of the
	// conversation beats the extras.
	var rdb *redis.Client
	if opts, err := redis.ParseURL(cfg.RedisURL); err != nil {
		log.Warn().Err(err).Msg("invalid REDIS_URL, websocket channel disabled")
	} else {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, websocket channel disabled")
			client.Close()
		} else {
			rdb = client
			log.Info().Msg("connected to redis")
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/chat", handlers.RateLimit(rdb, handlers.NewChatHandler(gw)))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if rdb != nil {
		mux.Handle("/ws", handlers.NewWSHandler(rdb, cfg.AllowedOrigins))
	}

	server := &http.Server{Addr: ":" + cfg.Port, Handler: mux}

	g, gctx := errgroup.WithContext(ctx)

	if rdb != nil {
		worker := router.New(rdb, gw)
		if err := worker.EnsureConsumerGroup(gctx); err != nil {
			return err
		}
		g.Go(func() error {
			worker.ConsumeLoop(gctx)
			return nil
		})
	}

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if rdb != nil {
		rdb.Close()
	}
	return err
}
