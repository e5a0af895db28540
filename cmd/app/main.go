// File: cmd/app/main.go
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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"telegram-file-relay/internal/config"
	tele "telegram-file-relay/internal/infra/adapters/telegram"
	httpapi "telegram-file-relay/internal/infra/http"
	"telegram-file-relay/internal/infra/logging"
	"telegram-file-relay/internal/infra/metrics"
	red "telegram-file-relay/internal/infra/redis"
	"telegram-file-relay/internal/infra/worker"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	cfgFile string
	devMode bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "filerelay",
		Short:        "Telegram bot that relays remote files into chats",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "enable developer mode (console logs, no redaction)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(fetchCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and the health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func fetchCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "fetch [command]",
		Short: "Download one configured source to a local directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile, devMode)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger := logging.New(cfg.Log, cfg.Runtime.Dev)
			app, err := buildApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			if _, ok := app.facade.Source(args[0]); !ok {
				return fmt.Errorf("unknown source %q", args[0])
			}
			chat := tele.NewLocalChat(outDir, cmd.OutOrStdout(), logger)
			if err := app.facade.HandleRelay(cmd.Context(), chat, args[0]); err != nil {
				return err
			}
			if len(chat.Saved()) == 0 {
				return errors.New("nothing was downloaded")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write the file to")
	return cmd
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(cfgFile, devMode)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	logger.Info().
		Str("version", version).
		Str("token", logging.Redact(cfg.Bot.Token, cfg.Runtime.Dev)).
		Int("sources", len(cfg.Sources)).
		Msg("starting file relay")

	return serve(ctx, cfg, logger, newTelegramBot)
}

// newBotFunc builds the Telegram side of serve.
type newBotFunc func(cfg *config.Config, a *app, pool *worker.Pool, logger *zerolog.Logger) (*tele.RealTelegramBotAdapter, error)

func newTelegramBot(cfg *config.Config, a *app, pool *worker.Pool, logger *zerolog.Logger) (*tele.RealTelegramBotAdapter, error) {
	return tele.NewRealTelegramBotAdapter(&cfg.Bot, a.facade, a.translator, pool, logger)
}

func serve(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, newBot newBotFunc) error {
	startedAt := time.Now()

	// ---- Health server ----
	// Started before anything that talks to Telegram or Redis.
	health := httpapi.NewServer(cfg.Health, startedAt, logger)
	go func() {
		if err := health.Start(); err != nil {
			logger.Error().Err(err).Msg("health server error")
		}
	}()
	defer shutdownServer(logger, "health", health.Shutdown)

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	if cfg.Metrics.Port > 0 {
		metricsSrv := metrics.NewServer(cfg.Metrics.Port, logger)
		go func() {
			logger.Info().Str("addr", metricsSrv.Addr).Msg("metrics listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server error")
			}
		}()
		defer shutdownServer(logger, "metrics", metricsSrv.Shutdown)
	}

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// ---- Worker pool ----
	pool := worker.NewPool(cfg.Relay.Workers, logger)
	pool.Start(ctx)
	defer pool.Stop()

	// ---- Telegram ----
	botAdapter, err := newBot(cfg, app, pool, logger)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	// ---- Redis (optional) ----
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
		} else {
			defer redisClient.Close()
			botAdapter.WithRateLimiter(red.NewRateLimiter(redisClient, cfg.Redis.RelayLimit, cfg.Redis.RelayWindow))
			logger.Info().Int("limit", cfg.Redis.RelayLimit).Dur("window", cfg.Redis.RelayWindow).Msg("relay rate limiting enabled")
		}
	}

	if err := botAdapter.SetMenuCommands(ctx); err != nil {
		logger.Warn().Err(err).Msg("set menu commands failed")
	}

	pollErr := botAdapter.StartPolling(ctx)
	logger.Info().Msg("shutting down")

	// A cancelled context means we were asked to stop; anything else exits
	// non-zero so the supervisor restarts the process.
	if pollErr != nil && !errors.Is(pollErr, context.Canceled) {
		return fmt.Errorf("telegram polling stopped: %w", pollErr)
	}
	return nil
}

func shutdownServer(logger *zerolog.Logger, name string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn().Err(err).Str("server", name).Msg("shutdown")
	}
}
