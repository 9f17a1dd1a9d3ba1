package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"holidaze/internal/auth"
	"holidaze/internal/config"
	"holidaze/internal/events"
	"holidaze/internal/holidazeapi"
	"holidaze/internal/logging"
	"holidaze/internal/notify"
	"holidaze/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds everything a command needs. It is built once per invocation.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	loc    *time.Location
	db     *storage.DB
	rdb    *redis.Client
	client *holidazeapi.Client
	auth   *auth.Service
	bus    *events.EventBus
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(config.ResolvePath(configPath))
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Storage.Path
	if dbPath == "" {
		dbPath = storage.DefaultPath()
	}
	database, err := storage.NewDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	authSvc := auth.NewService(nil, database, cfg.API.APIKey, logger)
	client := holidazeapi.NewClient(cfg.API.BaseURL, authSvc,
		holidazeapi.WithTimeout(cfg.APITimeout()),
		holidazeapi.WithRateLimit(cfg.API.RateLimitPerSecond, cfg.API.RateLimitBurst),
		holidazeapi.WithLogger(logger),
	)
	authSvc.SetAPI(client)

	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		client.UseRedisCache(rdb, cfg.CacheTTL())
	}

	bus := events.NewEventBus(logger)
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		n, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram notifications disabled")
		} else {
			n.Attach(bus)
		}
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		loc:    loc,
		db:     database,
		rdb:    rdb,
		client: client,
		auth:   authSvc,
		bus:    bus,
	}, nil
}

func (a *app) Close() {
	a.bus.Wait()
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	_ = a.db.Close()
}

func (a *app) today() time.Time {
	return time.Now().In(a.loc)
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		a          *app
	)

	root := &cobra.Command{
		Use:           "holidaze",
		Short:         "Browse Holidaze venues and book stays",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = newApp(configPath)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a != nil {
				a.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default $HOLIDAZE_CONFIG or "+config.DefaultPath+")")

	get := func() *app { return a }
	root.AddCommand(
		newLoginCmd(get),
		newRegisterCmd(get),
		newLogoutCmd(get),
		newVenuesCmd(get),
		newVenueCmd(get),
		newSearchCmd(get),
		newCalendarCmd(get),
		newBookCmd(get),
		newBookingsCmd(get),
		newMyVenuesCmd(get),
		newCancelCmd(get),
		newServeCmd(get),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
