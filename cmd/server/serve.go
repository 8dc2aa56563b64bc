package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AurifyAE/Honor-TV-View/internal/api"
	"github.com/AurifyAE/Honor-TV-View/internal/config"
	"github.com/AurifyAE/Honor-TV-View/internal/db"
	"github.com/AurifyAE/Honor-TV-View/internal/display"
	"github.com/AurifyAE/Honor-TV-View/internal/external"
	"github.com/AurifyAE/Honor-TV-View/internal/feed"
	"github.com/AurifyAE/Honor-TV-View/internal/httputil"
	"github.com/AurifyAE/Honor-TV-View/internal/logging"
	"github.com/AurifyAE/Honor-TV-View/internal/notifications"
	"github.com/AurifyAE/Honor-TV-View/internal/pipeline"
	"github.com/AurifyAE/Honor-TV-View/internal/pricing"
	"github.com/AurifyAE/Honor-TV-View/internal/repository"
	"github.com/AurifyAE/Honor-TV-View/internal/spotrate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the feed, the rate board and the REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.Print()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var admin *external.AdminClient
	if cfg.ConfigSource != config.SourceFile {
		admin = external.NewAdminClient(cfg.AdminAPIURL)
	}

	// Database (db config source only)
	var pool *pgxpool.Pool
	if cfg.ConfigSource == config.SourceDB {
		logging.For("db").Infof("connecting to %s:%d/%s ...", cfg.DBHost, cfg.DBPort, cfg.DBName)
		pool, err = db.Connect(ctx, cfg.DSN())
		if err != nil {
			return fmt.Errorf("db connection failed: %w", err)
		}
		defer func() {
			pool.Close()
			logging.For("db").Info("connection pool closed")
		}()
	}

	source, err := spotRateSource(ctx, cfg, admin, pool)
	if err != nil {
		return err
	}
	rates, err := source.Load(ctx, cfg.AdminID)
	if err != nil {
		return fmt.Errorf("load spot rates: %w", err)
	}
	log.Infof("loaded %d commodities for %s", len(rates.Commodities), rates.AdminID)

	feedURL := cfg.FeedURL
	if feedURL == "" {
		if feedURL, err = admin.FetchServerURL(ctx); err != nil {
			return fmt.Errorf("server discovery: %w", err)
		}
		logging.For("feed").Infof("discovered quote server %s", feedURL)
	}

	if cfg.CurrencyAPIURL != "" {
		logReferenceRate(ctx, cfg)
	}

	// Notifications
	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName)
	alerts := notifications.NewConnectionAlerts(notify)
	go alerts.Run(ctx)

	client := feed.NewClient(feed.Options{
		URL:         feedURL,
		Secret:      cfg.SocketSecret,
		Symbols:     cfg.Symbols,
		Backoff:     httputil.Backoff{Base: cfg.ReconnectBase, Max: cfg.ReconnectMax},
		ReadTimeout: cfg.ReadTimeout,
		TickBuffer:  cfg.TickBuffer,
		OnStateChange: func(_, to feed.State) {
			alerts.Observe(to == feed.Connected)
		},
	})

	opts := pipeline.Options{
		Feed:     client,
		Engine:   pricing.NewEngine(cfg.CurrencyPeg),
		Rates:    rates,
		Symbols:  cfg.Symbols,
		Interval: cfg.RefreshInterval,
	}
	if cfg.BoardEnabled {
		board := display.NewBoard(os.Stdout, strings.ToUpper(cfg.BotName), cfg.CurrencyCode)
		board.Clear = cfg.BoardClear
		opts.OnFrame = board.Draw
	}
	svc := pipeline.NewService(opts)

	if admin != nil {
		checkScreenAccess(ctx, admin, cfg.AdminID, svc, notify)
	}

	// 1. API server
	srv := api.NewServer(svc, pool, cfg.APIPort, cfg.APIKey, cfg.CORSAllowOrigin)
	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	// 2. Feed, store and refresh cadence
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("pipeline start failed: %w", err)
	}

	log.Info("all services started successfully")

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-srvErr:
		runErr = fmt.Errorf("api server error: %w", runErr)
	}
	log.Info("shutting down gracefully...")

	svc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.For("api").WithError(err).Error("shutdown error")
	}
	log.Info("shutdown complete")
	return runErr
}

func spotRateSource(ctx context.Context, cfg *config.Config, admin *external.AdminClient, pool *pgxpool.Pool) (spotrate.Source, error) {
	switch cfg.ConfigSource {
	case config.SourceFile:
		return spotrate.NewFileSource(cfg.CommoditiesFile), nil
	case config.SourceDB:
		repo := repository.NewSpotRateRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return admin, nil
	}
}

// logReferenceRate compares the configured peg with a live reference rate.
// The peg is always what prices use.
func logReferenceRate(ctx context.Context, cfg *config.Config) {
	rate, err := external.NewCurrencyClient(cfg.CurrencyAPIURL).FetchRate(ctx, "QAR")
	entry := logging.For("currency")
	if err != nil {
		entry.WithError(err).Warn("reference rate unavailable")
		return
	}
	entry.Infof("reference QAR rate %.4f, configured peg %.4f", rate, cfg.CurrencyPeg)
}

func checkScreenAccess(ctx context.Context, admin *external.AdminClient, adminID string, svc *pipeline.Service, notify *notifications.Sender) {
	err := admin.CheckScreenAccess(ctx, adminID)
	switch {
	case errors.Is(err, external.ErrLimitExceeded):
		svc.SetLimitExceeded(true)
		_ = notify.Send(ctx, "screen limit exceeded for "+adminID)
	case err != nil:
		log.WithError(err).Warn("screen access check failed, continuing")
	}
}
