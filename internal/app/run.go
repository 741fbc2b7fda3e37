package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pkg/browser"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"cockpit-server/internal/config"
	db "cockpit-server/internal/db"
	httpapi "cockpit-server/internal/httpapi"
	"cockpit-server/internal/maxn1"
	"cockpit-server/internal/migrate"
	pax "cockpit-server/internal/modules/pax"
	paxviews "cockpit-server/internal/modules/pax/views"
	perf "cockpit-server/internal/modules/perf"
	"cockpit-server/internal/modules/perf/pressure"
	perfviews "cockpit-server/internal/modules/perf/views"
	"cockpit-server/internal/mqtt"
	"cockpit-server/internal/perfapi"
)

var openBrowser = browser.OpenURL

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"perfServiceURL", cfg.PerfServiceURL,
		"perfServiceTimeout", cfg.PerfServiceTimeout,
		"maxN1URL", cfg.MaxN1WSURL,
		"maxN1Reconnect", cfg.MaxN1Reconnect,
		"pressureHPaStrict", cfg.PressureHPaStrict,
		"dbDriver", cfg.Driver,
		"sqlitePath", cfg.Path,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopicPrefix", cfg.MQTTTopicPrefix,
		"rateLimitRPS", cfg.RateLimitRPS,
		"rateLimitBurst", cfg.RateLimitBurst,
	)
	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(ctx, dbConn); err != nil {
		return err
	}
	slog.Info("database ready")

	if err := perfviews.LoadTemplates(); err != nil {
		return err
	}
	if err := paxviews.LoadTemplates(); err != nil {
		return err
	}

	logger := slog.Default()
	publisher := mqtt.NewPublisher(cfg, logger.With("component", "mqtt"))
	subscriber := maxn1.NewSubscriber(cfg.MaxN1WSURL, cfg.MaxN1Reconnect, logger.With("component", "maxn1"))
	subscriber.SetUpdateHandler(publisher.PublishMaxN1)
	api := perfapi.NewClient(cfg.PerfServiceURL, cfg.PerfServiceTimeout, logger.With("component", "perfapi"))
	limiter := httpapi.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	mux := httpapi.NewMux(dbConn, cfg.StaticDir, subscriber, publisher)
	board := perf.RegisterFeature(mux, dbConn, api, publisher, subscriber,
		pressure.New(cfg.PressureHPaStrict), limiter.LimitMiddleware)
	defer board.Close()
	pax.RegisterFeature(mux, cfg.StaticDir)

	// Short timeout so a missing broker does not block startup.
	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	err = publisher.Connect(connectCtx)
	connectCancel()
	if err != nil {
		slog.Warn("mqtt connection failed (continuing without events)", "error", err)
	}

	srv := httpapi.NewServer(cfg, mux)
	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		publisher.Disconnect()
		return fmt.Errorf("listen %s: %w", cfg.HTTPAddr, err)
	}
	consoleURL := browserURL(ln.Addr())
	slog.Info("http listening", "addr", ln.Addr().String(), "url", consoleURL)

	if cfg.OpenBrowser {
		if err := openBrowser(consoleURL); err != nil {
			slog.Warn("open browser failed", "url", consoleURL, "error", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return subscriber.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		slog.Info("mqtt disconnecting")
		publisher.Disconnect()

		slog.Info("http shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// browserURL turns the listener address into a URL a local browser can open.
func browserURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String() + "/perf"
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/perf"
}
