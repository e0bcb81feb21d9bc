package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/clickauth/internal/auth/session"
	"github.com/dropDatabas3/clickauth/internal/auth/standard"
	"github.com/dropDatabas3/clickauth/internal/game"
	httpserver "github.com/dropDatabas3/clickauth/internal/http"
	"github.com/dropDatabas3/clickauth/internal/http/controllers"
	"github.com/dropDatabas3/clickauth/internal/http/controllers/auth"
	"github.com/dropDatabas3/clickauth/internal/http/controllers/health"
	"github.com/dropDatabas3/clickauth/internal/http/controllers/social"
	"github.com/dropDatabas3/clickauth/internal/http/helpers"
	mw "github.com/dropDatabas3/clickauth/internal/http/middlewares"
	"github.com/dropDatabas3/clickauth/internal/http/router"
	jwtx "github.com/dropDatabas3/clickauth/internal/jwt"
	"github.com/dropDatabas3/clickauth/internal/login"
	"github.com/dropDatabas3/clickauth/internal/observability/logger"
	"github.com/dropDatabas3/clickauth/internal/relay"
	"github.com/dropDatabas3/clickauth/internal/security/state"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *configPath)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.L()
	ctx = logger.ToContext(ctx, log)

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	rel := openRelay(cfg)
	checks := map[string]health.Checker{}
	if store.pg != nil {
		checks["postgres"] = store.pg
	}
	if rr, ok := rel.(*relay.Redis); ok {
		checks["redis"] = rr
		defer rr.Close()
	}

	signer, err := state.NewSigner(cfg.Auth.StateSecret)
	if err != nil {
		return err
	}
	issuer, err := jwtx.NewIssuer(cfg.Auth.Issuer, cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	if err != nil {
		return err
	}

	metricsCfg := httpserver.MetricsConfig{Registry: prometheus.DefaultRegisterer}
	if store.pg != nil {
		metricsCfg.Pool = func() *pgxpool.Pool { return store.pg.Pool() }
	}
	metricsHandler, err := httpserver.RegisterMetrics(metricsCfg)
	if err != nil {
		return err
	}
	domainMetrics := httpserver.DomainMetrics{}

	orc := login.New(login.Deps{
		Repo:      store.repo,
		Providers: buildProviders(cfg),
		Signer:    signer,
		Issuer:    issuer,
		Relay:     rel,
		Recorder:  domainMetrics,
	})
	sess := session.NewService(session.Deps{Repo: store.repo, Issuer: issuer})
	cookies := helpers.CookieConfig{
		Secure:     cfg.Auth.CookieSecure,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}

	ctrls := controllers.New(controllers.Deps{
		Social: social.Deps{Login: orc, Repo: store.repo, Cookies: cookies},
		Auth: auth.Deps{
			Standard: standard.NewService(standard.Deps{Repo: store.repo, Issuer: issuer}),
			Session:  sess,
			Cookies:  cookies,
		},
		Game:   game.NewService(store.repo),
		Checks: checks,
	})

	proxies, err := mw.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}
	loginLimiter := mw.NewRateLimiter("login", cfg.Rate.LoginPerMinute).TrustProxies(proxies)
	claimLimiter := mw.NewRateLimiter("claim", cfg.Rate.ClaimPerMinute).TrustProxies(proxies)
	handler := router.New(router.Deps{
		Controllers:        ctrls,
		Auth:               sess,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		LoginLimiter:       loginLimiter,
		ClaimLimiter:       claimLimiter,
		Instrument:         httpserver.WithMetrics,
		Metrics:            metricsHandler,
	})

	log.Info("clickauth starting",
		logger.String("addr", cfg.Server.Addr),
		logger.String("storage", cfg.Storage.Driver),
		logger.String("relay", cfg.Relay.Driver),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Serve(gctx, httpserver.ServerConfig{
			Addr:         cfg.Server.Addr,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}, handler)
	})
	g.Go(func() error {
		return relay.Sweep(gctx, rel, cfg.Relay.SweepInterval, domainMetrics.RelayEntries)
	})
	g.Go(func() error { return loginLimiter.Run(gctx, time.Minute) })
	g.Go(func() error { return claimLimiter.Run(gctx, time.Minute) })

	err = g.Wait()
	log.Info("clickauth stopped")
	return err
}
