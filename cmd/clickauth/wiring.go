package main

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/clickauth/internal/config"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
	"github.com/dropDatabas3/clickauth/internal/observability/logger"
	"github.com/dropDatabas3/clickauth/internal/providers"
	"github.com/dropDatabas3/clickauth/internal/providers/discord"
	"github.com/dropDatabas3/clickauth/internal/providers/google"
	"github.com/dropDatabas3/clickauth/internal/relay"
	"github.com/dropDatabas3/clickauth/internal/store/fs"
	"github.com/dropDatabas3/clickauth/internal/store/memory"
	"github.com/dropDatabas3/clickauth/internal/store/pg"
	migrations "github.com/dropDatabas3/clickauth/migrations/postgres"
)

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.App.Version = version
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config inválida: %w", err)
	}
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "clickauth",
		Version:     version,
	})
	return cfg, nil
}

// storage agrupa el repositorio y, con postgres, el store concreto para
// health-check, métricas del pool y cierre.
type storage struct {
	repo repository.AccountRepository
	pg   *pg.Store
}

func (s storage) Close() {
	if s.pg != nil {
		s.pg.Close()
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (storage, error) {
	log := logger.L().With(logger.Component("storage"), logger.String("driver", cfg.Storage.Driver))

	switch cfg.Storage.Driver {
	case "memory":
		log.Warn("using in-memory storage, accounts are lost on restart")
		return storage{repo: memory.New()}, nil
	case "postgres":
		st, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{MaxConns: int(cfg.Storage.MaxConns)})
		if err != nil {
			return storage{}, err
		}
		if err := st.Migrate(ctx, migrations.AccountsFS, migrations.AccountsDir); err != nil {
			st.Close()
			return storage{}, fmt.Errorf("migrate: %w", err)
		}
		log.Info("storage ready")
		return storage{repo: st, pg: st}, nil
	default:
		st, err := fs.Open(cfg.Storage.FSPath)
		if err != nil {
			return storage{}, err
		}
		log.Info("storage ready", logger.String("path", st.Path()))
		return storage{repo: st}, nil
	}
}

func openRelay(cfg *config.Config) relay.Relay {
	if cfg.Relay.Driver == "redis" {
		rc := cfg.Relay.Redis
		return relay.NewRedis(relay.RedisConfig{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
			Prefix:   rc.Prefix,
		}, cfg.Relay.TTL)
	}
	return relay.NewMemory(cfg.Relay.TTL)
}

// buildProviders registra solo los proveedores con client_id configurado.
func buildProviders(cfg *config.Config) *providers.Registry {
	reg := providers.NewRegistry()
	if d := cfg.Providers.Discord; d.Enabled() {
		reg.Register(discord.New(providers.Config{ClientID: d.ClientID, ClientSecret: d.ClientSecret, RedirectURL: d.RedirectURL}))
	}
	if g := cfg.Providers.Google; g.Enabled() {
		reg.Register(google.New(providers.Config{ClientID: g.ClientID, ClientSecret: g.ClientSecret, RedirectURL: g.RedirectURL}))
	}
	if len(reg.Names()) == 0 {
		logger.L().Warn("no oauth providers configured, only email/password login is available")
	}
	return reg
}
