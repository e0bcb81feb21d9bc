// Package pg implementa AccountRepository sobre PostgreSQL (pgxpool).
//
// La cuenta completa vive en data (JSONB); discord_id, google_id y email se
// duplican en columnas con UNIQUE para que la base garantice una cuenta por
// identidad.
package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
	"github.com/dropDatabas3/clickauth/internal/observability/logger"
)

const uniqueViolation = "23505"

type Store struct{ pool *pgxpool.Pool }

var _ repository.AccountRepository = (*Store)(nil)

// Config ajusta el pool.
type Config struct {
	MaxConns        int
	ConnMaxLifetime time.Duration
}

func New(ctx context.Context, dsn string, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg store: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
		pcfg.MaxConnIdleTime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg store: connect: %w", err)
	}

	// Arranque no bloqueante: si la base no responde todavía solo se loguea.
	log := logger.From(ctx).With(logger.Component("store.pg"))
	if err := pool.Ping(ctx); err != nil {
		log.Warn("pg_pool_startup_ping_failed", logger.Err(err))
	} else {
		log.Info("pg_pool_ready", logger.Int("max_conns", int(pcfg.MaxConns)))
	}
	return &Store{pool: pool}, nil
}

// Close cierra el pool (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Pool expone el pool para métricas.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Migrate aplica en orden los *_up.sql de dir dentro de fsys.
func (s *Store) Migrate(ctx context.Context, fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("pg store: read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), "_up.sql") {
			files = append(files, dir+"/"+e.Name())
		}
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := fs.ReadFile(fsys, f)
		if err != nil {
			return err
		}
		if _, err := s.pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*account.Account, error) {
	return s.queryOne(ctx, `SELECT data FROM accounts WHERE id = $1`, id)
}

func (s *Store) FindByProviderID(ctx context.Context, provider, providerUserID string) (*account.Account, error) {
	var col string
	switch provider {
	case account.PlatformDiscord:
		col = "discord_id"
	case account.PlatformGoogle:
		col = "google_id"
	default:
		return nil, repository.ErrNotFound
	}
	if providerUserID == "" {
		return nil, repository.ErrNotFound
	}
	return s.queryOne(ctx, `SELECT data FROM accounts WHERE `+col+` = $1`, providerUserID)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	email = account.NormalizeEmail(email)
	if email == "" {
		return nil, repository.ErrNotFound
	}
	return s.queryOne(ctx, `SELECT data FROM accounts WHERE email = $1`, email)
}

func (s *Store) queryOne(ctx context.Context, q string, arg any) (*account.Account, error) {
	var raw []byte
	if err := s.pool.QueryRow(ctx, q, arg).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return decode(raw)
}

func (s *Store) Save(ctx context.Context, a *account.Account) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("pg store: encode: %w", err)
	}
	var email *string
	if a.Credentials.Standard != nil {
		email = nullable(a.Credentials.Standard.Email)
	}
	const q = `
INSERT INTO accounts (id, discord_id, google_id, email, data, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    discord_id = EXCLUDED.discord_id,
    google_id  = EXCLUDED.google_id,
    email      = EXCLUDED.email,
    data       = EXCLUDED.data,
    updated_at = EXCLUDED.updated_at`
	_, err = s.pool.Exec(ctx, q,
		a.ID,
		nullable(a.PlatformID(account.PlatformDiscord)),
		nullable(a.PlatformID(account.PlatformGoogle)),
		email,
		raw,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.ConstraintName)
		}
		return err
	}
	a.ResetChanged()
	return nil
}

func (s *Store) ListAll(ctx context.Context) ([]*account.Account, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM accounts ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*account.Account
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		a, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DeleteAll(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM accounts`)
	return err
}

func decode(raw []byte) (*account.Account, error) {
	var a account.Account
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("pg store: decode: %w", err)
	}
	return &a, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
