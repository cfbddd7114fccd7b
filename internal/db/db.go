package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Config: параметры подключения.
type Config struct {
	// URL: postgres://… для Postgres; sqlite:<path>, file:<path> или :memory: для SQLite.
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// Store: доступ к БД приложения.
type Store struct {
	db      *sqlx.DB
	dialect string
	log     *zap.Logger
}

// Open подключается к БД, проверяет соединение и накатывает миграции.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (*Store, error) {
	driver, dsn, dialect, err := resolveDSN(cfg.URL)
	if err != nil {
		return nil, err
	}

	d, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}

	if driver == "sqlite" {
		// одна запись за раз; :memory: живёт ровно в одном соединении
		d.SetMaxOpenConns(1)
		d.SetMaxIdleConns(1)
		d.SetConnMaxLifetime(0)
		d.SetConnMaxIdleTime(0)
	} else {
		if cfg.MaxOpenConns > 0 {
			d.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			d.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		d.SetConnMaxLifetime(30 * time.Minute)
		d.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.PingContext(pingCtx); err != nil {
		d.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}

	s := &Store{db: d, dialect: dialect, log: log}
	if err := s.Migrate(ctx); err != nil {
		d.Close()
		return nil, err
	}

	log.Info("db: connected",
		zap.String("driver", driver),
		zap.String("target", SafeURL(cfg.URL)),
	)
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping: для /healthz.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func resolveDSN(raw string) (driver, dsn, dialect string, err error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return "postgres", raw, "postgres", nil
	case raw == ":memory:", raw == "sqlite::memory:":
		return "sqlite", ":memory:", "sqlite3", nil
	case strings.HasPrefix(raw, "sqlite:"):
		path := strings.TrimPrefix(raw, "sqlite:")
		path = strings.TrimPrefix(path, "//")
		if path == "" {
			return "", "", "", fmt.Errorf("db: empty sqlite path in %q", raw)
		}
		return "sqlite", path + "?_pragma=busy_timeout(5000)", "sqlite3", nil
	case strings.HasPrefix(raw, "file:"):
		return "sqlite", raw, "sqlite3", nil
	}
	return "", "", "", fmt.Errorf("db: unsupported DATABASE_URL scheme in %q", SafeURL(raw))
}

// SafeURL убирает пароль из строки подключения перед логированием.
func SafeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
