package db

import (
	"context"
	"embed"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
)

//go:embed sql
var migrations embed.FS

// Migrate накатывает миграции для текущего диалекта.
func (s *Store) Migrate(ctx context.Context) error {
	root := "sql/postgres"
	if s.dialect == "sqlite3" {
		root = "sql/sqlite"
	}
	src := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrations,
		Root:       root,
	}

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := migrate.Exec(s.db.DB, s.dialect, src, migrate.Up)
		done <- result{n: n, err: err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("db: migrations interrupted: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return fmt.Errorf("db: migrations failed: %w", res.err)
		}
		if res.n > 0 {
			s.log.Info("db: applied migrations", zap.Int("count", res.n))
		}
		return nil
	}
}
