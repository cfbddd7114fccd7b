package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"CastingCall/internal/config"
	"CastingCall/internal/db"
	"CastingCall/internal/logger"
)

// env нужен любой команде (конфиг, логгер, открытая БД).
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	store *db.Store
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := db.Open(ctx, db.Config{
		URL:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	}, log.Named("db"))
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &env{cfg: cfg, log: log, store: store}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("close db", zap.Error(err))
	}
	_ = e.log.Sync()
}
