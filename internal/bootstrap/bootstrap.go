package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"CastingCall/internal/hashing"
	"CastingCall/internal/models"
)

// DisplayName: имя первого администратора.
const DisplayName = "Site Administrator"

// ErrMissingCredentials: таблица администраторов пуста, а ADMIN_USERNAME
// или ADMIN_PASSWORD не заданы. Запускать сервер в таком состоянии нельзя.
var ErrMissingCredentials = errors.New("missing admin credentials: set ADMIN_USERNAME and ADMIN_PASSWORD")

// AdminRepo: часть хранилища, нужная для первичной настройки.
type AdminRepo interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, a *models.Admin) (int64, error)
}

// Credentials: данные первого администратора из окружения.
type Credentials struct {
	Username string
	Password string
}

// EnsureFirstAdmin создаёт первого администратора, если их ещё нет.
// Повторный вызов ничего не делает.
func EnsureFirstAdmin(ctx context.Context, admins AdminRepo, hasher *hashing.Hasher, creds Credentials, log *zap.Logger) (bool, error) {
	n, err := admins.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("bootstrap: count admins: %w", err)
	}
	if n > 0 {
		log.Debug("bootstrap: admins exist, skipping", zap.Int("count", n))
		return false, nil
	}

	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return false, ErrMissingCredentials
	}

	hash, err := hasher.Hash(creds.Password)
	if err != nil {
		return false, fmt.Errorf("bootstrap: %w", err)
	}
	admin := &models.Admin{
		Name:         DisplayName,
		Username:     username,
		PasswordHash: hash,
	}
	if _, err := admins.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("bootstrap: create admin: %w", err)
	}

	log.Info("bootstrap: first admin created", zap.Int64("admin_id", admin.ID), zap.String("username", username))
	return true, nil
}
