package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"CastingCall/internal/models"
)

// AdminStore: учётные записи администраторов.
type AdminStore struct {
	*Store
}

func (s *Store) Admins() *AdminStore {
	return &AdminStore{Store: s}
}

const adminColumns = `id, name, username, password_hash, created_at`

// Create добавляет администратора. Занятый логин: *ConstraintError
// с ErrDuplicateUsername внутри; в таблицу при этом ничего не пишется.
func (as *AdminStore) Create(ctx context.Context, a *models.Admin) (int64, error) {
	createdAt := time.Now().UTC()

	var id int64
	err := as.Tx(ctx, func(tx *sqlx.Tx) error {
		var taken int
		q := tx.Rebind(`SELECT COUNT(*) FROM admins WHERE username = ?`)
		if err := tx.GetContext(ctx, &taken, q, a.Username); err != nil {
			return err
		}
		if taken > 0 {
			return &ConstraintError{Field: "username", Err: ErrDuplicateUsername}
		}

		q = tx.Rebind(`INSERT INTO admins (name, username, password_hash, created_at)
			VALUES (?, ?, ?, ?) RETURNING id`)
		err := tx.QueryRowxContext(ctx, q, a.Name, a.Username, a.PasswordHash, createdAt).Scan(&id)
		if isUniqueViolation(err) {
			// параллельная вставка успела раньше
			return &ConstraintError{Field: "username", Err: ErrDuplicateUsername}
		}
		return err
	})
	if err != nil {
		var ce *ConstraintError
		if errors.As(err, &ce) {
			return 0, ce
		}
		return 0, fmt.Errorf("insert admin: %w", err)
	}

	a.ID = id
	a.CreatedAt = createdAt
	return id, nil
}

func (as *AdminStore) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var a models.Admin
	q := as.db.Rebind(`SELECT ` + adminColumns + ` FROM admins WHERE username = ?`)
	if err := as.db.GetContext(ctx, &a, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find admin by username: %w", err)
	}
	return &a, nil
}

func (as *AdminStore) FindByID(ctx context.Context, id int64) (*models.Admin, error) {
	var a models.Admin
	q := as.db.Rebind(`SELECT ` + adminColumns + ` FROM admins WHERE id = ?`)
	if err := as.db.GetContext(ctx, &a, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return &a, nil
}

func (as *AdminStore) List(ctx context.Context) ([]models.Admin, error) {
	list := make([]models.Admin, 0, 8)
	if err := as.db.SelectContext(ctx, &list, `SELECT `+adminColumns+` FROM admins ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return list, nil
}

func (as *AdminStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := as.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM admins`); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

// Delete удаляет администратора по id. Запрет на удаление самого себя
// проверяется выше, в auth.
func (as *AdminStore) Delete(ctx context.Context, id int64) error {
	return as.Tx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM admins WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete admin: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete admin: rows affected: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
