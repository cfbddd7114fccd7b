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

// ContactStore: заявки с формы прослушивания.
type ContactStore struct {
	*Store
}

func (s *Store) Contacts() *ContactStore {
	return &ContactStore{Store: s}
}

const contactColumns = `id, name, email, message, category, dob, created_at`

// Create сохраняет заявку и заполняет c.ID и c.CreatedAt.
func (cs *ContactStore) Create(ctx context.Context, c *models.Contact) (int64, error) {
	if !c.Category.Valid() {
		return 0, &ConstraintError{Field: "category", Err: fmt.Errorf("unknown category %q", c.Category)}
	}
	createdAt := time.Now().UTC()
	dob := time.Date(c.DateOfBirth.Year(), c.DateOfBirth.Month(), c.DateOfBirth.Day(), 0, 0, 0, 0, time.UTC)

	var id int64
	err := cs.Tx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`INSERT INTO contacts (name, email, message, category, dob, created_at)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
		return tx.QueryRowxContext(ctx, q,
			c.Name, c.Email, c.Message, string(c.Category), dob, createdAt,
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("insert contact: %w", err)
	}

	c.ID = id
	c.DateOfBirth = dob
	c.CreatedAt = createdAt
	return id, nil
}

// List: все заявки, новые сверху.
func (cs *ContactStore) List(ctx context.Context) ([]models.Contact, error) {
	list := make([]models.Contact, 0, 64)
	q := `SELECT ` + contactColumns + ` FROM contacts ORDER BY created_at DESC, id DESC`
	if err := cs.db.SelectContext(ctx, &list, q); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return list, nil
}

func (cs *ContactStore) Get(ctx context.Context, id int64) (*models.Contact, error) {
	var c models.Contact
	q := cs.db.Rebind(`SELECT ` + contactColumns + ` FROM contacts WHERE id = ?`)
	if err := cs.db.GetContext(ctx, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return &c, nil
}

func (cs *ContactStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := cs.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM contacts`); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}
