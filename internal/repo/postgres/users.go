package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/cohorthub/internal/domain/user"
	"github.com/geocoder89/cohorthub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UsersRepo struct {
	db   DBTX
	prom *observability.Prom
}

func NewUsersRepo(db DBTX, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{db: db, prom: prom}
}

const userColumns = `id, email, password_hash, name, created_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.CreatedAt,
	)

	return u, err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_email", func() (err error) {
		u, err = scanUser(r.db.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			email,
		))
		return
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	// a malformed id cannot name a row; skip the round trip and the 22P02 error
	if uuid.Validate(id) != nil {
		return user.User{}, user.ErrNotFound
	}

	var u user.User

	err := r.prom.ObserveDB("users.get_by_id", func() (err error) {
		u, err = scanUser(r.db.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		))
		return
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	out := make([]user.User, 0)

	err := r.prom.ObserveDB("users.list", func() error {
		rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return out, nil
}

// Create inserts the user only if the email is free, in one statement.
// A concurrent signup that loses the race gets ErrEmailTaken from either the
// ON CONFLICT branch or the unique index.
func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.create", func() (err error) {
		u, err = scanUser(r.db.QueryRow(ctx,
			`INSERT INTO users (id, email, password_hash, name, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO NOTHING
			RETURNING `+userColumns,
			uuid.NewString(), email, passwordHash, name, time.Now().UTC(),
		))
		return
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrEmailTaken
		}

		if _, ok := uniqueViolation(err); ok {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}
