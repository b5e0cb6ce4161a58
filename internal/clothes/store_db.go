package clothes

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS clothes (
		id    BIGSERIAL PRIMARY KEY,
		name  TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL
	)
`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return pgErr("create schema", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return pgErr("ping", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, it Item) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO clothes (name, price)
		VALUES ($1, $2)
	`, it.Name, it.Price)
	if err != nil {
		return pgErr("insert item", err)
	}
	return nil
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, price
		FROM clothes
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, pgErr("find items", err)
	}
	defer rows.Close()

	out := make([]Item, 0, 16)
	for rows.Next() {
		var (
			id int64
			it Item
		)
		if err := rows.Scan(&id, &it.Name, &it.Price); err != nil {
			return nil, pgErr("scan item", err)
		}
		it.ID = strconv.FormatInt(id, 10)
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr("find items", err)
	}
	return out, nil
}

// The subselect picks the oldest row so that duplicates behave like a
// single-document update.
func (s *PostgresStore) UpdatePriceByName(ctx context.Context, name string, price float64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE clothes SET price = $2
		WHERE id = (SELECT id FROM clothes WHERE name = $1 ORDER BY id ASC LIMIT 1)
	`, name, price)
	if err != nil {
		return false, pgErr("update item", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) DeleteByName(ctx context.Context, name string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM clothes
		WHERE id = (SELECT id FROM clothes WHERE name = $1 ORDER BY id ASC LIMIT 1)
	`, name)
	if err != nil {
		return false, pgErr("delete item", err)
	}
	return tag.RowsAffected() > 0, nil
}

func pgErr(op string, err error) error {
	var ce *pgconn.ConnectError
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || errors.As(err, &ce) {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
