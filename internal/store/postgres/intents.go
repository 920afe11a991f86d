package postgres

import (
	"context"
	"database/sql"
	"errors"

	"clinicpay/internal/domain/payment"
	"clinicpay/internal/store/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// intentStore implements repositories.IntentStore on pgx.
type intentStore struct {
	db *pgxpool.Pool
}

func NewIntentStore(db *pgxpool.Pool) repositories.IntentStore {
	return &intentStore{db: db}
}

func (s *intentStore) FindByOrderCode(ctx context.Context, orderCode string) (*payment.Intent, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, order_code, amount, status, transaction_id, description, created_at, updated_at
		  FROM payments
		 WHERE order_code = $1`, orderCode)

	return scanIntent(row)
}

func (s *intentStore) Create(ctx context.Context, i *payment.Intent) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO payments (id, order_code, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		i.ID, i.OrderCode, i.Amount, string(i.Status), i.CreatedAt, i.UpdatedAt,
	)
	return err
}

// MarkPaid is the single-writer-wins settlement transition. The status guard
// lives in the WHERE clause so concurrent webhook and polling deliveries can
// never overwrite an already-paid row.
func (s *intentStore) MarkPaid(ctx context.Context, orderCode, transactionID, description string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE payments
		   SET status         = $2,
		       transaction_id = $3,
		       description    = NULLIF($4, ''),
		       updated_at     = now()
		 WHERE order_code = $1 AND status <> $2`,
		orderCode, string(payment.StatusPaid), transactionID, description,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *intentStore) ListPending(ctx context.Context, limit int) ([]*payment.Intent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_code, amount, status, transaction_id, description, created_at, updated_at
		  FROM payments
		 WHERE status = $1
		 ORDER BY created_at
		 LIMIT $2`, string(payment.StatusPending), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*payment.Intent
	for rows.Next() {
		i, err := scanIntent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func scanIntent(row pgx.Row) (*payment.Intent, error) {
	var i payment.Intent
	var txID, desc sql.NullString

	err := row.Scan(&i.ID, &i.OrderCode, &i.Amount, &i.Status, &txID, &desc, &i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if txID.Valid {
		i.TransactionID = &txID.String
	}
	if desc.Valid {
		i.Description = &desc.String
	}
	return &i, nil
}
