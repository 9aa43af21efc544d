package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/sitebot/internal/shop"
)

// pgRow mirrors the transactions table created by Migrations.
type pgRow struct {
	ID          string    `db:"id"`
	BuyerID     int64     `db:"buyer_id"`
	BuyerName   string    `db:"buyer_name"`
	Product     string    `db:"product"`
	ProofURL    string    `db:"proof_url"`
	ProofFileID string    `db:"proof_file_id"`
	Status      string    `db:"status"`
	SiteName    string    `db:"site_name"`
	DeployURL   string    `db:"deploy_url"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r pgRow) transaction() shop.Transaction {
	return shop.Transaction{
		ID:          r.ID,
		BuyerID:     r.BuyerID,
		BuyerName:   r.BuyerName,
		Product:     r.Product,
		ProofURL:    r.ProofURL,
		ProofFileID: r.ProofFileID,
		Status:      shop.Status(r.Status),
		SiteName:    r.SiteName,
		DeployURL:   r.DeployURL,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

const pgColumns = `id, buyer_id, buyer_name, product, proof_url, proof_file_id,
status, site_name, deploy_url, created_at, updated_at`

const (
	pgInsert = `INSERT INTO transactions (` + pgColumns + `)
VALUES (:id, :buyer_id, :buyer_name, :product, :proof_url, :proof_file_id,
:status, :site_name, :deploy_url, :created_at, :updated_at)`

	pgUpdate = `UPDATE transactions SET
buyer_id = :buyer_id, buyer_name = :buyer_name, product = :product,
proof_url = :proof_url, proof_file_id = :proof_file_id, status = :status,
site_name = :site_name, deploy_url = :deploy_url, updated_at = :updated_at
WHERE id = :id`

	pgResolve = `UPDATE transactions SET status = $2, updated_at = $3
WHERE seq = (
    SELECT seq FROM transactions
    WHERE buyer_id = $1 AND status = 'waiting'
    ORDER BY seq
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING ` + pgColumns
)

// pgUniqueViolation is the SQLSTATE of a unique index conflict.
const pgUniqueViolation = "23505"

// PostgresStore keeps transactions in PostgreSQL through sqlx.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgres wraps a pool opened by core/database. The schema must
// already be migrated from Migrations.
func NewPostgres(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]shop.Transaction, error) {
	var rows []pgRow
	err := s.db.SelectContext(ctx, &rows, `SELECT `+pgColumns+` FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}
	return pgTransactions(rows), nil
}

func (s *PostgresStore) ListByBuyer(ctx context.Context, buyerID int64) ([]shop.Transaction, error) {
	var rows []pgRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+pgColumns+` FROM transactions WHERE buyer_id = $1 ORDER BY seq`, buyerID)
	if err != nil {
		return nil, errors.Wrap(err, "list buyer transactions")
	}
	return pgTransactions(rows), nil
}

func (s *PostgresStore) Append(ctx context.Context, tx shop.Transaction) error {
	_, err := s.db.NamedExecContext(ctx, pgInsert, pgRowFrom(tx))
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return errors.Wrapf(shop.ErrAlreadyPending, "buyer %d", tx.BuyerID)
	}
	return errors.Wrap(err, "insert transaction")
}

func (s *PostgresStore) FindWaitingByBuyer(ctx context.Context, buyerID int64) (*shop.Transaction, error) {
	var row pgRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+pgColumns+` FROM transactions WHERE buyer_id = $1 AND status = 'waiting' ORDER BY seq LIMIT 1`, buyerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find waiting transaction")
	}
	tx := row.transaction()
	return &tx, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*shop.Transaction, error) {
	var row pgRow
	err := s.db.GetContext(ctx, &row, `SELECT `+pgColumns+` FROM transactions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(shop.ErrNotFound, "id %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get transaction")
	}
	tx := row.transaction()
	return &tx, nil
}

func (s *PostgresStore) Update(ctx context.Context, tx shop.Transaction) error {
	res, err := s.db.NamedExecContext(ctx, pgUpdate, pgRowFrom(tx))
	if err != nil {
		return errors.Wrap(err, "update transaction")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(shop.ErrNotFound, "id %s", tx.ID)
	}
	return nil
}

func (s *PostgresStore) ResolveWaiting(ctx context.Context, buyerID int64, status shop.Status, at time.Time) (*shop.Transaction, error) {
	var row pgRow
	err := s.db.GetContext(ctx, &row, pgResolve, buyerID, string(status), at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(shop.ErrNotFound, "waiting for buyer %d", buyerID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "resolve waiting transaction")
	}
	tx := row.transaction()
	return &tx, nil
}

func pgRowFrom(tx shop.Transaction) pgRow {
	return pgRow{
		ID:          tx.ID,
		BuyerID:     tx.BuyerID,
		BuyerName:   tx.BuyerName,
		Product:     tx.Product,
		ProofURL:    tx.ProofURL,
		ProofFileID: tx.ProofFileID,
		Status:      string(tx.Status),
		SiteName:    tx.SiteName,
		DeployURL:   tx.DeployURL,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func pgTransactions(rows []pgRow) []shop.Transaction {
	if len(rows) == 0 {
		return nil
	}
	out := make([]shop.Transaction, len(rows))
	for i, r := range rows {
		out[i] = r.transaction()
	}
	return out
}
