package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/m3rciful/sitebot/core/logger"
	"github.com/m3rciful/sitebot/internal/shop"
)

// txRow is the SQLite shape of a transaction. Seq preserves insertion order.
type txRow struct {
	Seq         uint      `gorm:"primaryKey;autoIncrement"`
	TxID        string    `gorm:"column:tx_id;uniqueIndex;not null"`
	BuyerID     int64     `gorm:"index;not null"`
	BuyerName   string    `gorm:"type:text"`
	Product     string    `gorm:"type:text;not null"`
	ProofURL    string    `gorm:"type:text"`
	ProofFileID string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(16);index;not null"`
	SiteName    string    `gorm:"type:varchar(32)"`
	DeployURL   string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (txRow) TableName() string {
	return "transactions"
}

func rowFrom(tx shop.Transaction) txRow {
	return txRow{
		TxID:        tx.ID,
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

func (r txRow) transaction() shop.Transaction {
	return shop.Transaction{
		ID:          r.TxID,
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

func transactions(rows []txRow) []shop.Transaction {
	if len(rows) == 0 {
		return nil
	}
	out := make([]shop.Transaction, len(rows))
	for i, r := range rows {
		out[i] = r.transaction()
	}
	return out
}

// SQLiteStore keeps transactions in an embedded SQLite database via GORM.
type SQLiteStore struct {
	db *gorm.DB
}

const oneWaitingIndex = `CREATE UNIQUE INDEX IF NOT EXISTS transactions_one_waiting_idx
ON transactions (buyer_id) WHERE status = 'waiting'`

// NewSQLite opens (creating if needed) the database at path and migrates
// the schema.
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create sqlite dir")
		}
	}
	start := time.Now()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		logger.Error(ctx, "store", "db.connect",
			slog.String("status", "fail"),
			slog.String("driver", DriverSQLite),
			slog.String("path", path),
			logger.Err(err),
		)
		return nil, errors.Wrap(err, "open sqlite")
	}
	if err := db.WithContext(ctx).AutoMigrate(&txRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate sqlite")
	}
	if err := db.WithContext(ctx).Exec(oneWaitingIndex).Error; err != nil {
		return nil, errors.Wrap(err, "create waiting index")
	}
	logger.Info(ctx, "store", "db.connect",
		slog.String("status", "ok"),
		slog.String("driver", DriverSQLite),
		slog.String("path", path),
		slog.Duration("duration", logger.Took(start)),
	)
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]shop.Transaction, error) {
	var rows []txRow
	if err := s.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}
	return transactions(rows), nil
}

func (s *SQLiteStore) ListByBuyer(ctx context.Context, buyerID int64) ([]shop.Transaction, error) {
	var rows []txRow
	err := s.db.WithContext(ctx).Where("buyer_id = ?", buyerID).Order("seq").Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list buyer transactions")
	}
	return transactions(rows), nil
}

func (s *SQLiteStore) Append(ctx context.Context, tx shop.Transaction) error {
	row := rowFrom(tx)
	err := s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrapf(shop.ErrAlreadyPending, "buyer %d", tx.BuyerID)
	}
	return errors.Wrap(err, "insert transaction")
}

func (s *SQLiteStore) FindWaitingByBuyer(ctx context.Context, buyerID int64) (*shop.Transaction, error) {
	var row txRow
	err := s.db.WithContext(ctx).
		Where("buyer_id = ? AND status = ?", buyerID, shop.StatusWaiting).
		Order("seq").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find waiting transaction")
	}
	tx := row.transaction()
	return &tx, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*shop.Transaction, error) {
	var row txRow
	err := s.db.WithContext(ctx).Where("tx_id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(shop.ErrNotFound, "id %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get transaction")
	}
	tx := row.transaction()
	return &tx, nil
}

func (s *SQLiteStore) Update(ctx context.Context, tx shop.Transaction) error {
	row := rowFrom(tx)
	res := s.db.WithContext(ctx).Model(&txRow{}).Where("tx_id = ?", tx.ID).Updates(map[string]any{
		"buyer_id":      row.BuyerID,
		"buyer_name":    row.BuyerName,
		"product":       row.Product,
		"proof_url":     row.ProofURL,
		"proof_file_id": row.ProofFileID,
		"status":        row.Status,
		"site_name":     row.SiteName,
		"deploy_url":    row.DeployURL,
		"updated_at":    row.UpdatedAt,
	})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update transaction")
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(shop.ErrNotFound, "id %s", tx.ID)
	}
	return nil
}

func (s *SQLiteStore) ResolveWaiting(ctx context.Context, buyerID int64, status shop.Status, at time.Time) (*shop.Transaction, error) {
	var resolved shop.Transaction
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var row txRow
		err := db.Where("buyer_id = ? AND status = ?", buyerID, shop.StatusWaiting).Order("seq").First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrapf(shop.ErrNotFound, "waiting for buyer %d", buyerID)
		}
		if err != nil {
			return err
		}
		res := db.Model(&txRow{}).
			Where("seq = ? AND status = ?", row.Seq, shop.StatusWaiting).
			Updates(map[string]any{"status": string(status), "updated_at": at})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(shop.ErrNotFound, "waiting for buyer %d", buyerID)
		}
		row.Status = string(status)
		row.UpdatedAt = at
		resolved = row.transaction()
		return nil
	})
	if err != nil {
		if errors.Is(err, shop.ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "resolve waiting transaction")
	}
	return &resolved, nil
}
