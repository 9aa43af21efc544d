package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/m3rciful/sitebot/core/logger"
	"github.com/m3rciful/sitebot/internal/shop"
)

// JSONStore keeps every transaction in one pretty-printed JSON array.
// Each mutation reads the whole file and swaps in a rewritten copy.
type JSONStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewJSON returns a store backed by path. The parent directory is created
// on first write.
func NewJSON(path string) *JSONStore {
	return &JSONStore{path: path, now: time.Now}
}

// Path returns the backing file.
func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) ListAll(ctx context.Context) ([]shop.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLenient(ctx), nil
}

func (s *JSONStore) ListByBuyer(ctx context.Context, buyerID int64) ([]shop.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []shop.Transaction
	for _, tx := range s.readLenient(ctx) {
		if tx.BuyerID == buyerID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *JSONStore) FindWaitingByBuyer(ctx context.Context, buyerID int64) (*shop.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := s.readLenient(ctx)
	if i := firstWaiting(txs, buyerID); i >= 0 {
		return &txs[i], nil
	}
	return nil, nil
}

func (s *JSONStore) Get(ctx context.Context, id string) (*shop.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := s.readLenient(ctx)
	for i := range txs {
		if txs[i].ID == id {
			return &txs[i], nil
		}
	}
	return nil, errors.Wrapf(shop.ErrNotFound, "id %s", id)
}

func (s *JSONStore) Append(ctx context.Context, tx shop.Transaction) error {
	return s.mutate(ctx, "append", func(txs []shop.Transaction) ([]shop.Transaction, error) {
		return append(txs, tx), nil
	})
}

func (s *JSONStore) Update(ctx context.Context, tx shop.Transaction) error {
	return s.mutate(ctx, "update", func(txs []shop.Transaction) ([]shop.Transaction, error) {
		for i := range txs {
			if txs[i].ID == tx.ID {
				txs[i] = tx
				return txs, nil
			}
		}
		return nil, errors.Wrapf(shop.ErrNotFound, "id %s", tx.ID)
	})
}

func (s *JSONStore) ResolveWaiting(ctx context.Context, buyerID int64, status shop.Status, at time.Time) (*shop.Transaction, error) {
	var resolved shop.Transaction
	err := s.mutate(ctx, "resolve", func(txs []shop.Transaction) ([]shop.Transaction, error) {
		i := firstWaiting(txs, buyerID)
		if i < 0 {
			return nil, errors.Wrapf(shop.ErrNotFound, "waiting for buyer %d", buyerID)
		}
		txs[i].Status = status
		txs[i].UpdatedAt = at
		resolved = txs[i]
		return txs, nil
	})
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

func firstWaiting(txs []shop.Transaction, buyerID int64) int {
	for i := range txs {
		if txs[i].BuyerID == buyerID && txs[i].Status == shop.StatusWaiting {
			return i
		}
	}
	return -1
}

// mutate runs fn over the current records and persists the result.
// Callers hold no lock.
func (s *JSONStore) mutate(ctx context.Context, op string, fn func([]shop.Transaction) ([]shop.Transaction, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.read()
	if err != nil {
		if errors.Is(err, errCorrupt) {
			s.quarantine(ctx, err)
			txs = nil
		} else {
			return errors.Wrapf(err, "store %s", op)
		}
	}

	txs, err = fn(txs)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := s.write(txs); err != nil {
		logger.Error(ctx, "store", "store.write",
			slog.String("status", "fail"),
			slog.String("driver", DriverJSON),
			slog.String("path", s.path),
			logger.Err(err),
		)
		return errors.Wrapf(err, "store %s", op)
	}
	logger.Debug(ctx, "store", "store.write",
		slog.String("status", "ok"),
		slog.String("driver", DriverJSON),
		slog.String("stage", op),
		slog.Int("count", len(txs)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

var errCorrupt = errors.New("corrupt transaction log")

// read returns the stored records. A missing file is an empty log.
func (s *JSONStore) read() ([]shop.Transaction, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read transaction log")
	}
	if len(data) == 0 {
		return nil, nil
	}
	var txs []shop.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decode %s", s.path), errCorrupt)
	}
	return txs, nil
}

// readLenient never fails: an unreadable log reads as empty.
func (s *JSONStore) readLenient(ctx context.Context) []shop.Transaction {
	txs, err := s.read()
	if err != nil {
		logger.Warn(ctx, "store", "store.read",
			slog.String("status", "fail"),
			slog.String("driver", DriverJSON),
			slog.String("path", s.path),
			logger.Err(err),
		)
		return nil
	}
	return txs
}

// quarantine moves a corrupt log aside so the next write starts clean.
func (s *JSONStore) quarantine(ctx context.Context, cause error) {
	aside := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().Unix())
	err := os.Rename(s.path, aside)
	logger.Warn(ctx, "store", "store.quarantine",
		slog.String("driver", DriverJSON),
		slog.String("path", aside),
		slog.String("cause", cause.Error()),
		logger.Err(err),
	)
}

func (s *JSONStore) write(txs []shop.Transaction) error {
	if txs == nil {
		txs = []shop.Transaction{}
	}
	data, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode transactions")
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create store dir")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replace transaction log")
}
