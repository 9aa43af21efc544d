package shop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

type memStore struct {
	mu        sync.Mutex
	txs       []Transaction
	appendErr error
}

func (s *memStore) ListAll(context.Context) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Transaction(nil), s.txs...), nil
}

func (s *memStore) ListByBuyer(_ context.Context, buyerID int64) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Transaction
	for _, tx := range s.txs {
		if tx.BuyerID == buyerID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *memStore) Append(_ context.Context, tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.txs = append(s.txs, tx)
	return nil
}

func (s *memStore) FindWaitingByBuyer(_ context.Context, buyerID int64) (*Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.BuyerID == buyerID && tx.Status == StatusWaiting {
			return &tx, nil
		}
	}
	return nil, nil
}

func (s *memStore) Get(_ context.Context, id string) (*Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			return &tx, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) Update(_ context.Context, tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == tx.ID {
			s.txs[i] = tx
			return nil
		}
	}
	return ErrNotFound
}

func (s *memStore) ResolveWaiting(_ context.Context, buyerID int64, status Status, at time.Time) (*Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].BuyerID == buyerID && s.txs[i].Status == StatusWaiting {
			s.txs[i].Status = status
			s.txs[i].UpdatedAt = at
			tx := s.txs[i]
			return &tx, nil
		}
	}
	return nil, ErrNotFound
}

type fakeCatalog struct{ products []string }

func (c fakeCatalog) List(context.Context) ([]string, error) { return c.products, nil }

type publishCall struct{ template, target, scope string }

type fakePublisher struct {
	mu    sync.Mutex
	calls []publishCall
	err   error
}

func (p *fakePublisher) Publish(_ context.Context, template, target, scope string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, publishCall{template, target, scope})
	if p.err != nil {
		return "", p.err
	}
	return "https://" + target + ".vercel.app", nil
}

type fakeProofs struct{}

func (fakeProofs) ResolveProof(_ context.Context, fileID string) (string, error) {
	return "https://files.example.org/" + fileID, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	events   []string
	ownerErr error
}

func (n *fakeNotifier) record(kind string, tx Transaction) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, fmt.Sprintf("%s:%d", kind, tx.BuyerID))
}

func (n *fakeNotifier) OwnerProof(_ context.Context, tx Transaction) error {
	n.record("owner_proof", tx)
	return n.ownerErr
}

func (n *fakeNotifier) BuyerApproved(_ context.Context, tx Transaction) error {
	n.record("buyer_approved", tx)
	return nil
}

func (n *fakeNotifier) BuyerRejected(_ context.Context, tx Transaction) error {
	n.record("buyer_rejected", tx)
	return nil
}

func (n *fakeNotifier) OwnerDeployed(_ context.Context, tx Transaction) error {
	n.record("owner_deployed", tx)
	return nil
}

func (n *fakeNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

var errDisk = errors.New("disk full")
