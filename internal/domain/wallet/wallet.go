// Package wallet manages per-user stored-value balances. A wallet serves both
// as a payment source (checkout debits) and a refund destination (cancel and
// return credits); it is created lazily on the first credit.
package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a user has no wallet yet.
	ErrNotFound = errors.New("wallet not found")
	// ErrInsufficientBalance is returned when a debit exceeds the balance.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)

// Transaction method tags recorded in the wallet ledger.
const (
	MethodRefund   = "Refund"
	MethodCredit   = "Credit"
	MethodPurchase = "Purchase"
)

// Transaction is one append-only ledger entry.
type Transaction struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"transactionMethod"`
	Date   time.Time       `json:"date"`
}

// Wallet holds a user's balance and transaction history.
type Wallet struct {
	UserID       string
	Balance      decimal.Decimal
	Transactions []Transaction
}

// Repository defines wallet persistence. Find returns ErrNotFound for users
// without a wallet; Save upserts.
type Repository interface {
	Find(ctx context.Context, userID string) (*Wallet, error)
	Save(ctx context.Context, w *Wallet) error
}

// Service serializes all wallet mutations per user. The storage layer does a
// plain read-then-write, so concurrent refunds and debits against the same
// wallet would otherwise lose updates.
type Service struct {
	repo Repository
	now  func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a wallet Service backed by the given Repository.
func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex guarding one user's wallet, creating it on first
// use. Entries are never evicted; the map grows with the active user set.
func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// Credit adds amount to the user's wallet and appends a ledger entry tagged
// with method. A missing wallet is created with the credited amount as its
// opening balance; the creation entry is tagged MethodCredit regardless of
// the requested method, matching the ledger convention for opening credits.
func (s *Service) Credit(ctx context.Context, userID string, amount decimal.Decimal, method string) (*Wallet, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	w, err := s.repo.Find(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, errors.Wrap(err, "find wallet")
		}
		w = &Wallet{
			UserID:  userID,
			Balance: amount,
			Transactions: []Transaction{
				{Amount: amount, Method: MethodCredit, Date: s.now()},
			},
		}
		if err := s.repo.Save(ctx, w); err != nil {
			return nil, errors.Wrap(err, "create wallet")
		}
		return w, nil
	}

	w.Balance = w.Balance.Add(amount)
	w.Transactions = append(w.Transactions, Transaction{
		Amount: amount,
		Method: method,
		Date:   s.now(),
	})
	if err := s.repo.Save(ctx, w); err != nil {
		return nil, errors.Wrap(err, "save wallet")
	}
	return w, nil
}

// Debit subtracts amount from the user's wallet and appends a ledger entry.
// It returns ErrInsufficientBalance without touching the wallet when the
// balance does not cover the amount; a missing wallet counts as a zero
// balance.
func (s *Service) Debit(ctx context.Context, userID string, amount decimal.Decimal, method string) (*Wallet, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	w, err := s.repo.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInsufficientBalance
		}
		return nil, errors.Wrap(err, "find wallet")
	}

	if w.Balance.LessThan(amount) {
		return nil, ErrInsufficientBalance
	}

	w.Balance = w.Balance.Sub(amount)
	w.Transactions = append(w.Transactions, Transaction{
		Amount: amount.Neg(),
		Method: method,
		Date:   s.now(),
	})
	if err := s.repo.Save(ctx, w); err != nil {
		return nil, errors.Wrap(err, "save wallet")
	}
	return w, nil
}
