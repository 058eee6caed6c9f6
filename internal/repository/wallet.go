package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/wallet"
)

const (
	findWalletSQL = `SELECT user_id, balance, transactions FROM wallets WHERE user_id = $1`

	saveWalletSQL = `INSERT INTO wallets (user_id, balance, transactions)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = EXCLUDED.balance, transactions = EXCLUDED.transactions`
)

var _ wallet.Repository = (*WalletRepository)(nil)

// WalletRepository implements wallet.Repository backed by PostgreSQL. The
// transaction history is an append-only JSONB array.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository returns a WalletRepository that uses the given pool.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// Find returns the user's wallet, or wallet.ErrNotFound when the user has
// none yet.
func (r *WalletRepository) Find(ctx context.Context, userID string) (*wallet.Wallet, error) {
	rows, err := r.pool.Query(ctx, findWalletSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("finding wallet for %q: %w", userID, err)
	}

	w, err := pgx.CollectExactlyOneRow(rows, scanWallet)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrNotFound
		}
		return nil, fmt.Errorf("finding wallet for %q: %w", userID, err)
	}
	return &w, nil
}

// Save upserts the wallet document: balance plus full transaction history.
func (r *WalletRepository) Save(ctx context.Context, w *wallet.Wallet) error {
	txJSON, err := json.Marshal(w.Transactions)
	if err != nil {
		return fmt.Errorf("marshaling wallet transactions: %w", err)
	}
	_, err = r.pool.Exec(ctx, saveWalletSQL, w.UserID, w.Balance, txJSON)
	if err != nil {
		return fmt.Errorf("saving wallet for %q: %w", w.UserID, err)
	}
	return nil
}

func scanWallet(row pgx.CollectableRow) (wallet.Wallet, error) {
	var (
		w     wallet.Wallet
		txRaw []byte
	)
	if err := row.Scan(&w.UserID, &w.Balance, &txRaw); err != nil {
		return w, err
	}
	if err := json.Unmarshal(txRaw, &w.Transactions); err != nil {
		return w, fmt.Errorf("unmarshaling wallet transactions: %w", err)
	}
	return w, nil
}
