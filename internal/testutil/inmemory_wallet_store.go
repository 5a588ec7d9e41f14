package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vedawell/vedawell/internal/domain/wallet"
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/types"
)

// InMemoryWalletStore implements wallet.Repository with the same lot
// semantics as the postgres store: credits are consumed
// nearest-expiry-first, then oldest-first.
type InMemoryWalletStore struct {
	mu           sync.RWMutex
	wallets      map[string]*wallet.Wallet
	transactions map[string]*wallet.Transaction
	order        []string
}

func NewInMemoryWalletStore() *InMemoryWalletStore {
	return &InMemoryWalletStore{
		wallets:      make(map[string]*wallet.Wallet),
		transactions: make(map[string]*wallet.Transaction),
	}
}

func (r *InMemoryWalletStore) CreateWallet(ctx context.Context, w *wallet.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.wallets {
		if existing.UserID == w.UserID {
			return ierr.NewError("wallet already exists").
				Mark(ierr.ErrAlreadyExists)
		}
	}
	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

func (r *InMemoryWalletStore) GetWalletByID(ctx context.Context, id string) (*wallet.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if w, exists := r.wallets[id]; exists {
		cp := *w
		return &cp, nil
	}
	return nil, ierr.NewError("wallet not found").Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) GetWalletByUserID(ctx context.Context, userID string) (*wallet.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.wallets {
		if w.UserID == userID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, ierr.NewError("wallet not found").Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) UpdateWalletBalance(ctx context.Context, walletID string, newBalance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.wallets[walletID]
	if !exists {
		return ierr.NewError("wallet not found").Mark(ierr.ErrNotFound)
	}
	w.Balance = newBalance
	w.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryWalletStore) CreateTransaction(ctx context.Context, tx *wallet.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transactions[tx.ID]; exists {
		return ierr.NewError("transaction already exists").Mark(ierr.ErrAlreadyExists)
	}
	cp := *tx
	r.transactions[tx.ID] = &cp
	r.order = append(r.order, tx.ID)
	return nil
}

func (r *InMemoryWalletStore) GetTransactionByID(ctx context.Context, id string) (*wallet.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, exists := r.transactions[id]; exists {
		cp := *t
		return &cp, nil
	}
	return nil, ierr.NewError("transaction not found").Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) ListTransactions(ctx context.Context, walletID string) ([]*wallet.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*wallet.Transaction
	// Insertion order, newest first.
	for i := len(r.order) - 1; i >= 0; i-- {
		t := r.transactions[r.order[i]]
		if t.WalletID == walletID {
			cp := *t
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *InMemoryWalletStore) FindEligibleCredits(ctx context.Context, walletID string, requiredAmount int64) ([]*wallet.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var lots []*wallet.Transaction
	for _, id := range r.order {
		t := r.transactions[id]
		if t.WalletID == walletID && t.Type == types.TransactionTypeCredit && t.CreditsAvailable > 0 {
			cp := *t
			lots = append(lots, &cp)
		}
	}

	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		switch {
		case a.ExpiresAt == nil && b.ExpiresAt == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.ExpiresAt == nil:
			return false
		case b.ExpiresAt == nil:
			return true
		case a.ExpiresAt.Equal(*b.ExpiresAt):
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.ExpiresAt.Before(*b.ExpiresAt)
		}
	})
	return lots, nil
}

func (r *InMemoryWalletStore) ConsumeCredits(ctx context.Context, credits []*wallet.Transaction, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := amount
	for _, lot := range credits {
		if remaining <= 0 {
			break
		}
		stored, exists := r.transactions[lot.ID]
		if !exists {
			return ierr.NewError("credit lot not found").Mark(ierr.ErrNotFound)
		}

		toConsume := stored.CreditsAvailable
		if toConsume > remaining {
			toConsume = remaining
		}
		stored.CreditsAvailable -= toConsume
		remaining -= toConsume
	}

	if remaining > 0 {
		return ierr.NewError("insufficient credits to consume").
			Mark(ierr.ErrInsufficientBalance)
	}
	return nil
}

func (r *InMemoryWalletStore) FindExpiredCredits(ctx context.Context, walletID string, asOf time.Time) ([]*wallet.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var lots []*wallet.Transaction
	for _, id := range r.order {
		t := r.transactions[id]
		if t.WalletID == walletID && t.IsExpirableCredit(asOf) {
			cp := *t
			lots = append(lots, &cp)
		}
	}
	return lots, nil
}

func (r *InMemoryWalletStore) ListWalletsWithExpiredCredits(ctx context.Context, asOf time.Time) ([]*wallet.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var result []*wallet.Wallet
	for _, id := range r.order {
		t := r.transactions[id]
		if t.IsExpirableCredit(asOf) && !seen[t.WalletID] {
			seen[t.WalletID] = true
			if w, exists := r.wallets[t.WalletID]; exists {
				cp := *w
				result = append(result, &cp)
			}
		}
	}
	return result, nil
}

// BackdateExpiry rewrites a credit lot's expiry, used by tests to make
// promo lots due without waiting.
func (r *InMemoryWalletStore) BackdateExpiry(txnID string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, exists := r.transactions[txnID]; exists {
		t.ExpiresAt = &expiresAt
	}
}

func (r *InMemoryWalletStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets = make(map[string]*wallet.Wallet)
	r.transactions = make(map[string]*wallet.Transaction)
	r.order = nil
}
