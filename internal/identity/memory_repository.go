package identity

import (
	"context"
	"sync"
	"time"

	"github.com/clemsytoff/tradesarace/internal/apperror"
	"github.com/clemsytoff/tradesarace/internal/wallet"
)

type memoryRow struct {
	user      User
	wallet    []byte
	positions []byte
}

type memoryRepository struct {
	mu      sync.RWMutex
	rows    []*memoryRow
	byEmail map[string]*memoryRow
	byID    map[int64]*memoryRow
	now     func() time.Time
}

// NewMemoryRepository builds an in-memory user store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byEmail: make(map[string]*memoryRow),
		byID:    make(map[int64]*memoryRow),
		now:     time.Now,
	}
}

func (r *memoryRepository) Create(_ context.Context, user NewUser) (User, error) {
	walletJSON, positionsJSON, err := wallet.State{Wallet: wallet.Default()}.Encode()
	if err != nil {
		return User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return User{}, apperror.ErrDuplicate
	}
	row := &memoryRow{
		user: User{
			ID:           int64(len(r.rows) + 1),
			Name:         user.Name,
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
			CreatedAt:    r.now().UTC(),
		},
		wallet:    walletJSON,
		positions: positionsJSON,
	}
	r.rows = append(r.rows, row)
	r.byEmail[user.Email] = row
	r.byID[row.user.ID] = row
	return row.user, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.byEmail[email]
	if !ok {
		return User{}, apperror.ErrNotFound
	}
	return row.user, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.byID[id]
	if !ok {
		return User{}, apperror.ErrNotFound
	}
	return row.user, nil
}

func (r *memoryRepository) LoadState(_ context.Context, id int64) (wallet.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.byID[id]
	if !ok {
		return wallet.State{}, apperror.ErrNotFound
	}
	return wallet.DecodeState(row.wallet, row.positions), nil
}

func (r *memoryRepository) SaveState(_ context.Context, id int64, state wallet.State) error {
	walletJSON, positionsJSON, err := state.Encode()
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[id]
	if !ok {
		return apperror.ErrNotFound
	}
	row.wallet = walletJSON
	row.positions = positionsJSON
	return nil
}

func (r *memoryRepository) ListStandings(_ context.Context) ([]Standing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	standings := make([]Standing, 0, len(r.rows))
	for _, row := range r.rows {
		if _, live := r.byID[row.user.ID]; !live {
			continue
		}
		standings = append(standings, Standing{
			ID:         row.user.ID,
			Name:       row.user.Name,
			USDBalance: wallet.BalanceOf(row.wallet),
		})
	}
	return standings, nil
}
