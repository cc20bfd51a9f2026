package identity

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clemsytoff/tradesarace/internal/apperror"
	"github.com/clemsytoff/tradesarace/internal/wallet"
)

func TestMemoryRepositoryCorruptStateFallsBack(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	user, err := repo.Create(ctx, NewUser{Name: "Ada", Email: "ada@example.com", PasswordHash: []byte("x")})
	require.NoError(t, err)

	SeedRawState(repo, user.ID, []byte(`{"usdBalance":`), []byte(`not json`))

	state, err := repo.LoadState(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, wallet.Default(), state.Wallet)
	assert.Empty(t, state.Positions)

	SeedRawState(repo, user.ID, nil, nil)

	state, err = repo.LoadState(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, wallet.Default(), state.Wallet)
	assert.NotNil(t, state.Positions)
}

func TestMemoryRepositoryLoadsStoredPositionsAsWritten(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	user, err := repo.Create(ctx, NewUser{Name: "Ada", Email: "ada@example.com", PasswordHash: []byte("x")})
	require.NoError(t, err)

	SeedRawState(repo, user.ID, nil, []byte(`[{"side":"buy"},{"side":"short","qty":2}]`))

	first, err := repo.LoadState(ctx, user.ID)
	require.NoError(t, err)
	second, err := repo.LoadState(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	out, err := json.Marshal(first.Positions)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"side":"buy"},{"side":"short","qty":2}]`, string(out))
}

func TestMemoryRepositoryStandingsKeepInsertionOrder(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		_, err := repo.Create(ctx, NewUser{Name: email, Email: email})
		require.NoError(t, err)
	}
	SeedRawState(repo, 2, []byte(`{"usdBalance":"lots"}`), nil)
	RemoveUser(repo, 3)

	standings, err := repo.ListStandings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Standing{
		{ID: 1, Name: "a@x.io", USDBalance: 20000},
		{ID: 2, Name: "b@x.io", USDBalance: 0},
	}, standings)
}

func TestMemoryRepositorySaveStateMissingUser(t *testing.T) {
	repo := NewMemoryRepository()
	err := repo.SaveState(context.Background(), 5, wallet.State{Wallet: wallet.Default()})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
