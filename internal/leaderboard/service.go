// Package leaderboard ranks players by simulated USD balance.
package leaderboard

import (
	"context"
	"sort"
	"strconv"

	"github.com/clemsytoff/tradesarace/internal/apperror"
	"github.com/clemsytoff/tradesarace/internal/identity"
)

const (
	DefaultLimit = 10
	MaxLimit     = 25
)

// Store lists every user's balance in storage order.
type Store interface {
	ListStandings(ctx context.Context) ([]identity.Standing, error)
}

// Entry is one ranked row.
type Entry struct {
	Rank       int     `json:"rank"`
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	USDBalance float64 `json:"usdBalance"`
}

// Service builds the ranking from the users' stored balances.
type Service struct {
	store Store
}

// NewService creates a leaderboard service reading from store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ClampLimit returns DefaultLimit for non-positive values and caps the rest
// at MaxLimit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ParseLimit reads a limit query value. Anything that is not an integer
// yields the default.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultLimit
	}
	return ClampLimit(n)
}

// Top returns up to limit players ordered by descending USD balance. Ties
// keep storage order. Ranks start at 1 and have no gaps.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	limit = ClampLimit(limit)

	standings, err := s.store.ListStandings(ctx)
	if err != nil {
		return nil, apperror.Storage(err)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].USDBalance > standings[j].USDBalance
	})
	if len(standings) > limit {
		standings = standings[:limit]
	}

	entries := make([]Entry, 0, len(standings))
	for i, st := range standings {
		entries = append(entries, Entry{Rank: i + 1, ID: st.ID, Name: st.Name, USDBalance: st.USDBalance})
	}
	return entries, nil
}
