package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/clemsytoff/tradesarace/internal/apperror"
)

// Store loads and replaces the state of a single user. Implementations return
// apperror.ErrNotFound when the user row does not exist.
type Store interface {
	LoadState(ctx context.Context, userID int64) (State, error)
	SaveState(ctx context.Context, userID int64, state State) error
}

// Service exposes the user state read/modify/write cycle.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService builds a user state service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Patch carries the raw wallet and positions fields of an update request.
type Patch struct {
	Wallet    json.RawMessage
	Positions json.RawMessage
}

// GetState returns the user's wallet and positions, substituting defaults
// for anything malformed in storage.
func (s *Service) GetState(ctx context.Context, userID int64) (State, error) {
	state, err := s.store.LoadState(ctx, userID)
	if err != nil {
		return State{}, storeError("load state", err)
	}
	return state, nil
}

// PutState replaces the wallet and/or positions wholesale. Both fields are
// written in a single store call; concurrent writers race and the last one wins.
func (s *Service) PutState(ctx context.Context, userID int64, patch Patch) (State, error) {
	walletBlank := IsBlank(patch.Wallet)
	positionsBlank := IsBlank(patch.Positions)
	if walletBlank && positionsBlank {
		return State{}, apperror.Validation("Nothing to update")
	}

	state, err := s.store.LoadState(ctx, userID)
	if err != nil {
		return State{}, storeError("load state", err)
	}

	if !walletBlank {
		w, err := ParseWallet(patch.Wallet)
		if err != nil {
			return State{}, &apperror.Error{Kind: apperror.KindValidation, Message: "Invalid wallet", Err: err}
		}
		state.Wallet = w
	}

	if !positionsBlank {
		state.Positions = FilterPositions(patch.Positions, s.now())
	}

	if err := s.store.SaveState(ctx, userID, state); err != nil {
		return State{}, storeError("save state", err)
	}
	return state, nil
}

func storeError(op string, err error) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.NotFound("User not found")
	}
	return fmt.Errorf("%s: %w", op, apperror.Storage(err))
}
