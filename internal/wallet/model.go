package wallet

import (
	"encoding/json"
	"errors"
)

const (
	defaultUSDBalance = 20000
	defaultBTCBalance = 0.35
	defaultBonus      = 185
)

var (
	// ErrInvalidWallet reports a wallet that is not an object carrying all three balances.
	ErrInvalidWallet = errors.New("invalid wallet")

	// ErrInvalidPosition reports a position that is not an object with a buy or sell side.
	ErrInvalidPosition = errors.New("invalid position")
)

// Wallet holds a user's simulated balances.
type Wallet struct {
	USDBalance float64 `json:"usdBalance"`
	BTCBalance float64 `json:"btcBalance"`
	Bonus      float64 `json:"bonus"`
}

// Default is the wallet every account starts with.
func Default() Wallet {
	return Wallet{USDBalance: defaultUSDBalance, BTCBalance: defaultBTCBalance, Bonus: defaultBonus}
}

// Side is the direction of a simulated trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether s is one of the admitted sides.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Position is a simulated trade. Only side and placedAt have a schema; every
// other field is carried through untouched in Extra. PlacedAt holds the raw
// client value and is nil only when the key was absent.
type Position struct {
	Side     Side
	PlacedAt json.RawMessage
	Extra    map[string]json.RawMessage
}

// MarshalJSON flattens the position back into a single object.
func (p Position) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(p.Extra)+2)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.Side != "" {
		side, err := json.Marshal(p.Side)
		if err != nil {
			return nil, err
		}
		out["side"] = side
	}
	if p.PlacedAt != nil {
		out["placedAt"] = p.PlacedAt
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts any object whose side is buy or sell.
func (p *Position) UnmarshalJSON(data []byte) error {
	decoded, ok := decodePosition(data)
	if !ok || !decoded.Side.Valid() {
		return ErrInvalidPosition
	}
	*p = decoded
	return nil
}

// decodePosition splits an object into side, placedAt and the opaque rest
// without judging the side. A side that is not a string stays in Extra.
func decodePosition(data []byte) (Position, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Position{}, false
	}

	var p Position
	if raw, ok := fields["side"]; ok {
		var side string
		if err := json.Unmarshal(raw, &side); err == nil {
			p.Side = Side(side)
			delete(fields, "side")
		}
	}
	if raw, ok := fields["placedAt"]; ok {
		p.PlacedAt = raw
		delete(fields, "placedAt")
	}
	p.Extra = fields
	return p, true
}

// State is the wallet and the positions a user owns.
type State struct {
	Wallet    Wallet
	Positions []Position
}
