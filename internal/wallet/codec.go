package wallet

import (
	"bytes"
	"encoding/json"
	"time"
)

// TimestampLayout is the format used for stamped placedAt values.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var walletKeys = [...]string{"usdBalance", "btcBalance", "bonus"}

// Timestamp formats t as a UTC placedAt value.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseWallet decodes a wallet strictly: raw must be an object holding a
// number under each of usdBalance, btcBalance and bonus.
func ParseWallet(raw []byte) (Wallet, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Wallet{}, ErrInvalidWallet
	}

	var values [len(walletKeys)]float64
	for i, key := range walletKeys {
		v, ok := fields[key]
		if !ok || isNull(v) {
			return Wallet{}, ErrInvalidWallet
		}
		if err := json.Unmarshal(v, &values[i]); err != nil {
			return Wallet{}, ErrInvalidWallet
		}
	}
	return Wallet{USDBalance: values[0], BTCBalance: values[1], Bonus: values[2]}, nil
}

// DecodeWallet reads a stored wallet, falling back to Default when the blob
// is missing or does not parse.
func DecodeWallet(raw []byte) Wallet {
	if len(raw) == 0 {
		return Default()
	}
	w, err := ParseWallet(raw)
	if err != nil {
		return Default()
	}
	return w
}

// FilterPositions keeps the elements of raw that are valid positions, in
// order, stamping placedAt with now only where the key is absent. A present
// placedAt is kept as sent. Anything that is not an array yields an empty list.
func FilterPositions(raw []byte, now time.Time) []Position {
	positions := []Position{}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return positions
	}

	stamp, _ := json.Marshal(Timestamp(now))
	for _, item := range items {
		var p Position
		if err := json.Unmarshal(item, &p); err != nil {
			continue
		}
		if p.PlacedAt == nil {
			p.PlacedAt = stamp
		}
		positions = append(positions, p)
	}
	return positions
}

// DecodePositions reads stored positions as they were written. Object items
// are returned unchanged, whatever their side or placedAt; items that are not
// objects are skipped. Anything that is not an array yields an empty list.
func DecodePositions(raw []byte) []Position {
	positions := []Position{}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return positions
	}
	for _, item := range items {
		if p, ok := decodePosition(item); ok {
			positions = append(positions, p)
		}
	}
	return positions
}

// DecodeState reads the stored wallet and positions blobs.
func DecodeState(rawWallet, rawPositions []byte) State {
	return State{
		Wallet:    DecodeWallet(rawWallet),
		Positions: DecodePositions(rawPositions),
	}
}

// Encode serialises the state into the two blobs kept in storage.
func (s State) Encode() (walletJSON, positionsJSON []byte, err error) {
	walletJSON, err = json.Marshal(s.Wallet)
	if err != nil {
		return nil, nil, err
	}
	positions := s.Positions
	if positions == nil {
		positions = []Position{}
	}
	positionsJSON, err = json.Marshal(positions)
	if err != nil {
		return nil, nil, err
	}
	return walletJSON, positionsJSON, nil
}

// BalanceOf extracts usdBalance from a stored wallet blob, or 0 when the blob
// is missing, unparseable or holds no numeric usdBalance.
func BalanceOf(raw []byte) float64 {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return 0
	}
	var balance float64
	if err := json.Unmarshal(fields["usdBalance"], &balance); err != nil {
		return 0
	}
	return balance
}

// IsBlank reports whether a patch field counts as not provided: absent, null,
// false, zero, an empty string, an empty array or an empty object.
func IsBlank(raw json.RawMessage) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case float64:
		return val == 0
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
