package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ZeroAddress is the ledger's existence sentinel: an auction record whose seller is the
// zero address does not exist.
const ZeroAddress = Address("0x0000000000000000000000000000000000000000")

type Address string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Address) UnmarshalJSON(input []byte) error {
	return a.UnmarshalText(input[1 : len(input)-1])
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Address) UnmarshalText(input []byte) error {
	*a = Address(strings.ToLower(string(input)))
	return nil
}

// IsZero reports whether the address is empty or the zero-address sentinel.
func (a Address) IsZero() bool {
	if a == "" || a == ZeroAddress {
		return true
	}
	b, ok := new(big.Int).SetString(string(a), 0)
	return ok && b.Sign() == 0
}

type Hash string

// UnmarshalJSON implements json.Unmarshaler.
func (h *Hash) UnmarshalJSON(input []byte) error {
	return h.UnmarshalText(input[1 : len(input)-1])
}

// UnmarshalText implements encoding.TextUnmarshaler
func (h *Hash) UnmarshalText(input []byte) error {
	*h = Hash(strings.ToLower(string(input)))
	return nil
}

// Data hexadecimal string with 0x prefix, variable length call/return payload
type Data string

// UnmarshalJSON implements json.Unmarshaler.
func (d *Data) UnmarshalJSON(input []byte) error {
	if len(input) < 2 {
		return fmt.Errorf("unexpected data: %s", input)
	}
	*d = Data(input[1 : len(input)-1])
	return nil
}

type Uint64 uint64

// UnmarshalJSON implements json.Unmarshaler.
func (u *Uint64) UnmarshalJSON(input []byte) error {
	if len(input) > 2 && input[0] == '"' {
		input = input[1 : len(input)-1]
	}
	return u.UnmarshalText(input)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (u *Uint64) UnmarshalText(input []byte) error {
	value, err := strconv.ParseUint(string(input), 0, 64)
	*u = Uint64(value)
	return err
}

func (u Uint64) Hex() string {
	return "0x" + strconv.FormatUint(uint64(u), 16)
}

// BigInt big number represented by decimal string
type BigInt string

// UnmarshalJSON implements json.Unmarshaler.
func (b *BigInt) UnmarshalJSON(input []byte) error {
	return b.UnmarshalText(input[1 : len(input)-1])
}

// UnmarshalText implements encoding.TextUnmarshaler
func (b *BigInt) UnmarshalText(input []byte) error {
	t, ok := new(big.Int).SetString(string(input), 0)
	if !ok {
		return fmt.Errorf("unexpected number: %s", input)
	}
	*b = BigInt(t.String())
	return nil
}

func (b BigInt) Hex() string {
	t, ok := new(big.Int).SetString(string(b), 0)
	if !ok {
		return "0x0"
	}
	return "0x" + t.Text(16)
}

// Int returns the value as big.Int, zero for an empty or malformed string.
func (b BigInt) Int() *big.Int {
	t, ok := new(big.Int).SetString(string(b), 0)
	if !ok {
		return new(big.Int)
	}
	return t
}

// StrArray string list stored as a JSON TEXT column
type StrArray []string

// Value implements driver.Valuer.
func (s StrArray) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *StrArray) Scan(input interface{}) error {
	switch data := input.(type) {
	case []byte:
		return json.Unmarshal(data, s)
	case string:
		return json.Unmarshal([]byte(data), s)
	default:
		return fmt.Errorf("unexpected type %T for StrArray", input)
	}
}
