package utils

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"auctionscan/common/types"
)

// The auction house exposes fixed-layout view functions, so return data is decoded by
// word slicing instead of a full ABI codec. One word is 32 bytes, 64 hex characters.
const wordLen = 64

// ABIEncodeUint64 encodes a uint64 as a padded 32 byte word without 0x prefix.
func ABIEncodeUint64(v uint64) string {
	word := fmt.Sprintf("%064x", v)
	return word
}

// ABIEncodeAddress encodes an address as a padded 32 byte word without 0x prefix.
func ABIEncodeAddress(addr types.Address) string {
	return "000000000000000000000000" + strings.TrimPrefix(strings.ToLower(string(addr)), "0x")
}

// ABIEncodeCall builds contract call data: a 4 byte selector followed by the encoded
// argument list. Supported kinds are uint64, types.BigInt, types.Address, bool,
// []uint64 and string; dynamic arguments are placed in the tail with head offsets.
func ABIEncodeCall(selector string, args ...interface{}) (types.Data, error) {
	head := make([]string, len(args))
	var tail strings.Builder
	headLen := uint64(len(args) * 32)
	for i, arg := range args {
		switch v := arg.(type) {
		case uint64:
			head[i] = ABIEncodeUint64(v)
		case types.Uint64:
			head[i] = ABIEncodeUint64(uint64(v))
		case types.BigInt:
			w := v.Int().Text(16)
			if len(w) > wordLen {
				return "", fmt.Errorf("value out of range: %s", v)
			}
			head[i] = strings.Repeat("0", wordLen-len(w)) + w
		case types.Address:
			head[i] = ABIEncodeAddress(v)
		case bool:
			if v {
				head[i] = ABIEncodeUint64(1)
			} else {
				head[i] = ABIEncodeUint64(0)
			}
		case []uint64:
			head[i] = ABIEncodeUint64(headLen + uint64(tail.Len())/2)
			tail.WriteString(ABIEncodeUint64(uint64(len(v))))
			for _, item := range v {
				tail.WriteString(ABIEncodeUint64(item))
			}
		case string:
			head[i] = ABIEncodeUint64(headLen + uint64(tail.Len())/2)
			tail.WriteString(ABIEncodeUint64(uint64(len(v))))
			padded := hex.EncodeToString([]byte(v))
			for len(padded)%wordLen != 0 {
				padded += "0"
			}
			tail.WriteString(padded)
		default:
			return "", fmt.Errorf("unsupported argument type %T", arg)
		}
	}
	return types.Data("0x" + strings.TrimPrefix(selector, "0x") + strings.Join(head, "") + tail.String()), nil
}

// word returns the i-th 32 byte word of the return data, without 0x prefix.
func word(data types.Data, i int) (string, error) {
	hex := strings.TrimPrefix(string(data), "0x")
	if len(hex) < (i+1)*wordLen {
		return "", fmt.Errorf("return data too short: %d words, want %d", len(hex)/wordLen, i+1)
	}
	return hex[i*wordLen : (i+1)*wordLen], nil
}

// ABIDecodeUint64 decodes the i-th return word as uint64.
func ABIDecodeUint64(data types.Data, i int) (uint64, error) {
	w, err := word(data, i)
	if err != nil {
		return 0, err
	}
	b, ok := new(big.Int).SetString(w, 16)
	if !ok || !b.IsUint64() {
		return 0, fmt.Errorf("not a uint64 word: %s", w)
	}
	return b.Uint64(), nil
}

// ABIDecodeBigInt decodes the i-th return word as a decimal big number string.
func ABIDecodeBigInt(data types.Data, i int) (types.BigInt, error) {
	w, err := word(data, i)
	if err != nil {
		return "", err
	}
	return HexToBigInt(w), nil
}

// ABIDecodeAddress decodes the i-th return word as an address.
func ABIDecodeAddress(data types.Data, i int) (types.Address, error) {
	w, err := word(data, i)
	if err != nil {
		return "", err
	}
	return HexToAddress(w), nil
}

// ABIDecodeBool decodes the i-th return word as a bool.
func ABIDecodeBool(data types.Data, i int) (bool, error) {
	u, err := ABIDecodeUint64(data, i)
	if err != nil {
		return false, err
	}
	return u == 1, nil
}

// ABIDecodeUint64Slice decodes a single dynamic uint256[] return value: word 0 is the
// data offset, the word there is the length, followed by the items.
func ABIDecodeUint64Slice(data types.Data) ([]uint64, error) {
	offset, err := ABIDecodeUint64(data, 0)
	if err != nil {
		return nil, err
	}
	if offset%32 != 0 {
		return nil, fmt.Errorf("illegal slice offset: %d", offset)
	}
	lenIdx := int(offset / 32)
	count, err := ABIDecodeUint64(data, lenIdx)
	if err != nil {
		return nil, err
	}
	items := make([]uint64, count)
	for i := range items {
		items[i], err = ABIDecodeUint64(data, lenIdx+1+i)
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

// ABIDecodeString decodes a dynamic string return value located by the offset in word i.
func ABIDecodeString(data types.Data, i int) (string, error) {
	offset, err := ABIDecodeUint64(data, i)
	if err != nil {
		return "", err
	}
	lenIdx := int(offset / 32)
	count, err := ABIDecodeUint64(data, lenIdx)
	if err != nil {
		return "", err
	}
	payload := strings.TrimPrefix(string(data), "0x")
	start := (lenIdx + 1) * wordLen
	if len(payload) < start+int(count)*2 {
		return "", fmt.Errorf("string data out of range")
	}
	raw, err := hex.DecodeString(payload[start : start+int(count)*2])
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
