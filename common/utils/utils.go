package utils

import (
	"fmt"
	"math/big"

	"auctionscan/common/types"
)

// HexToBigInt converts a hexadecimal string without 0x prefix to a big number BigInt
// (illegal input will return 0)
func HexToBigInt(hex string) types.BigInt {
	b := new(big.Int)
	b.SetString(hex, 16)
	return types.BigInt(b.Text(10))
}

// HexToUint64 converts a hexadecimal string without 0x prefix to uint64 (illegal input
// or overflow will return 0)
func HexToUint64(hex string) types.Uint64 {
	b := new(big.Int)
	b.SetString(hex, 16)
	if !b.IsUint64() {
		return 0
	}
	return types.Uint64(b.Uint64())
}

// HexToAddress converts a hexadecimal string without a 0x prefix to an Address (greater
// than the truncated front)
func HexToAddress(hex string) types.Address {
	if len(hex) < 40 {
		hex = "0000000000000000000000000000000000000000" + hex
	}
	return types.Address("0x" + hex[len(hex)-40:])
}

// ParsePage parses pagination parameters, maximum 100 records, default 10 records on
// page 1
func ParsePage(page, size *int) (int, int, error) {
	p, s := 1, 10
	if page != nil {
		if *page < 1 {
			return 0, 0, fmt.Errorf("illegal page: %d", *page)
		}
		p = *page
	}
	if size != nil {
		if *size < 1 || *size > 100 {
			return 0, 0, fmt.Errorf("illegal page_size: %d", *size)
		}
		s = *size
	}
	return p, s, nil
}
