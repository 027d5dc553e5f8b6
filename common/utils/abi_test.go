package utils

import (
	"testing"

	"auctionscan/common/types"
)

func TestABIDecodeWords(t *testing.T) {
	data := types.Data("0x" +
		"000000000000000000000000000000000000000000000000000000000000002a" +
		"000000000000000000000000a03196bf28ffabcab352fe6d58f4aa83998beba1" +
		"0000000000000000000000000000000000000000000000000000000000000001")

	u, err := ABIDecodeUint64(data, 0)
	if err != nil || u != 42 {
		t.Errorf("ABIDecodeUint64 = %v, %v, want 42", u, err)
	}
	addr, err := ABIDecodeAddress(data, 1)
	if err != nil || addr != "0xa03196bf28ffabcab352fe6d58f4aa83998beba1" {
		t.Errorf("ABIDecodeAddress = %v, %v", addr, err)
	}
	ok, err := ABIDecodeBool(data, 2)
	if err != nil || !ok {
		t.Errorf("ABIDecodeBool = %v, %v, want true", ok, err)
	}
	if _, err = ABIDecodeUint64(data, 3); err == nil {
		t.Error("expected error for out of range word")
	}
}

func TestABIDecodeUint64Slice(t *testing.T) {
	data := types.Data("0x" +
		"0000000000000000000000000000000000000000000000000000000000000020" +
		"0000000000000000000000000000000000000000000000000000000000000002" +
		"0000000000000000000000000000000000000000000000000000000000000007" +
		"0000000000000000000000000000000000000000000000000000000000000009")

	items, err := ABIDecodeUint64Slice(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0] != 7 || items[1] != 9 {
		t.Errorf("ABIDecodeUint64Slice = %v, want [7 9]", items)
	}
}

func TestABIDecodeString(t *testing.T) {
	// offset 0x20, length 5, "genos"
	data := types.Data("0x" +
		"0000000000000000000000000000000000000000000000000000000000000020" +
		"0000000000000000000000000000000000000000000000000000000000000005" +
		"67656e6f73000000000000000000000000000000000000000000000000000000")

	s, err := ABIDecodeString(data, 0)
	if err != nil || s != "genos" {
		t.Errorf("ABIDecodeString = %q, %v, want genos", s, err)
	}
}

func TestHexToAddress(t *testing.T) {
	addr := HexToAddress("00000000000000000000000000000000000000000000000000000000000000ff")
	if addr != "0x00000000000000000000000000000000000000ff" {
		t.Errorf("HexToAddress = %v", addr)
	}
	if addr.IsZero() {
		t.Errorf("unexpected IsZero for %v", addr)
	}
	if !types.ZeroAddress.IsZero() {
		t.Error("zero address must report IsZero")
	}
}
