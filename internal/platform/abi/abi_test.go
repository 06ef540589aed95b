package abi

import (
	"bytes"
	"testing"
)

func TestSelectorOfKnownSignatures(t *testing.T) {
	cases := map[string]string{
		"name()":                    "0x06fdde03",
		"transfer(address,uint256)": "0xa9059cbb",
		"balanceOf(address)":        "0x70a08231",
	}
	for signature, want := range cases {
		if got := SelectorOf(signature).String(); got != want {
			t.Fatalf("selector of %s: expected %s, got %s", signature, want, got)
		}
	}
}

func TestEncodeAndSplitCall(t *testing.T) {
	recipient, err := StringWord("alice")
	if err != nil {
		t.Fatalf("string word failed: %v", err)
	}
	payload := EncodeCall("transfer(string,uint256)", recipient, Uint64Word(42))
	if len(payload) != SelectorSize+2*WordSize {
		t.Fatalf("unexpected payload length %d", len(payload))
	}

	selector, args, err := SplitCall(payload)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if selector != SelectorOf("transfer(string,uint256)") {
		t.Fatalf("unexpected selector %s", selector)
	}
	to, err := StringAt(args, 0)
	if err != nil || to != "alice" {
		t.Fatalf("expected alice, got %q (%v)", to, err)
	}
	amount, err := Uint64At(args, 1)
	if err != nil || amount != 42 {
		t.Fatalf("expected 42, got %d (%v)", amount, err)
	}
	if _, err := Uint64At(args, 2); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestSplitCallRejectsShortPayload(t *testing.T) {
	if _, _, err := SplitCall([]byte{0x01, 0x02}); err != ErrPayloadTooShort {
		t.Fatalf("expected ErrPayloadTooShort, got %v", err)
	}
}

func TestParseHex(t *testing.T) {
	got, err := ParseHex("0x06fdde03")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !bytes.Equal(got, []byte{0x06, 0xfd, 0xde, 0x03}) {
		t.Fatalf("unexpected bytes %x", got)
	}
	if _, err := ParseHex("zz"); err == nil {
		t.Fatal("expected invalid hex error")
	}
}
