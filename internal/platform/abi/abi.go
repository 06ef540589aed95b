// Package abi encodes proposal instructions as a 4-byte Keccak-256 selector
// of the function signature followed by 32-byte words, the layout used by
// EVM contract calls.
package abi

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	SelectorSize = 4
	WordSize     = 32
)

var ErrPayloadTooShort = errors.New("instruction payload shorter than selector")

type Selector [SelectorSize]byte

func (s Selector) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// SelectorOf hashes a canonical signature such as "transfer(address,uint256)".
func SelectorOf(signature string) Selector {
	hash := sha3.NewLegacyKeccak256()
	_, _ = hash.Write([]byte(strings.ReplaceAll(signature, " ", "")))
	var selector Selector
	copy(selector[:], hash.Sum(nil)[:SelectorSize])
	return selector
}

// EncodeCall builds selector || words.
func EncodeCall(signature string, words ...[WordSize]byte) []byte {
	selector := SelectorOf(signature)
	out := make([]byte, 0, SelectorSize+len(words)*WordSize)
	out = append(out, selector[:]...)
	for _, word := range words {
		out = append(out, word[:]...)
	}
	return out
}

// SplitCall separates the selector from the argument bytes.
func SplitCall(payload []byte) (Selector, []byte, error) {
	var selector Selector
	if len(payload) < SelectorSize {
		return selector, nil, ErrPayloadTooShort
	}
	copy(selector[:], payload[:SelectorSize])
	return selector, payload[SelectorSize:], nil
}

// Uint64Word right-aligns v in a 32-byte big-endian word.
func Uint64Word(v uint64) [WordSize]byte {
	var word [WordSize]byte
	binary.BigEndian.PutUint64(word[WordSize-8:], v)
	return word
}

// StringWord left-aligns s in a 32-byte word. Strings longer than a word are
// rejected.
func StringWord(s string) ([WordSize]byte, error) {
	var word [WordSize]byte
	if len(s) > WordSize {
		return word, fmt.Errorf("abi: %q does not fit in one word", s)
	}
	copy(word[:], s)
	return word, nil
}

// WordAt returns argument word i of args.
func WordAt(args []byte, i int) ([WordSize]byte, error) {
	var word [WordSize]byte
	start := i * WordSize
	if i < 0 || start+WordSize > len(args) {
		return word, fmt.Errorf("abi: argument %d out of range", i)
	}
	copy(word[:], args[start:start+WordSize])
	return word, nil
}

// Uint64At decodes argument word i as an unsigned integer that must fit in 64 bits.
func Uint64At(args []byte, i int) (uint64, error) {
	word, err := WordAt(args, i)
	if err != nil {
		return 0, err
	}
	for _, b := range word[:WordSize-8] {
		if b != 0 {
			return 0, fmt.Errorf("abi: argument %d overflows uint64", i)
		}
	}
	return binary.BigEndian.Uint64(word[WordSize-8:]), nil
}

// StringAt decodes argument word i as a left-aligned, zero-padded string.
func StringAt(args []byte, i int) (string, error) {
	word, err := WordAt(args, i)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(word[:]), "\x00"), nil
}

// ParseHex accepts payloads with or without a 0x prefix.
func ParseHex(raw string) ([]byte, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if raw == "" {
		return nil, nil
	}
	return hex.DecodeString(raw)
}
