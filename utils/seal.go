package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

var ErrSealKey = errors.New("secret key must be 32 bytes hex encoded")

// SealKey decodes a hex encoded 32 byte key.
func SealKey(hexKey string) (*[32]byte, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil || len(raw) != 32 {
		return nil, ErrSealKey
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}

// Seal encrypts plaintext with NaCl secretbox; the nonce is prepended.
func Seal(key *[32]byte, plaintext []byte) ([]byte, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, key), nil
}

// Open reverses Seal.
func Open(key *[32]byte, sealed []byte) ([]byte, error) {
	if len(sealed) < 24+secretbox.Overhead {
		return nil, errors.New("sealed value too short")
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	out, ok := secretbox.Open(nil, sealed[24:], &nonce, key)
	if !ok {
		return nil, errors.New("sealed value could not be opened")
	}
	return out, nil
}
