// Package cryptox seals exported archives with a passphrase.
//
// A sealed blob is laid out as magic | salt | nonce | ciphertext. The key is
// derived from the passphrase with Argon2id and the payload is encrypted
// with AES-256-GCM, so a wrong passphrase or a modified file fails to open.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32
)

var magic = []byte("NKX1")

var (
	ErrNotSealed     = errors.New("not a sealed archive")
	ErrWrongPassword = errors.New("wrong passphrase or corrupted archive")
)

// randRead is swapped in tests.
var randRead = rand.Read

// DeriveKey stretches a passphrase into an AES-256 key.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with a key derived from passphrase.
func Seal(plaintext, passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: empty passphrase", common.ErrValidation)
	}

	header := make([]byte, len(magic)+saltSize+nonceSize)
	copy(header, magic)
	salt := header[len(magic) : len(magic)+saltSize]
	nonce := header[len(magic)+saltSize:]
	if _, err := randRead(salt); err != nil {
		return nil, err
	}
	if _, err := randRead(nonce); err != nil {
		return nil, err
	}

	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	// header is authenticated as associated data
	return aead.Seal(header, nonce, plaintext, header), nil
}

// Open reverses Seal.
func Open(sealed, passphrase []byte) ([]byte, error) {
	headerLen := len(magic) + saltSize + nonceSize
	if len(sealed) < headerLen || !bytes.Equal(sealed[:len(magic)], magic) {
		return nil, ErrNotSealed
	}

	header := sealed[:headerLen]
	salt := header[len(magic) : len(magic)+saltSize]
	nonce := header[len(magic)+saltSize:]

	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, sealed[headerLen:], header)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}

// SealFile replaces the file at path with its sealed form and returns the
// new size.
func SealFile(path string, passphrase []byte) (int64, error) {
	plaintext, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	defer common.WipeByteArray(plaintext)

	sealed, err := Seal(plaintext, passphrase)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, sealed, 0o600); err != nil {
		return 0, err
	}
	return int64(len(sealed)), nil
}

// OpenFile decrypts the sealed file in into out.
func OpenFile(in, out string, passphrase []byte) (int64, error) {
	sealed, err := os.ReadFile(in)
	if err != nil {
		return 0, err
	}

	plaintext, err := Open(sealed, passphrase)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", in, err)
	}
	if err := os.WriteFile(out, plaintext, 0o600); err != nil {
		return 0, err
	}
	return int64(len(plaintext)), nil
}
