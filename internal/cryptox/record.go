package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/matthias/internal/common"
)

const (
	KeySize   = 32 // AES-256
	NonceSize = 12 // 96-bit GCM nonce
)

var ErrKeySize = errors.New("record key must be 32 bytes")

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptRecord seals plaintext with AES-256-GCM under key and returns
// hex(nonce || ciphertext || tag). A new random nonce is drawn per call, so
// encrypting the same record twice never yields the same output.
func EncryptRecord(plaintext, key []byte) (string, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := common.GenerateRandByteArray(NonceSize)
	sealed := aesgcm.Seal(nonce, nonce, plaintext, nil)

	return hex.EncodeToString(sealed), nil
}

// DecryptRecord reverses EncryptRecord. Any failure to decode or
// authenticate (tampering, truncation, wrong key) is reported as
// common.ErrDecrypt.
func DecryptRecord(ciphertextHex string, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	raw, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecrypt, err)
	}
	if len(raw) < NonceSize+aesgcm.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", common.ErrDecrypt)
	}

	plaintext, err := aesgcm.Open(nil, raw[:NonceSize], raw[NonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecrypt, err)
	}
	return plaintext, nil
}

// EncryptEntry serializes entry to JSON and seals it with EncryptRecord.
//
// Example:
//
//	type Account struct {
//	    Username string `json:"username"`
//	}
//
//	key := common.GenerateRandByteArray(cryptox.KeySize)
//	hexText, err := EncryptEntry(Account{Username: "alice"}, key)
func EncryptEntry(entry any, key []byte) (string, error) {
	plaintext, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(plaintext)
	return EncryptRecord(plaintext, key)
}

// DecryptEntry opens ciphertextHex with DecryptRecord and unmarshals the
// JSON into v.
func DecryptEntry(ciphertextHex string, key []byte, v any) error {
	plaintext, err := DecryptRecord(ciphertextHex, key)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(plaintext)
	return json.Unmarshal(plaintext, v)
}
