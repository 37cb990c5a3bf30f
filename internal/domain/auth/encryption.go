package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// EncryptionManager encrypts and decrypts the secret payload embedded in
// single-user tokens. The wire format is "hex(iv):hex(ciphertext)" so a
// 16-byte IV and 16-byte secret produce the expected \w{32}:\w{32} shape.
// The key is derived from a process-held passphrase and never leaves the
// process; decryptability is the only guarantee, token integrity comes from
// the JWT signature around the payload.
type EncryptionManager struct {
	key [32]byte
}

// NewEncryptionManager derives an AES-256 key from the given passphrase.
func NewEncryptionManager(passphrase string) (*EncryptionManager, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("encryption passphrase is empty")
	}
	return &EncryptionManager{key: sha256.Sum256([]byte(passphrase))}, nil
}

// Encrypt encrypts plain and returns "hex(iv):hex(ciphertext)".
func (m *EncryptionManager) Encrypt(plain string) (string, error) {
	block, err := aes.NewCipher(m.key[:])
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	out := make([]byte, len(plain))
	cipher.NewCTR(block, iv).XORKeyStream(out, []byte(plain))

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Any structural problem is an error; the caller
// treats all of them as a failed token.
func (m *EncryptionManager) Decrypt(payload string) (string, error) {
	ivHex, dataHex, found := strings.Cut(payload, ":")
	if !found {
		return "", fmt.Errorf("malformed payload")
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", fmt.Errorf("malformed iv")
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return "", fmt.Errorf("malformed ciphertext")
	}

	block, err := aes.NewCipher(m.key[:])
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	out := make([]byte, len(data))
	cipher.NewCTR(block, iv).XORKeyStream(out, data)
	return string(out), nil
}
