package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// seedKeyInfo binds the derived key to its purpose.
const seedKeyInfo = "sweeps-casino/seed-at-rest"

// SeedEncryptionService implements ports.EncryptionService with AES-256-GCM.
// Committed server seeds are stored encrypted so a database read alone can
// never leak an unrevealed seed. The AES key is derived from the configured
// master secret with HKDF-SHA256.
type SeedEncryptionService struct {
	key []byte
}

// NewSeedEncryptionService derives the data key from a master secret.
func NewSeedEncryptionService(masterKey string) (*SeedEncryptionService, error) {
	if masterKey == "" {
		return nil, fmt.Errorf("seed master key is required")
	}
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(masterKey), nil, []byte(seedKeyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("deriving seed key: %w", err)
	}
	return &SeedEncryptionService{key: key}, nil
}

// Encrypt encrypts plaintext using AES-256-GCM.
// Returns hex-encoded string: nonce + ciphertext.
func (s *SeedEncryptionService) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("creating GCM: %w", err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	ciphertext := aesGCM.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(ciphertext), nil
}

// Decrypt decrypts a hex-encoded AES-256-GCM ciphertext.
func (s *SeedEncryptionService) Decrypt(ciphertextHex string) (string, error) {
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("creating GCM: %w", err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypting: %w", err)
	}

	return string(plaintext), nil
}
