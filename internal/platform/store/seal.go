package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
)

// Sealer provides AES-256-GCM encryption of record data at rest.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer creates a Sealer with the given 32-byte AES-256 key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("sealer: key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("sealer: create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("sealer: create GCM: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// NewSealerFromHex decodes a 64-character hex key.
func NewSealerFromHex(key string) (*Sealer, error) {
	raw, err := hex.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("sealer: key is not valid hex: %w", err)
	}
	return NewSealer(raw)
}

// Seal encrypts data and returns the nonce prepended to the ciphertext.
func (s *Sealer) Seal(data []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("seal: generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, data, nil), nil
}

// Open extracts the nonce from the front of data and decrypts the remainder.
func (s *Sealer) Open(data []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, fmt.Errorf("open: ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return plaintext, nil
}

// encodeData serialises a record payload, sealing it when s is non-nil.
func (s *Sealer) encodeData(data map[string]any) (raw []byte, sealed bool, err error) {
	raw, err = json.Marshal(data)
	if err != nil {
		return nil, false, fmt.Errorf("encode record data: %w", err)
	}
	if s == nil {
		return raw, false, nil
	}
	raw, err = s.Seal(raw)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *Sealer) decodeData(raw []byte, sealed bool) (map[string]any, error) {
	if sealed {
		if s == nil {
			return nil, ErrSealed
		}
		plain, err := s.Open(raw)
		if err != nil {
			return nil, err
		}
		raw = plain
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode record data: %w", err)
	}
	return out, nil
}
