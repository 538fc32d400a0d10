package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// envelopeKey holds the ciphertext in an encrypted document.
const envelopeKey = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	ports.DocumentStore
	keys keyring
}

// NewEncryptionMiddleware creates a middleware that stores documents as AES-GCM sealed
// envelopes. Backup, rename and remove pass through untouched, since they never look
// inside a document. Every key must be 32 bytes.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	keys, err := newKeyring(config)
	if err != nil {
		panic(err.Error())
	}
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &encryptionMiddleware{
			DocumentStore: next,
			keys:          keys,
		}
	}
}

type envelope struct {
	Encrypted string `json:"__encrypted__"`
}

func (m *encryptionMiddleware) Write(ctx context.Context, path string, data []byte) error {
	ciphertext, err := m.keys.seal(data)
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", path, err)
	}

	sealed, err := json.Marshal(envelope{Encrypted: base64.StdEncoding.EncodeToString(ciphertext)})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w: %v", domain.ErrIOFailure, err)
	}
	return m.DocumentStore.Write(ctx, path, sealed)
}

func (m *encryptionMiddleware) Read(ctx context.Context, path string) ([]byte, error) {
	sealed, err := m.DocumentStore.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	// Fail secure: a plain document is not accepted once encryption is configured.
	var env envelope
	if err := json.Unmarshal(sealed, &env); err != nil || env.Encrypted == "" {
		return nil, fmt.Errorf("%s is missing the %s envelope: %w", path, envelopeKey, domain.ErrIOFailure)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(env.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w: %v", domain.ErrIOFailure, err)
	}

	plain, err := m.keys.open(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt %s: %w", path, err)
	}
	return plain, nil
}

// keyring holds one AEAD per key, the active one first.
type keyring []cipher.AEAD

func newKeyring(config EncryptionConfig) (keyring, error) {
	keys := append([][]byte{config.ActiveKey}, config.FallbackKeys...)
	ring := make(keyring, 0, len(keys))
	for i, key := range keys {
		if len(key) != 32 {
			return nil, fmt.Errorf("encryption key %d must be 32 bytes (AES-256), got %d", i, len(key))
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		ring = append(ring, gcm)
	}
	return ring, nil
}

// seal encrypts with the active key and prefixes the random nonce.
func (k keyring) seal(plain []byte) ([]byte, error) {
	active := k[0]
	nonce := make([]byte, active.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("reading nonce: %w: %v", domain.ErrIOFailure, err)
	}
	return active.Seal(nonce, nonce, plain, nil), nil
}

// open tries the active key, then each fallback key in order.
func (k keyring) open(sealed []byte) ([]byte, error) {
	size := k[0].NonceSize()
	if len(sealed) < size {
		return nil, fmt.Errorf("ciphertext of %d bytes is shorter than its nonce: %w", len(sealed), domain.ErrIOFailure)
	}
	nonce, body := sealed[:size], sealed[size:]
	for _, aead := range k {
		if plain, err := aead.Open(nil, nonce, body, nil); err == nil {
			return plain, nil
		}
	}
	return nil, fmt.Errorf("no key among %d opens the document: %w", len(k), domain.ErrIOFailure)
}
