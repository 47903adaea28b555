// Package secure implements the per-connection symmetric channel. Each
// server session generates its own key; the client rebuilds the channel
// from the key it receives as the first bytes of the session.
package secure

import (
	"crypto/rand"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"
)

// KeySize is the symmetric key length in bytes. The server writes exactly
// this many raw bytes at the start of every connection.
const KeySize = 32

// ErrDecrypt reports a sealed payload that failed the integrity or
// authenticity check. Fatal for the owning connection, never retried.
var ErrDecrypt = fmt.Errorf("sealed payload failed decryption")

// Channel seals and opens payloads with a fixed symmetric key. Sealed
// payloads are compact JWE tokens (direct A256GCM), so they are plain
// text safe to carry over an unauthenticated byte stream.
type Channel struct {
	key []byte
}

// Generate creates a channel with a fresh random key.
func Generate() (*Channel, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate channel key: %w", err)
	}
	return &Channel{key: key}, nil
}

// FromKey rebuilds the channel on the client side from a received key.
func FromKey(key []byte) (*Channel, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid channel key length: %d", len(key))
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Channel{key: k}, nil
}

// Key exposes the raw key so the server can transmit it on handshake.
func (c *Channel) Key() []byte {
	return c.key
}

// Seal encrypts and authenticates plaintext.
func (c *Channel) Seal(plaintext []byte) ([]byte, error) {
	encrypter, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: c.key},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("init encrypter: %w", err)
	}

	obj, err := encrypter.Encrypt(plaintext)
	if err != nil {
		return nil, fmt.Errorf("seal payload: %w", err)
	}

	token, err := obj.CompactSerialize()
	if err != nil {
		return nil, fmt.Errorf("serialize sealed payload: %w", err)
	}
	return []byte(token), nil
}

// Open decrypts a sealed payload. Any tampering, corruption, or key
// mismatch yields ErrDecrypt.
func (c *Channel) Open(token []byte) ([]byte, error) {
	obj, err := jose.ParseEncrypted(
		string(token),
		[]jose.KeyAlgorithm{jose.DIRECT},
		[]jose.ContentEncryption{jose.A256GCM},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	plaintext, err := obj.Decrypt(c.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return plaintext, nil
}
