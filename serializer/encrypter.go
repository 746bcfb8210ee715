package serializer

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/crypto/chacha20poly1305"
)

var ErrCrypto = errors.New("cursor crypto failure")

// Encrypter seals serialized requests with ChaCha20-Poly1305. The random
// nonce is appended to the ciphertext.
//
// Instances sharing a key can read each other's cursors, so services behind
// a load balancer must be configured with the same secret.
type Encrypter struct {
	aead cipher.AEAD
}

// NewEncrypter creates an encrypter from a 32 byte key.
func NewEncrypter(key []byte) (*Encrypter, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d: %v",
			ErrCrypto, chacha20poly1305.KeySize, len(key), err)
	}

	return &Encrypter{aead: aead}, nil
}

// NewRandomEncrypter creates an encrypter with a random key. Cursors are only
// readable by the same process.
func NewRandomEncrypter() *Encrypter {
	key := make([]byte, chacha20poly1305.KeySize)
	lo.Must(rand.Read(key))

	return &Encrypter{aead: lo.Must(chacha20poly1305.New(key))}
}

// EncrypterFromSecret uses the UTF-8 bytes of secret as key, it must be 32
// bytes long.
func EncrypterFromSecret(secret string) (*Encrypter, error) {
	return NewEncrypter([]byte(secret))
}

func (e *Encrypter) Encrypt(data []byte) []byte {
	nonce := make([]byte, e.aead.NonceSize())
	lo.Must(rand.Read(nonce))

	return append(e.aead.Seal(nil, nonce, data, nil), nonce...)
}

func (e *Encrypter) Decrypt(data []byte) ([]byte, error) {
	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize+e.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrCrypto)
	}

	sealed, nonce := data[:len(data)-nonceSize], data[len(data)-nonceSize:]

	plain, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}

	return plain, nil
}
