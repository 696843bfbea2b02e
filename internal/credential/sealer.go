package credential

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// SecretSize is the length of the installation secret in bytes.
const SecretSize = 32

const hkdfInfo = "fleetdesk token seal v1"

var (
	// ErrCiphertextTooShort is returned for sealed values shorter than a nonce.
	ErrCiphertextTooShort = errors.New("credential: ciphertext too short")

	// ErrBadSecret is returned when the secret file has the wrong size.
	ErrBadSecret = errors.New("credential: secret file has wrong size")
)

// Sealer encrypts values for storage with an AEAD keyed from a secret.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a ChaCha20-Poly1305 key from secret with HKDF-SHA256.
func NewSealer(secret []byte) (*Sealer, error) {
	if len(secret) != SecretSize {
		return nil, ErrBadSecret
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("credential: derive key: %w", err)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("credential: init cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext bound to label. Output is nonce || ciphertext.
func (s *Sealer) Seal(plaintext []byte, label string) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("credential: generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, []byte(label)), nil
}

// Open reverses Seal. label must match the one used to seal.
func (s *Sealer) Open(sealed []byte, label string) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(sealed) < ns+s.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	return s.aead.Open(nil, sealed[:ns], sealed[ns:], []byte(label))
}

// LoadOrCreateSecret reads the installation secret at path, creating it
// with fresh random bytes and mode 0600 when it does not exist. The file
// is written under a temporary name and linked into place, so readers
// never see a partial secret.
func LoadOrCreateSecret(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != SecretSize {
			return nil, ErrBadSecret
		}
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("credential: read secret: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("credential: create secret dir: %w", err)
	}

	secret := make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("credential: generate secret: %w", err)
	}

	tmp, err := writeTemp(dir, secret)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp)

	// Link fails if path exists, so a concurrent creator's secret is never
	// replaced.
	if err := os.Link(tmp, path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return LoadOrCreateSecret(path)
		}
		return nil, fmt.Errorf("credential: install secret: %w", err)
	}
	return secret, nil
}

func writeTemp(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, ".secret-*")
	if err != nil {
		return "", fmt.Errorf("credential: create secret: %w", err)
	}
	name := f.Name()
	if err := f.Chmod(0600); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("credential: create secret: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("credential: write secret: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("credential: sync secret: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("credential: close secret: %w", err)
	}
	return name, nil
}
