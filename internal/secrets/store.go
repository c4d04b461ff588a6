package secrets

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/jask/coursedesk/internal/database/repository"
)

// Credential sealing for the durable state table, AES-GCM with a per-user key.
// Not a replacement for OS keychains but avoids a plain-text bearer token on disk.

const credentialKey = "session.credential"

// ErrNoCredential is returned by Load when nothing is persisted.
var ErrNoCredential = errors.New("secrets: no credential stored")

// KV is the subset of repository.StateRepo the vault needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Vault persists exactly one bearer credential.
type Vault struct {
	kv  KV
	key []byte
}

// NewVault derives the sealing key from passphrase; an empty passphrase
// falls back to a key bound to the OS user.
func NewVault(kv KV, passphrase string) *Vault {
	return &Vault{kv: kv, key: masterKey(passphrase)}
}

func (v *Vault) Save(ctx context.Context, credential string) error {
	ct, err := v.encrypt([]byte(credential))
	if err != nil {
		return fmt.Errorf("seal credential: %w", err)
	}
	return v.kv.Put(ctx, credentialKey, base64.StdEncoding.EncodeToString(ct))
}

func (v *Vault) Load(ctx context.Context) (string, error) {
	enc, err := v.kv.Get(ctx, credentialKey)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode credential: %w", err)
	}
	pt, err := v.decrypt(raw)
	if err != nil {
		return "", fmt.Errorf("open credential: %w", err)
	}
	return string(pt), nil
}

func (v *Vault) Delete(ctx context.Context) error {
	return v.kv.Delete(ctx, credentialKey)
}

func masterKey(passphrase string) []byte {
	base := passphrase
	if base == "" {
		base = fmt.Sprintf("coursedesk-%s-%s", runtime.GOOS, os.Getenv("USER"))
	}
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func (v *Vault) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (v *Vault) encrypt(plain []byte) ([]byte, error) {
	gcm, err := v.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func (v *Vault) decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := v.gcm()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	body := ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
