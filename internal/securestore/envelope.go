// Package securestore is the opaque key-value blob store that keeps session
// material across restarts. Values are sealed with XChaCha20-Poly1305 under a
// key derived from the configured secret with argon2id; the blob's key name is
// bound as associated data so sealed values cannot be swapped between keys.
package securestore

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	envelopeVersion = 1
	saltSize        = 16
	blobPrefix      = "FSKV1\n"
	kdfName         = "argon2id"
)

var (
	ErrAuthFailed = errors.New("securestore authentication failed")
	ErrInvalid    = errors.New("securestore envelope is invalid")
)

// kdfParams are stored alongside each envelope so they can change without
// breaking blobs written by older builds.
type kdfParams struct {
	Name     string `json:"name"`
	Time     uint32 `json:"time"`
	MemoryKB uint32 `json:"memory_kb"`
	Threads  uint8  `json:"threads"`
}

var defaultKDF = kdfParams{Name: kdfName, Time: 2, MemoryKB: 64 * 1024, Threads: 1}

type envelope struct {
	Version    uint32    `json:"version"`
	KDF        kdfParams `json:"kdf"`
	Salt       []byte    `json:"salt"`
	Nonce      []byte    `json:"nonce"`
	Ciphertext []byte    `json:"ciphertext"`
}

func Seal(secret, name string, plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	params := defaultKDF
	key := params.derive(secret, salt)
	defer wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(envelope{
		Version:    envelopeVersion,
		KDF:        params,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plaintext, []byte(name)),
	})
	if err != nil {
		return nil, err
	}
	return append([]byte(blobPrefix), raw...), nil
}

func Open(secret, name string, data []byte) ([]byte, error) {
	body, ok := strings.CutPrefix(string(data), blobPrefix)
	if !ok {
		return nil, ErrInvalid
	}
	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, ErrInvalid
	}
	if env.Version != envelopeVersion || env.KDF.Name != kdfName || len(env.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, ErrInvalid
	}
	key := env.KDF.derive(secret, env.Salt)
	defer wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, []byte(name))
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

func (p kdfParams) derive(secret string, salt []byte) []byte {
	return argon2.IDKey([]byte(secret), salt, p.Time, p.MemoryKB, p.Threads, chacha20poly1305.KeySize)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
