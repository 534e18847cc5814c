package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Limits applied when parsing stored hashes so that a corrupted row cannot
// request absurd amounts of memory or time.
const (
	maxMemoryKB   = 1 << 20
	maxIterations = 64
	minSaltLen    = 8
	minKeyLen     = 16
	maxKeyLen     = 128
)

var errMalformedHash = errors.New("malformed argon2id hash")

var b64 = base64.RawStdEncoding

// Argon2id hashes passwords into PHC strings of the form
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// The parameters travel with the hash, so changing them only affects new
// hashes.
type Argon2id struct {
	Memory     uint32
	Iterations uint32
	Threads    uint8
	SaltLength uint32
	KeyLength  uint32

	dummyOnce sync.Once
	dummy     string
}

func NewArgon2id(memoryKB, iterations uint32, threads uint8) *Argon2id {
	return &Argon2id{
		Memory:     memoryKB,
		Iterations: iterations,
		Threads:    threads,
		SaltLength: 16,
		KeyLength:  32,
	}
}

func (a *Argon2id) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: empty password", common.ErrInvalidArgument)
	}

	salt := make([]byte, a.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, a.Iterations, a.Memory, a.Threads, a.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, a.Memory, a.Iterations, a.Threads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify reports whether plaintext matches stored. Unparsable hashes never
// match.
func (a *Argon2id) Verify(plaintext, stored string) bool {
	p, salt, key, err := decodeHash(stored)
	if err != nil {
		return false
	}
	other := argon2.IDKey([]byte(plaintext), salt, p.iterations, p.memory, p.threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, other) == 1
}

// DummyHash returns a well-formed hash with this instance's parameters that
// no caller knows the password for. Verifying against it costs the same as
// verifying against a real account.
func (a *Argon2id) DummyHash() string {
	a.dummyOnce.Do(func() {
		pw := make([]byte, 32)
		_, _ = rand.Read(pw)
		h, err := a.Hash(b64.EncodeToString(pw))
		if err != nil {
			panic(fmt.Sprintf("argon2id dummy hash: %v", err))
		}
		a.dummy = h
	})
	return a.dummy
}

type hashParams struct {
	memory     uint32
	iterations uint32
	threads    uint8
}

func decodeHash(stored string) (hashParams, []byte, []byte, error) {
	var p hashParams

	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errMalformedHash
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.threads); err != nil {
		return p, nil, nil, errMalformedHash
	}
	if p.memory == 0 || p.memory > maxMemoryKB || p.iterations == 0 || p.iterations > maxIterations || p.threads == 0 {
		return p, nil, nil, errMalformedHash
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < minSaltLen {
		return p, nil, nil, errMalformedHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) < minKeyLen || len(key) > maxKeyLen {
		return p, nil, nil, errMalformedHash
	}

	return p, salt, key, nil
}
