// Package secret derives the per-party secret material given to protocol nodes.
// None of the protocols of this module sign or encrypt anything: the keys are opaque
// values that attacker-supplied nodes may use as they wish.
package secret

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the size in bytes of a key
const KeySize = 32

// Key is the secret material of a party
type Key []byte

// DeriveKey derives the key of party id from seed
func DeriveKey(seed []byte, id int) (Key, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("empty seed")
	}
	if id < 0 {
		return nil, fmt.Errorf("invalid party id %d", id)
	}

	r := hkdf.New(sha256.New, seed, nil, []byte(fmt.Sprintf("party-%d", id)))
	key := make(Key, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive key of party %d: %w", id, err)
	}
	return key, nil
}

// DeriveKeys derives the keys of parties 0,...,n-1 from seed
func DeriveKeys(seed []byte, n int) ([]Key, error) {
	keys := make([]Key, n)
	for i := 0; i < n; i++ {
		key, err := DeriveKey(seed, i)
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}
	return keys, nil
}
