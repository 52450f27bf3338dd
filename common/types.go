package common

import (
	"encoding/hex"
	"fmt"
)

// Hash is a 32-byte cryptographic digest. It is used both for content hashes
// of stored values and for authenticated trie root hashes.
type Hash [32]byte

func (h Hash) ToBytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// BlockID is a 32-byte content identifier of a committed or in-progress
// block. It acts as the version and namespace key of the trie index.
// Once assigned to a committed block, it never changes.
type BlockID [32]byte

func (id BlockID) ToBytes() []byte {
	return id[:]
}

func (id BlockID) String() string {
	return hex.EncodeToString(id[:])
}

// SentinelBlockID returns the designated genesis sentinel. It is the parent
// of the first committed block and has height zero. The zero BlockID is
// accepted as an alias for the sentinel in height queries.
func SentinelBlockID() BlockID {
	var id BlockID
	for i := range id {
		id[i] = 0xff
	}
	return id
}

// IsGenesis tests whether the given id denotes the pre-first-block state,
// i.e. either the sentinel or the zero id.
func (id BlockID) IsGenesis() bool {
	return id == SentinelBlockID() || id == BlockID{}
}

// BlockIDFromString parses a 64-character hex string into a BlockID.
func BlockIDFromString(s string) (BlockID, error) {
	var id BlockID
	data, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid block id %q: %w", s, err)
	}
	if len(data) != len(id) {
		return id, fmt.Errorf("invalid block id length %d, expected %d", len(data), len(id))
	}
	copy(id[:], data)
	return id, nil
}

// HashFromString parses a 64-character hex string into a Hash.
func HashFromString(s string) (Hash, error) {
	var h Hash
	data, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(data) != len(h) {
		return h, fmt.Errorf("invalid hash length %d, expected %d", len(data), len(h))
	}
	copy(h[:], data)
	return h, nil
}
