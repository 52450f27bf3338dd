package trie

import (
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/sable-db/sable/go/common"
)

// Proof is a verifiable witness that a key maps to a value hash under a
// stated root hash. It carries the audit path of the key's leaf in the
// Merkle tree spanning the block's full key space. The proof authenticates
// the key-to-value-hash binding only; the raw value bytes held by the side
// store are resolved by the hash and are not part of the witness.
type Proof struct {
	ValueHash common.Hash
	Index     uint32
	Path      []common.Hash
}

// Verify checks this proof against the given root hash and key. It returns
// false if any element of the proof, the key, or the value hash does not
// match the root.
func (p *Proof) Verify(root common.Hash, key string) bool {
	hash := merkleLeaf(key, p.ValueHash)
	index := p.Index
	for _, sibling := range p.Path {
		if index&1 == 1 {
			hash = merkleParent(sibling, hash)
		} else {
			hash = merkleParent(hash, sibling)
		}
		index >>= 1
	}
	return index == 0 && hash == root
}

// ToBytes serializes the proof into its RLP wire format.
func (p *Proof) ToBytes() ([]byte, error) {
	return rlp.EncodeToBytes(p)
}

// ProofFromBytes restores a proof from its RLP wire format.
func ProofFromBytes(data []byte) (*Proof, error) {
	proof := &Proof{}
	if err := rlp.DecodeBytes(data, proof); err != nil {
		return nil, err
	}
	return proof, nil
}

func merkleLeaf(key string, value common.Hash) common.Hash {
	data := make([]byte, 0, len(key)+len(value))
	data = append(data, key...)
	data = append(data, value[:]...)
	return common.Keccak256(data)
}

func merkleParent(left, right common.Hash) common.Hash {
	var data [64]byte
	copy(data[:32], left[:])
	copy(data[32:], right[:])
	return common.Keccak256(data[:])
}

// merkleLevels computes the full Merkle tree over the given entries, leaves
// first. Leaves are ordered by key so that the tree shape is a deterministic
// function of the entry set; the leaf layer is padded with zero hashes to a
// power of two. A nil result denotes the empty tree.
func merkleLevels(entries map[string]common.Hash) ([]string, [][]common.Hash) {
	if len(entries) == 0 {
		return nil, nil
	}
	keys := maps.Keys(entries)
	slices.Sort(keys)

	width := 1
	for width < len(keys) {
		width <<= 1
	}
	leaves := make([]common.Hash, width)
	for i, key := range keys {
		leaves[i] = merkleLeaf(key, entries[key])
	}

	levels := [][]common.Hash{leaves}
	for width > 1 {
		width >>= 1
		last := levels[len(levels)-1]
		level := make([]common.Hash, width)
		for i := 0; i < width; i++ {
			level[i] = merkleParent(last[2*i], last[2*i+1])
		}
		levels = append(levels, level)
	}
	return keys, levels
}

// merkleRootOf computes the root hash authenticating the given entries.
// The empty entry set is authenticated by the zero hash.
func merkleRootOf(entries map[string]common.Hash) common.Hash {
	_, levels := merkleLevels(entries)
	if levels == nil {
		return common.Hash{}
	}
	return levels[len(levels)-1][0]
}

// merkleProofOf produces a membership proof for the given key within the
// entry set, or false if the key is not present.
func merkleProofOf(entries map[string]common.Hash, key string) (*Proof, bool) {
	keys, levels := merkleLevels(entries)
	if levels == nil {
		return nil, false
	}
	position, found := slices.BinarySearch(keys, key)
	if !found {
		return nil, false
	}
	path := make([]common.Hash, 0, len(levels)-1)
	index := position
	for _, level := range levels[:len(levels)-1] {
		path = append(path, level[index^1])
		index >>= 1
	}
	return &Proof{
		ValueHash: entries[key],
		Index:     uint32(position),
		Path:      path,
	}, true
}
