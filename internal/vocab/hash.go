// Package vocab implements the vocabulary hash table (move-to-front
// chaining), the ranked vocabulary builder used by the Vocabulary Builder
// stage, and the vocabulary file reader used by the Co-occurrence
// Accumulator to assign ranks.
//
// Nodes live in a single growable arena and buckets hold arena indices
// rather than pointers, per the spec's design note on avoiding aliasing
// hazards from pointer-chased chains (spec.md §9, "Cyclic chain nodes and
// raw pointer chasing").
package vocab

import "bytes"

// hashTableSize is the fixed bucket count for both V's and C's hash tables.
const hashTableSize = 1 << 20

// hashSeed is the fixed seed used by the bitwise hash below.
const hashSeed = 1159241

// MaxTokenLen is the maximum token length in bytes; longer tokens are
// truncated to this length before hashing or insertion.
const MaxTokenLen = 1000

// bucketOf computes the bucket index for key using the spec's bitwise hash:
// h starts at the seed; for each byte c, h = h XOR ((h<<5) + c + (h>>2));
// bucket = (h AND 0x7fffffff) mod hashTableSize.
func bucketOf(key []byte) uint32 {
	h := uint64(hashSeed)

	for _, c := range key {
		h ^= (h << 5) + uint64(c) + (h >> 2)
	}

	return uint32(h&0x7fffffff) % hashTableSize
}

// noNext marks the end of a chain.
const noNext = int32(-1)

// chainNode is one arena entry: an owned copy of the key, an arbitrary
// payload, and the index of the next node in its bucket's chain.
type chainNode[V any] struct {
	key  []byte
	val  V
	next int32
}

// chainTable is a chained hash table with move-to-front promotion on access,
// backed by a single node arena. Buckets store arena indices (noNext when
// empty), not pointers.
type chainTable[V any] struct {
	buckets []int32
	nodes   []chainNode[V]
}

// newChainTable returns an empty table with nodes preallocated to the given
// capacity hint.
func newChainTable[V any](nodeCapHint int) *chainTable[V] {
	buckets := make([]int32, hashTableSize)
	for i := range buckets {
		buckets[i] = noNext
	}

	return &chainTable[V]{
		buckets: buckets,
		nodes:   make([]chainNode[V], 0, nodeCapHint),
	}
}

// find locates key, promoting it to the head of its bucket's chain if found
// anywhere but the head already. Returns the arena index and true on a hit.
func (t *chainTable[V]) find(key []byte) (int32, bool) {
	bucket := bucketOf(key)
	idx := t.buckets[bucket]

	var prev int32 = noNext

	for idx != noNext {
		node := &t.nodes[idx]
		if bytes.Equal(node.key, key) {
			if prev != noNext {
				t.nodes[prev].next = node.next
				node.next = t.buckets[bucket]
				t.buckets[bucket] = idx
			}

			return idx, true
		}

		prev = idx
		idx = node.next
	}

	return noNext, false
}

// insert adds a new node for key with the given value at the head of its
// bucket's chain and returns its arena index. Callers must have already
// confirmed key is absent via find.
func (t *chainTable[V]) insert(key []byte, val V) int32 {
	bucket := bucketOf(key)
	idx := int32(len(t.nodes))

	owned := make([]byte, len(key))
	copy(owned, key)

	t.nodes = append(t.nodes, chainNode[V]{key: owned, val: val, next: t.buckets[bucket]})
	t.buckets[bucket] = idx

	return idx
}

// value returns the payload stored at arena index idx.
func (t *chainTable[V]) value(idx int32) V {
	return t.nodes[idx].val
}

// setValue overwrites the payload stored at arena index idx.
func (t *chainTable[V]) setValue(idx int32, val V) {
	t.nodes[idx].val = val
}

// len returns the number of distinct keys in the table.
func (t *chainTable[V]) len() int {
	return len(t.nodes)
}

// each calls fn for every (key, value) pair in arena-insertion order.
func (t *chainTable[V]) each(fn func(key []byte, val V)) {
	for i := range t.nodes {
		fn(t.nodes[i].key, t.nodes[i].val)
	}
}
