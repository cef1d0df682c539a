package results

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// FirstExponent is the exponent of bucket 0.
const FirstExponent = 2

// Exponent returns the exponent served by a bucket index.
func Exponent(bucket int) int {
	return bucket + FirstExponent
}

type bucket struct {
	mu     sync.Mutex
	values []int64
}

// Matrix holds one bucket of perfect powers per exponent. The bucket list is
// sized once by NewMatrix. Mappers append under the bucket lock until Seal;
// reducers read after Seal without locking, each from its own bucket.
type Matrix struct {
	buckets []bucket
	sealed  atomic.Bool
}

func NewMatrix(buckets int) *Matrix {
	return &Matrix{buckets: make([]bucket, buckets)}
}

// Buckets returns the number of exponents tracked.
func (m *Matrix) Buckets() int {
	return len(m.buckets)
}

// Append adds values to a bucket. It panics once the matrix is sealed.
func (m *Matrix) Append(idx int, values ...int64) {
	if len(values) == 0 {
		return
	}
	if m.sealed.Load() {
		panic(fmt.Sprintf("results: append to bucket %d after seal", idx))
	}

	b := &m.buckets[idx]
	b.mu.Lock()
	b.values = append(b.values, values...)
	b.mu.Unlock()
}

// Seal ends the write phase.
func (m *Matrix) Seal() {
	m.sealed.Store(true)
}

func (m *Matrix) Sealed() bool {
	return m.sealed.Load()
}

// Bucket returns the raw contents of a bucket, duplicates included. It panics
// if the matrix is not sealed yet.
func (m *Matrix) Bucket(idx int) []int64 {
	if !m.sealed.Load() {
		panic(fmt.Sprintf("results: read of bucket %d before seal", idx))
	}
	return m.buckets[idx].values
}

// Unique returns the distinct values of a bucket in ascending order.
func (m *Matrix) Unique(idx int) []int64 {
	raw := m.Bucket(idx)

	sorted := make([]int64, len(raw))
	copy(sorted, raw)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	unique := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			unique = append(unique, v)
		}
	}
	return unique
}
