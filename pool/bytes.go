// bytes.go implements a bucketed byte-buffer pool with an optional budget.

package pool

import (
	"fmt"
	"math/bits"

	"github.com/dustin/go-humanize"
	"go.uber.org/atomic"
	"golang.org/x/exp/constraints"
)

const (
	minBucketShift = 6  // 64 B
	maxBucketShift = 26 // 64 MiB
)

type ErrBudgetExceeded struct {
	Requested uint64
	InUse     uint64
	MaxBytes  uint64
}

func (e ErrBudgetExceeded) Error() string {
	return fmt.Sprintf(
		"unable to allocate %s: %s of %s are already in use",
		humanize.IBytes(e.Requested), humanize.IBytes(e.InUse), humanize.IBytes(e.MaxBytes),
	)
}

// Bytes hands out byte slices from per-size-class buckets. If MaxBytes
// is non-zero, the total capacity of the slices handed out and not yet
// returned does not exceed it.
type Bytes struct {
	MaxBytes uint64

	buckets [maxBucketShift + 1]*Pool[[]byte]
	inUse   atomic.Uint64
	allocs  atomic.Uint64
}

func NewBytes(maxBytes uint64) *Bytes {
	b := &Bytes{MaxBytes: maxBytes}
	for shift := minBucketShift; shift <= maxBucketShift; shift++ {
		size := 1 << shift
		b.buckets[shift] = NewPool(
			func() *[]byte {
				buf := make([]byte, size)
				return &buf
			},
			nil,
		)
	}
	return b
}

// Get returns a zeroed slice of the given length.
func (b *Bytes) Get(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("negative size %d", size)
	}
	capacity := uint64(bucketCapacity(size))
	if b.MaxBytes > 0 {
		inUse := b.inUse.Add(capacity)
		if inUse > b.MaxBytes {
			b.inUse.Sub(capacity)
			return nil, ErrBudgetExceeded{Requested: capacity, InUse: inUse - capacity, MaxBytes: b.MaxBytes}
		}
	} else {
		b.inUse.Add(capacity)
	}
	b.allocs.Inc()

	shift := bucketShift(size)
	if shift < 0 {
		return make([]byte, size), nil
	}
	buf := *b.buckets[shift].Get()
	buf = buf[:size]
	clear(buf)
	return buf, nil
}

// Put returns slices obtained from Get; nil slices are ignored.
func (b *Bytes) Put(bufs ...[]byte) {
	for _, buf := range bufs {
		if buf == nil {
			continue
		}
		capacity := cap(buf)
		b.inUse.Sub(uint64(bucketCapacity(capacity)))
		shift := bucketShift(capacity)
		if shift < 0 || 1<<shift != capacity {
			continue
		}
		buf = buf[:capacity]
		b.buckets[shift].Put(&buf)
	}
}

// InUse returns the total capacity of the not-returned slices.
func (b *Bytes) InUse() uint64 {
	return b.inUse.Load()
}

// Allocations returns the amount of successful Get calls.
func (b *Bytes) Allocations() uint64 {
	return b.allocs.Load()
}

func bucketShift[T constraints.Integer](size T) int {
	if size <= 1<<minBucketShift {
		return minBucketShift
	}
	shift := bits.Len64(uint64(size - 1))
	if shift > maxBucketShift {
		return -1
	}
	return shift
}

func bucketCapacity[T constraints.Integer](size T) T {
	shift := bucketShift(size)
	if shift < 0 {
		return size
	}
	return T(1) << shift
}
