package image

import (
	"sync"
	"sync/atomic"
)

// Pool recycles pixel stores of identical dimensions.
//
// Buffers are zeroed when they are returned, so Get always yields
// transparent black pixels. Views created by SubImage share memory with
// their parent and are never pooled.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*ImageBuf

	// maxPerBucket limits retained buffers per key; <= 0 means unlimited.
	maxPerBucket int

	hits   atomic.Int64
	misses atomic.Int64
}

// poolKey identifies a bucket of same-sized stores.
type poolKey struct {
	width  int
	height int
}

// NewPool creates a pool retaining at most maxPerBucket buffers of each size.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets:      make(map[poolKey][]*ImageBuf),
		maxPerBucket: maxPerBucket,
	}
}

// Get returns a zeroed buffer, reusing a pooled one when available.
func (p *Pool) Get(width, height int) (*ImageBuf, error) {
	key := poolKey{width: width, height: height}

	p.mu.Lock()
	if bucket := p.buckets[key]; len(bucket) > 0 {
		buf := bucket[len(bucket)-1]
		bucket[len(bucket)-1] = nil
		p.buckets[key] = bucket[:len(bucket)-1]
		p.mu.Unlock()
		p.hits.Add(1)
		return buf, nil
	}
	p.mu.Unlock()

	p.misses.Add(1)
	return NewImageBuf(width, height)
}

// Put clears buf and keeps it for reuse. It reports false when buf was
// discarded: nil, a view, or its bucket is full.
func (p *Pool) Put(buf *ImageBuf) bool {
	if buf == nil || buf.isView() {
		return false
	}
	key := poolKey{width: buf.width, height: buf.height}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxPerBucket > 0 && len(bucket) >= p.maxPerBucket {
		return false
	}
	buf.Clear()
	p.buckets[key] = append(bucket, buf)
	return true
}

// Len returns the number of pooled buffers.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, bucket := range p.buckets {
		n += len(bucket)
	}
	return n
}

// Stats returns how many Get calls reused a buffer and how many allocated.
func (p *Pool) Stats() (hits, misses int64) {
	return p.hits.Load(), p.misses.Load()
}

// isView reports whether b shares memory with another image.
func (b *ImageBuf) isView() bool {
	return b.view
}

var defaultPool = NewPool(4)

// DefaultPool returns the process-wide pool used for buffer stores.
func DefaultPool() *Pool {
	return defaultPool
}
