// Package pool holds sync.Pool backed output buffers for the linker.
package pool

import "sync"

const defaultByteSliceCapacity = 64

type ByteSlicePool struct {
	pool sync.Pool
}

var byteSlicePool = &ByteSlicePool{
	pool: sync.Pool{
		New: func() any {
			b := make([]byte, 0, defaultByteSliceCapacity)
			return &b
		},
	},
}

// ByteSlice returns the process-wide byte slice pool.
func ByteSlice() *ByteSlicePool {
	return byteSlicePool
}

// Get returns an empty slice with at least the default capacity.
func (p *ByteSlicePool) Get() []byte {
	return p.GetCapacity(defaultByteSliceCapacity)
}

// GetCapacity returns an empty slice with at least the given capacity.
func (p *ByteSlicePool) GetCapacity(capacity int) []byte {
	b := *(p.pool.Get().(*[]byte))
	if cap(b) < capacity {
		p.Put(b)
		return make([]byte, 0, capacity)
	}
	return b[:0]
}

func (p *ByteSlicePool) Put(b []byte) {
	if b == nil {
		return
	}
	b = b[:0]
	p.pool.Put(&b)
}
